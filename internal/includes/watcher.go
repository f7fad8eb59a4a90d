package includes

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher feeds workspace file events to a callback. The callback runs on
// the watcher goroutine and receives only tracked source files; directory
// churn is handled internally by (un)registering watches.
type Watcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// Watch recursively watches root. onChange receives the absolute path and
// the raw fsnotify op for every event on a .mq4/.mq5/.mqh file.
func Watch(root string, onChange func(path string, op fsnotify.Op), warn io.Writer) (*Watcher, error) {
	if warn == nil {
		warn = io.Discard
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addRecursive(fsw, root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w := &Watcher{fsw: fsw, done: make(chan struct{})}
	go w.run(onChange, warn)
	return w, nil
}

func (w *Watcher) run(onChange func(string, fsnotify.Op), warn io.Writer) {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addRecursive(w.fsw, ev.Name); err != nil {
						io.WriteString(warn, "mqcheck: watch add failed: "+err.Error()+"\n")
					}
					continue
				}
			}
			if KindOf(ev.Name) == KindOther {
				continue
			}
			onChange(ev.Name, ev.Op)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			io.WriteString(warn, "mqcheck: watch error: "+err.Error()+"\n")
		}
	}
}

// Close stops the watcher and waits for the event loop to drain.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return fs.SkipDir
		}
		return fsw.Add(path)
	})
}
