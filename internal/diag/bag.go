package diag

import "sort"

// Bag accumulates diagnostics for one compile batch.
type Bag struct {
	items []Diagnostic
}

func NewBag(capHint int) *Bag {
	return &Bag{items: make([]Diagnostic, 0, capHint)}
}

func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// HasErrors returns true if at least one diagnostic has Severity >= Error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns a read-only view of the diagnostics.
// Do not modify the returned slice; it aliases the Bag's storage.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// ByFile groups diagnostics by their file path. Order within a file is
// preserved from insertion order.
func (b *Bag) ByFile() map[string][]Diagnostic {
	out := make(map[string][]Diagnostic)
	for _, d := range b.items {
		out[d.File] = append(out[d.File], d)
	}
	return out
}

// ReplaceFile drops every diagnostic recorded for path and appends the
// given ones instead. Later compile runs fully replace earlier results
// for a touched file, they are never merged.
func (b *Bag) ReplaceFile(path string, ds []Diagnostic) {
	kept := b.items[:0]
	for _, d := range b.items {
		if d.File != path {
			kept = append(kept, d)
		}
	}
	b.items = append(kept, ds...)
}

// Sort orders diagnostics by file, position, severity (desc), code (asc)
// for a stable and deterministic output order.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.File != dj.File {
			return di.File < dj.File
		}
		if di.Pos.Line != dj.Pos.Line {
			return di.Pos.Line < dj.Pos.Line
		}
		if di.Pos.Col != dj.Pos.Col {
			return di.Pos.Col < dj.Pos.Col
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
