package includes

import (
	"path/filepath"
	"strings"
)

// Kind classifies a source file by its extension.
type Kind uint8

const (
	// KindOther is anything the indexer does not track.
	KindOther Kind = iota
	// KindRoot is an independently compilable file (.mq4/.mq5).
	KindRoot
	// KindHeader is an include-only file (.mqh).
	KindHeader
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindHeader:
		return "header"
	}
	return "other"
}

// Flavor selects which compiler dialect a root file belongs to.
type Flavor uint8

const (
	FlavorUnknown Flavor = iota
	FlavorMQL4
	FlavorMQL5
)

func (f Flavor) String() string {
	switch f {
	case FlavorMQL4:
		return "mql4"
	case FlavorMQL5:
		return "mql5"
	}
	return "unknown"
}

// KindOf classifies path by extension, case-insensitively.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mq4", ".mq5":
		return KindRoot
	case ".mqh":
		return KindHeader
	}
	return KindOther
}

// FlavorOf returns the compiler dialect of a root file.
// Headers are shared between dialects and report FlavorUnknown.
func FlavorOf(path string) Flavor {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mq4":
		return FlavorMQL4
	case ".mq5":
		return FlavorMQL5
	}
	return FlavorUnknown
}
