package includes

import (
	"regexp"
	"strings"
)

// Directive is one include directive as written in the source, unresolved.
type Directive struct {
	// Raw is the path between the quotes or angle brackets.
	Raw string
	// Angled is true for the <...> form, which resolves only against
	// include roots, never against the including file's directory.
	Angled bool
}

var includeRe = regexp.MustCompile(`^\s*#include\s+(?:<([^>]+)>|"([^"]+)")`)

// ExtractIncludes strips comments from MQL source text and collects its
// include directives in order of appearance.
func ExtractIncludes(src string) []Directive {
	var out []Directive
	for _, line := range strings.Split(StripComments(src), "\n") {
		m := includeRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if m[1] != "" {
			out = append(out, Directive{Raw: m[1], Angled: true})
		} else if m[2] != "" {
			out = append(out, Directive{Raw: m[2]})
		}
	}
	return out
}

// StripComments removes // and /* */ comments while leaving string
// literals intact, so an #include inside a string or comment never
// produces an edge.
func StripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	const (
		code = iota
		lineComment
		blockComment
		stringLit
	)
	state := code
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch state {
		case code:
			switch {
			case c == '/' && i+1 < len(src) && src[i+1] == '/':
				state = lineComment
				i++
			case c == '/' && i+1 < len(src) && src[i+1] == '*':
				state = blockComment
				i++
			case c == '"':
				state = stringLit
				b.WriteByte(c)
			default:
				b.WriteByte(c)
			}
		case lineComment:
			if c == '\n' {
				state = code
				b.WriteByte(c)
			}
		case blockComment:
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				state = code
				i++
			} else if c == '\n' {
				// keep line structure for directive extraction
				b.WriteByte(c)
			}
		case stringLit:
			b.WriteByte(c)
			if c == '\\' && i+1 < len(src) {
				b.WriteByte(src[i+1])
				i++
			} else if c == '"' || c == '\n' {
				state = code
			}
		}
	}
	return b.String()
}
