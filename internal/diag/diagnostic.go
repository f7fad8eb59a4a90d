package diag

// Position is a 0-based line/column pair inside a source file.
type Position struct {
	Line int
	Col  int
}

// Diagnostic is one structured compile problem reported against a file.
// Code carries the compiler-assigned numeric code, 0 when the line had none.
type Diagnostic struct {
	File     string
	Pos      Position
	Severity Severity
	Code     int
	Message  string
}
