package lexer

import (
	"fmt"
	"os"
)

// Source is a unit of input text tagged with an origin name. The name is
// only ever used for diagnostics.
type Source struct {
	Name    string
	Content string
}

func NewSource(name, content string) Source {
	return Source{Name: name, Content: content}
}

func SourceFromPath(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Source{Name: path, Content: string(data)}, nil
}

// Diagnostic is a non-fatal lex-level problem. The lexer never aborts a
// scan; it records diagnostics and the parser surfaces them upward.
type Diagnostic struct {
	Source   string
	Position int
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s", d.Source, d.Position, d.Message)
}
