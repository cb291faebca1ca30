package importer

import (
	"fmt"
	"strings"
)

// Problem is one reason an import was rejected.
type Problem struct {
	// Path is a dotted location inside the file, empty for the root.
	Path    string
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// ImportError rejects a whole import. The chart is left unchanged.
type ImportError struct {
	Source   string
	Problems []Problem
}

func (e *ImportError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("import %s: %s", e.Source, e.Problems[0])
	}
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = "  - " + p.String()
	}
	return fmt.Sprintf("import %s: %d problems:\n%s", e.Source, len(e.Problems), strings.Join(lines, "\n"))
}
