// Package linediff renders unified diffs between two documents.
package linediff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Adapter implements ports.DiffPort with a line-based unified diff.
type Adapter struct {
	context int
}

// New creates a new line diff adapter showing contextLines of unchanged
// lines around each hunk.
func New(contextLines int) *Adapter {
	return &Adapter{context: contextLines}
}

// ComputeDiff returns the unified diff of base against head, or "" when
// they are identical.
func (a *Adapter) ComputeDiff(baseName, headName string, base, head []byte) string {
	if string(base) == string(head) {
		return ""
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(base)),
		B:        difflib.SplitLines(string(head)),
		FromFile: baseName,
		ToFile:   headName,
		Context:  a.context,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return fmt.Sprintf("error computing diff: %s", err)
	}
	return strings.TrimSpace(text)
}
