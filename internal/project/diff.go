package project

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineChange is one line present in only one of two documents.
type LineChange struct {
	Added bool
	Text  string
}

// Diff compares the canonical forms of a and b line by line and returns
// the lines removed from a and added in b, in order. No changes means the
// documents are equivalent.
func Diff(a, b *Document) ([]LineChange, error) {
	left, err := Canonical(a)
	if err != nil {
		return nil, err
	}
	right, err := Canonical(b)
	if err != nil {
		return nil, err
	}

	dmp := diffmatchpatch.New()
	l, r, lines := dmp.DiffLinesToChars(string(left), string(right))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(l, r, false), lines)

	var changes []LineChange
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			changes = append(changes, LineChange{
				Added: d.Type == diffmatchpatch.DiffInsert,
				Text:  strings.TrimSuffix(line, "\n"),
			})
		}
	}
	return changes, nil
}

func (c LineChange) String() string {
	if c.Added {
		return "+ " + c.Text
	}
	return "- " + c.Text
}
