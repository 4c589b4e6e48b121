package project

import (
	"errors"
	"fmt"
)

var (
	ErrNilScene    = errors.New("project: nil scene")
	ErrNilDocument = errors.New("project: nil document")
)

// UnknownNodeTypeError aborts an import. It names the offending record.
type UnknownNodeTypeError struct {
	Index int
	ID    string
	Name  string
	Type  string
}

func (e *UnknownNodeTypeError) Error() string {
	return fmt.Sprintf("cannot parse node %q (id %q, record %d): unknown type %q", e.Name, e.ID, e.Index, e.Type)
}
