package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySource       = errors.New("catalog source is empty")
	ErrMissingKeyColumn  = errors.New("key column not found in header")
	ErrEmptyKey          = errors.New("row has an empty scheme name")
	ErrDuplicateKey      = errors.New("duplicate scheme name")
	ErrNoCategories      = errors.New("no categories configured")
	ErrEmptyCategoryName = errors.New("category with empty name")
)

// LoadError reports why the catalog could not be built.
// Line is the 1-based line in the source file, 0 when not applicable.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("catalog load %s:%d: %v", e.Path, e.Line, e.Err)
	case e.Path != "":
		return fmt.Sprintf("catalog load %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("catalog load: %v", e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
