// Package taskcontext holds the rules for GTD contexts, the capability tags
// (such as @calls or @errands) every task is filed under.
package taskcontext

import (
	"errors"
	"fmt"
	"strings"
)

// Defaults seeded into a fresh database.
var Defaults = []string{"@calls", "@computer", "@errands", "@home", "@office"}

var (
	ErrContextNotFound = errors.New("context not found")
	ErrInvalidContext  = errors.New("invalid context")
	ErrContextInUse    = errors.New("context is in use")
)

// NormalizeName trims whitespace and prefixes the conventional "@".
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, "@") {
		return name
	}
	return "@" + name
}

// CanCreateContext rejects empty and duplicate names.
func CanCreateContext(name string, nameTaken bool) error {
	if name == "" || name == "@" {
		return fmt.Errorf("%w: context name is required", ErrInvalidContext)
	}
	if nameTaken {
		return fmt.Errorf("%w: context %s already exists", ErrInvalidContext, name)
	}
	return nil
}

// CanDeleteContext rejects deleting a context any task still references.
// Completed and archived tasks count: they keep their context as history.
func CanDeleteContext(id string, tasks int) error {
	if tasks > 0 {
		return fmt.Errorf("%w: %s has %d tasks", ErrContextInUse, id, tasks)
	}
	return nil
}
