// Package snapshot creates detached copies of resolved configuration data so
// that internal maps can be handed out without exposing them to mutation.
package snapshot

import (
	"github.com/pkg/errors"
	"github.com/tiendc/go-deepcopy"
)

// Copy creates a deep copy of the source object using reflection.
// All slices, maps, and nested pointers are recursively copied.
//
// If src is nil, returns (nil, nil).
func Copy[T any](src *T) (*T, error) {
	if src == nil {
		return nil, nil
	}

	var dst T
	err := deepcopy.Copy(&dst, &src)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to deep copy type %T", src)
	}

	return &dst, nil
}

// MustCopy creates a deep copy of the source object and panics if the
// operation fails. Intended for constructor and accessor boundaries where
// the copied structures are plain maps and strings, so a failure indicates
// a programming error rather than a runtime condition:
//
//	func (e *Environment) Properties() map[string]string {
//	    return *snapshot.MustCopy(&e.properties)
//	}
//
// If src is nil, returns nil (does not panic).
func MustCopy[T any](src *T) *T {
	if src == nil {
		return nil
	}

	result, err := Copy(src)
	if err != nil {
		panic("failed to create immutable snapshot: " + err.Error())
	}

	return result
}
