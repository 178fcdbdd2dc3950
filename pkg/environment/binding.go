package environment

import "github.com/pkg/errors"

// Binding describes one declarative value-injection request, as produced by
// an external scanning layer: the name of the target being populated, an
// optional explicit property key and an optional default value. The core
// only resolves the value; discovering targets and assigning the result is
// the caller's business.
type Binding struct {
	// Target is the name of the field or parameter being populated. Used as
	// the property key when Key is empty.
	Target string

	// Key explicitly names the property to resolve.
	Key string

	// Default is the fallback value, honored only when HasDefault is set.
	// An empty string is a valid default.
	Default    string
	HasDefault bool
}

// ResolveBinding resolves the value for a binding with the same semantics as
// Get and GetOrDefault: with a default present the lookup never fails,
// without one a missing key surfaces as *MissingKeyError.
func (e *Environment) ResolveBinding(b Binding) (string, error) {
	key := b.Key
	if key == "" {
		key = b.Target
	}
	if key == "" {
		return "", errors.New("binding must carry a key or a target name")
	}

	if b.HasDefault {
		return e.GetOrDefault(key, b.Default), nil
	}
	return e.Get(key)
}
