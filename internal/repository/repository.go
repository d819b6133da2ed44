package repository

import "errors"

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) and contain no business logic.

var (
	// ErrNotFound is returned when no row matches the lookup, including rows filtered out by ownership.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert or update violates a unique constraint.
	ErrDuplicate = errors.New("record already exists")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
