// Package repository contains data access abstractions. Implementations live
// in subpackages (postgres, memory) and contain no business logic.
package repository

import "errors"

// Sentinel errors for storage facts. Services translate them into apperr kinds.
var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("version conflict")
	ErrDuplicate = errors.New("duplicate")
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
