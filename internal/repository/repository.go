package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

// PageQuery holds limit/offset pagination parameters plus an optional tag
// filter. Tag is the canonical (lower-cased) tag name; empty means no filter.
type PageQuery struct {
	Limit  int
	Offset int
	Tag    string
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
