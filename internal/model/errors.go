// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "fmt"

// Error is a sentinel error type for domain failures. Services return
// these untouched so the HTTP boundary can map them with errors.Is.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrMenuNotFound indicates the referenced menu does not exist.
	ErrMenuNotFound Error = "menu not found"

	// ErrNodeNotFound indicates the referenced menu node does not exist.
	ErrNodeNotFound Error = "menu node not found"

	// ErrParentNotFound indicates the referenced parent node does not exist.
	ErrParentNotFound Error = "parent node not found"

	// ErrLocationNotFound indicates the location key is not registered.
	ErrLocationNotFound Error = "menu location not found"

	// ErrWidgetNotFound indicates the referenced widget does not exist.
	ErrWidgetNotFound Error = "widget not found"

	// ErrNoMenuAtLocation indicates resolution found no matching menu.
	ErrNoMenuAtLocation Error = "no menu at location"

	// ErrDuplicateSlug indicates the menu slug is already taken.
	ErrDuplicateSlug Error = "slug already exists"

	// ErrDuplicateLocationKey indicates the location key is already taken.
	ErrDuplicateLocationKey Error = "location key already exists"

	// ErrCrossMenuParent indicates the parent belongs to a different menu.
	ErrCrossMenuParent Error = "parent belongs to a different menu"

	// ErrCyclicParent indicates a reorder would make a node its own
	// ancestor, detaching the subtree from the tree roots.
	ErrCyclicParent Error = "node cannot be its own ancestor"
)

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ReorderError reports which entry of a bulk reorder batch failed. The
// whole batch is rolled back when any entry fails.
type ReorderError struct {
	Index  int
	NodeID int64
	Err    error
}

func (e *ReorderError) Error() string {
	return fmt.Sprintf("reorder entry %d (node %d): %v", e.Index, e.NodeID, e.Err)
}

func (e *ReorderError) Unwrap() error {
	return e.Err
}
