package odm

import "errors"

var (
	// ErrUnknownClass is returned when no metadata is registered for a class
	ErrUnknownClass = errors.New("unknown document class")
	// ErrUnknownField is returned for a field the class does not declare
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownRelation is returned for an embedded relation the class does not declare
	ErrUnknownRelation = errors.New("unknown relation")
	// ErrNoRootAndPath means a document or group was never attached to a root
	ErrNoRootAndPath = errors.New("no root and path associated")
	// ErrRootReleased means the root of an association is no longer reachable
	ErrRootReleased = errors.New("root document released")
	// ErrNotRoot is returned for root-only operations on embedded documents
	ErrNotRoot = errors.New("not a root document")
)
