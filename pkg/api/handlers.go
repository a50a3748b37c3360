package api

import (
	"github.com/adfharrison1/go-odm/pkg/domain"
	"github.com/adfharrison1/go-odm/pkg/odm"
)

// ClassResolver maps a collection to the root class stored in it
type ClassResolver interface {
	ClassForCollection(collection string) (string, error)
}

// Handler provides HTTP handlers for document introspection
type Handler struct {
	storage domain.Store
	odm     *odm.Context
	classes ClassResolver
}

// NewHandler creates a new API handler with dependency injection
func NewHandler(storage domain.Store, ctx *odm.Context, classes ClassResolver) *Handler {
	return &Handler{
		storage: storage,
		odm:     ctx,
		classes: classes,
	}
}
