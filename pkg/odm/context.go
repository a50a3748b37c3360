package odm

import (
	"sync"

	"github.com/adfharrison1/go-odm/pkg/sidetable"
)

// Option configures a Context
type Option func(*Context)

// WithSideTable shares an existing side-table
func WithSideTable(table *sidetable.Table) Option {
	return func(c *Context) {
		c.table = table
	}
}

// Context is the persistence context documents are created in. It owns
// the side-table and acts as the factory for every document class.
type Context struct {
	provider MetadataProvider
	table    *sidetable.Table

	accessorsMu sync.Mutex
	accessors   map[string][]accessor
}

// NewContext creates a context resolving classes through provider
func NewContext(provider MetadataProvider, options ...Option) *Context {
	c := &Context{
		provider:  provider,
		accessors: make(map[string][]accessor),
	}

	for _, option := range options {
		option(c)
	}

	if c.table == nil {
		c.table = sidetable.New()
	}

	return c
}

// SideTable returns the table holding auxiliary per-object state
func (c *Context) SideTable() *sidetable.Table {
	return c.table
}

// Metadata resolves the declaration of class
func (c *Context) Metadata(class string) (*ClassMetadata, error) {
	return c.provider.Metadata(class)
}

// Create builds a new, empty document of class. Root classes start new.
func (c *Context) Create(class string) (*Document, error) {
	meta, err := c.provider.Metadata(class)
	if err != nil {
		return nil, err
	}
	return newDocument(c, meta), nil
}
