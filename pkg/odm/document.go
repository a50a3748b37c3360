package odm

import (
	"fmt"
	"runtime"
	"weak"

	"github.com/adfharrison1/go-odm/pkg/sidetable"
)

const (
	keyRootAndPath    = "root_and_path"
	keySavedData      = "saved_data"
	embeddedOnePrefix = "embedded_one."
)

// rootAndPath locates a document or group inside its aggregate. The root
// is held weakly so children never keep their aggregate alive.
type rootAndPath struct {
	root weak.Pointer[Document]
	path string
}

func lookupRootAndPath(table *sidetable.Table, owner sidetable.Handle) (*Document, string, error) {
	value, err := table.Get(owner, keyRootAndPath)
	if err != nil {
		return nil, "", ErrNoRootAndPath
	}
	rp := value.(rootAndPath)
	root := rp.root.Value()
	if root == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrRootReleased, rp.path)
	}
	return root, rp.path, nil
}

// Document is a persisted or embedded document with change tracking.
// A document graph belongs to one goroutine at a time.
type Document struct {
	ctx     *Context
	meta    *ClassMetadata
	handle  sidetable.Handle
	cleanup runtime.Cleanup
	life    lifecycle

	fields         map[string]interface{}
	fieldsModified map[string]interface{}
	embeddedsOne   map[string]*Document
	embeddedsMany  map[string]*EmbeddedGroup
}

func newDocument(ctx *Context, meta *ClassMetadata) *Document {
	d := &Document{
		ctx:            ctx,
		meta:           meta,
		fields:         make(map[string]interface{}),
		fieldsModified: make(map[string]interface{}),
		embeddedsOne:   make(map[string]*Document),
		embeddedsMany:  make(map[string]*EmbeddedGroup),
	}
	if meta.IsEmbedded {
		d.life = embeddedLifecycle{}
	} else {
		d.life = newRootLifecycle()
	}
	d.handle, d.cleanup = sidetable.Track(ctx.table, d)
	return d
}

// Class returns the document class name
func (d *Document) Class() string {
	return d.meta.Class
}

// Metadata returns the class declaration
func (d *Document) Metadata() *ClassMetadata {
	return d.meta
}

// Handle returns the side-table identity of the document
func (d *Document) Handle() sidetable.Handle {
	return d.handle
}

// SetRootAndPath attaches the document at path inside root and re-attaches
// every embedded child below it.
func (d *Document) SetRootAndPath(root *Document, path string) {
	d.ctx.table.Set(d.handle, keyRootAndPath, rootAndPath{root: weak.Make(root), path: path})

	for _, rel := range d.meta.EmbeddedsOne {
		if child := d.embeddedsOne[rel.Name]; child != nil {
			child.SetRootAndPath(root, path+"."+rel.Name)
		}
	}
	for _, rel := range d.meta.EmbeddedsMany {
		if group, ok := d.embeddedsMany[rel.Name]; ok {
			group.SetRootAndPath(root, path+"."+rel.Name)
		}
	}
}

// RootAndPath returns where the document is attached. Root documents and
// detached embedded documents return ErrNoRootAndPath.
func (d *Document) RootAndPath() (*Document, string, error) {
	return lookupRootAndPath(d.ctx.table, d.handle)
}

// childRootAndPath returns the association a child stored under name gets
func (d *Document) childRootAndPath(name string) (*Document, string, bool) {
	if root, path, err := d.RootAndPath(); err == nil {
		return root, path + "." + name, true
	}
	if d.IsRoot() {
		return d, name, true
	}
	return nil, "", false
}

// EmbeddedOne returns the document embedded under name, nil if absent
func (d *Document) EmbeddedOne(name string) (*Document, error) {
	if _, ok := d.meta.EmbeddedOne(name); !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownRelation, d.meta.Class, name)
	}
	return d.embeddedsOne[name], nil
}

// SetEmbeddedOne replaces the document embedded under name. The first
// replaced value since the last baseline is kept as the original.
func (d *Document) SetEmbeddedOne(name string, doc *Document) error {
	rel, ok := d.meta.EmbeddedOne(name)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownRelation, d.meta.Class, name)
	}
	if doc != nil && doc.meta.Class != rel.Class {
		return fmt.Errorf("relation %s.%s expects %s, got %s", d.meta.Class, name, rel.Class, doc.meta.Class)
	}

	previous := d.embeddedsOne[name]
	if previous == doc {
		return nil
	}

	key := embeddedOnePrefix + name
	if !d.ctx.table.Has(d.handle, key) {
		d.ctx.table.Set(d.handle, key, previous)
	}
	d.embeddedsOne[name] = doc

	if doc != nil {
		if root, path, ok := d.childRootAndPath(name); ok {
			doc.SetRootAndPath(root, path)
		}
	}
	return nil
}

// EmbeddedMany returns the group stored under name, creating it on first access
func (d *Document) EmbeddedMany(name string) (*EmbeddedGroup, error) {
	if group, ok := d.embeddedsMany[name]; ok {
		return group, nil
	}

	rel, ok := d.meta.EmbeddedMany(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownRelation, d.meta.Class, name)
	}

	group := newEmbeddedGroup(d.ctx, rel.Class)
	d.embeddedsMany[name] = group
	if root, path, ok := d.childRootAndPath(name); ok {
		group.SetRootAndPath(root, path)
	}
	return group, nil
}

// LoadedEmbeddedMany returns the group stored under name without creating it
func (d *Document) LoadedEmbeddedMany(name string) (*EmbeddedGroup, bool) {
	group, ok := d.embeddedsMany[name]
	return group, ok
}

// Release drops the side-table entries of the document and everything it owns
func (d *Document) Release() {
	for _, child := range d.embeddedsOne {
		if child != nil {
			child.Release()
		}
	}
	for _, group := range d.embeddedsMany {
		group.Release()
	}
	d.cleanup.Stop()
	d.ctx.table.RemoveAll(d.handle)
}
