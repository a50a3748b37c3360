package odm

import "sort"

// lifecycle is the part of the root contract that differs between a root
// aggregate and an embedded sub-document.
type lifecycle interface {
	isNew(d *Document) bool
	addFieldCache(d *Document, path string)
	isFieldInQuery(d *Document, path string) bool
}

// rootLifecycle belongs to top-level documents stored in a collection
type rootLifecycle struct {
	new        bool
	id         interface{}
	fieldCache map[string]struct{}
}

func newRootLifecycle() *rootLifecycle {
	return &rootLifecycle{
		new:        true,
		fieldCache: make(map[string]struct{}),
	}
}

func (l *rootLifecycle) isNew(*Document) bool {
	return l.new
}

func (l *rootLifecycle) addFieldCache(_ *Document, path string) {
	l.fieldCache[path] = struct{}{}
}

func (l *rootLifecycle) isFieldInQuery(_ *Document, path string) bool {
	_, ok := l.fieldCache[path]
	return ok
}

// embeddedLifecycle answers through the root the document is attached to
type embeddedLifecycle struct{}

func (embeddedLifecycle) isNew(d *Document) bool {
	root, _, err := d.RootAndPath()
	if err != nil {
		// Detached documents have never been written anywhere
		return true
	}
	return root.IsNew()
}

func (embeddedLifecycle) addFieldCache(d *Document, path string) {
	if root, _, err := d.RootAndPath(); err == nil {
		root.AddFieldCache(path)
	}
}

func (embeddedLifecycle) isFieldInQuery(d *Document, path string) bool {
	root, _, err := d.RootAndPath()
	if err != nil {
		return false
	}
	return root.IsFieldInQuery(path)
}

// IsNew reports whether the document's aggregate was never persisted
func (d *Document) IsNew() bool {
	return d.life.isNew(d)
}

// IsRoot reports whether the document is a top-level aggregate
func (d *Document) IsRoot() bool {
	_, ok := d.life.(*rootLifecycle)
	return ok
}

// SetIsNew flags a root document as persisted (false) or not (true)
func (d *Document) SetIsNew(isNew bool) error {
	root, ok := d.life.(*rootLifecycle)
	if !ok {
		return ErrNotRoot
	}
	root.new = isNew
	return nil
}

// ID returns the stored id of a root document, nil for embedded ones
func (d *Document) ID() interface{} {
	if root, ok := d.life.(*rootLifecycle); ok {
		return root.id
	}
	return nil
}

// SetID assigns the stored id of a root document
func (d *Document) SetID(id interface{}) error {
	root, ok := d.life.(*rootLifecycle)
	if !ok {
		return ErrNotRoot
	}
	root.id = id
	return nil
}

// AddFieldCache records that the data at path was fetched from storage
func (d *Document) AddFieldCache(path string) {
	d.life.addFieldCache(d, path)
}

// IsFieldInQuery reports whether the data at path was fetched from storage
func (d *Document) IsFieldInQuery(path string) bool {
	return d.life.isFieldInQuery(d, path)
}

// FieldCache lists the fetched paths of a root document
func (d *Document) FieldCache() []string {
	root, ok := d.life.(*rootLifecycle)
	if !ok {
		return nil
	}
	paths := make([]string, 0, len(root.fieldCache))
	for path := range root.fieldCache {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
