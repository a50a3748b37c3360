package odm

import (
	"fmt"
	"sync"
)

// Reference is a relation to another root document stored by key in a
// backing scalar field.
type Reference struct {
	Name  string
	Class string
	Field string
}

// Embedded is a relation to documents stored inline
type Embedded struct {
	Name  string
	Class string
}

// ClassMetadata is the static declaration of a document class.
// Fields lists every persisted scalar field, including the fields backing
// references.
type ClassMetadata struct {
	Class          string
	Collection     string
	IsEmbedded     bool
	Fields         []string
	ReferencesOne  []Reference
	ReferencesMany []Reference
	EmbeddedsOne   []Embedded
	EmbeddedsMany  []Embedded
}

// HasField reports whether name is a declared field
func (m *ClassMetadata) HasField(name string) bool {
	for _, field := range m.Fields {
		if field == name {
			return true
		}
	}
	return false
}

// EmbeddedOne returns the embedded-one relation called name
func (m *ClassMetadata) EmbeddedOne(name string) (Embedded, bool) {
	for _, rel := range m.EmbeddedsOne {
		if rel.Name == name {
			return rel, true
		}
	}
	return Embedded{}, false
}

// EmbeddedMany returns the embedded-many relation called name
func (m *ClassMetadata) EmbeddedMany(name string) (Embedded, bool) {
	for _, rel := range m.EmbeddedsMany {
		if rel.Name == name {
			return rel, true
		}
	}
	return Embedded{}, false
}

// referenceFields returns the set of fields backing a reference
func (m *ClassMetadata) referenceFields() map[string]struct{} {
	fields := make(map[string]struct{}, len(m.ReferencesOne)+len(m.ReferencesMany))
	for _, ref := range m.ReferencesOne {
		fields[ref.Field] = struct{}{}
	}
	for _, ref := range m.ReferencesMany {
		fields[ref.Field] = struct{}{}
	}
	return fields
}

// embeddeds returns the embedded-one and embedded-many relations
func (m *ClassMetadata) embeddeds() []Embedded {
	return append(append([]Embedded{}, m.EmbeddedsOne...), m.EmbeddedsMany...)
}

// validate checks that relations point at declared fields
func (m *ClassMetadata) validate() error {
	if m.Class == "" {
		return fmt.Errorf("class name cannot be empty")
	}
	if !m.IsEmbedded && m.Collection == "" {
		return fmt.Errorf("class %s: root classes need a collection", m.Class)
	}
	for _, ref := range append(append([]Reference{}, m.ReferencesOne...), m.ReferencesMany...) {
		if !m.HasField(ref.Field) {
			return fmt.Errorf("class %s: reference %s uses undeclared field %s", m.Class, ref.Name, ref.Field)
		}
	}
	return nil
}

// MetadataProvider resolves the declaration of a document class
type MetadataProvider interface {
	Metadata(class string) (*ClassMetadata, error)
}

// Registry is a MetadataProvider over statically declared classes
type Registry struct {
	mu           sync.RWMutex
	classes      map[string]*ClassMetadata
	byCollection map[string]string
}

// NewRegistry creates a registry containing classes
func NewRegistry(classes ...*ClassMetadata) (*Registry, error) {
	r := &Registry{
		classes:      make(map[string]*ClassMetadata),
		byCollection: make(map[string]string),
	}
	for _, class := range classes {
		if err := r.Register(class); err != nil {
			return nil, err
		}
	}

	// Every embedded target must be declared once all classes are known
	for _, class := range classes {
		for _, rel := range class.embeddeds() {
			if _, ok := r.classes[rel.Class]; !ok {
				return nil, fmt.Errorf("class %s: relation %s embeds undeclared class %s", class.Class, rel.Name, rel.Class)
			}
		}
	}
	return r, nil
}

// Register adds a class declaration
func (r *Registry) Register(meta *ClassMetadata) error {
	if err := meta.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.classes[meta.Class]; exists {
		return fmt.Errorf("class %s already registered", meta.Class)
	}
	for _, rel := range meta.embeddeds() {
		if target, ok := r.classes[rel.Class]; ok && !target.IsEmbedded {
			return fmt.Errorf("class %s: relation %s embeds root class %s", meta.Class, rel.Name, rel.Class)
		}
	}
	if !meta.IsEmbedded {
		for _, other := range r.classes {
			for _, rel := range other.embeddeds() {
				if rel.Class == meta.Class {
					return fmt.Errorf("class %s: relation %s embeds root class %s", other.Class, rel.Name, meta.Class)
				}
			}
		}
	}
	r.classes[meta.Class] = meta
	if !meta.IsEmbedded {
		r.byCollection[meta.Collection] = meta.Class
	}
	return nil
}

// Metadata implements MetadataProvider
func (r *Registry) Metadata(class string) (*ClassMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.classes[class]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	return meta, nil
}

// ClassForCollection returns the root class stored in collection
func (r *Registry) ClassForCollection(collection string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	class, ok := r.byCollection[collection]
	if !ok {
		return "", fmt.Errorf("%w: no class for collection %s", ErrUnknownClass, collection)
	}
	return class, nil
}
