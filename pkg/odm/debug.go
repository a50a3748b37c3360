package odm

import (
	"fmt"
	"strconv"
	"strings"
)

// DebugEntry is one document of an embedded-many relation in a debug tree
type DebugEntry struct {
	Key      string                 `json:"key"`
	Document map[string]interface{} `json:"document"`
}

// accessor resolves one name of a debug tree
type accessor struct {
	name string
	get  func(d *Document) (interface{}, error)
}

// accessorsFor returns the debug accessors of a class, built once
func (c *Context) accessorsFor(meta *ClassMetadata) []accessor {
	c.accessorsMu.Lock()
	defer c.accessorsMu.Unlock()

	if accessors, ok := c.accessors[meta.Class]; ok {
		return accessors
	}
	accessors := buildAccessors(meta)
	c.accessors[meta.Class] = accessors
	return accessors
}

func buildAccessors(meta *ClassMetadata) []accessor {
	var accessors []accessor
	backing := meta.referenceFields()

	for _, field := range meta.Fields {
		if _, ok := backing[field]; ok {
			continue
		}
		accessors = append(accessors, accessor{name: field, get: fieldAccessor(field)})
	}
	for _, ref := range meta.ReferencesOne {
		accessors = append(accessors, accessor{name: ref.Name, get: fieldAccessor(ref.Field)})
	}
	for _, ref := range meta.ReferencesMany {
		accessors = append(accessors, accessor{name: ref.Name, get: fieldAccessor(ref.Field)})
	}
	for _, rel := range meta.EmbeddedsOne {
		name := rel.Name
		accessors = append(accessors, accessor{name: name, get: func(d *Document) (interface{}, error) {
			child := d.embeddedsOne[name]
			if child == nil {
				return nil, nil
			}
			return child.Debug()
		}})
	}
	for _, rel := range meta.EmbeddedsMany {
		name := rel.Name
		accessors = append(accessors, accessor{name: name, get: func(d *Document) (interface{}, error) {
			if _, _, attached := d.childRootAndPath(name); !attached {
				group, ok := d.LoadedEmbeddedMany(name)
				if !ok {
					return []DebugEntry{}, nil
				}
				return group.debugDetached()
			}
			group, err := d.EmbeddedMany(name)
			if err != nil {
				return nil, err
			}
			return group.debug()
		}})
	}
	return accessors
}

func fieldAccessor(field string) func(d *Document) (interface{}, error) {
	return func(d *Document) (interface{}, error) {
		return d.fields[field], nil
	}
}

// Debug dumps the current values of the document for diagnostics.
// References show their stored keys, embedded documents their own tree.
func (d *Document) Debug() (map[string]interface{}, error) {
	tree := make(map[string]interface{})
	for _, acc := range d.ctx.accessorsFor(d.meta) {
		value, err := acc.get(d)
		if err != nil {
			return nil, fmt.Errorf("debug %s.%s: %w", d.meta.Class, acc.name, err)
		}
		tree[acc.name] = value
	}
	return tree, nil
}

func (g *EmbeddedGroup) debug() ([]DebugEntry, error) {
	all, err := g.All()
	if err != nil {
		return nil, err
	}
	entries := make([]DebugEntry, 0, len(all))
	for _, doc := range all {
		_, path, err := doc.RootAndPath()
		if err != nil {
			return nil, err
		}
		tree, err := doc.Debug()
		if err != nil {
			return nil, err
		}
		entries = append(entries, DebugEntry{Key: path[strings.LastIndex(path, ".")+1:], Document: tree})
	}
	return entries, nil
}

// debugDetached renders a group without root/path from its added documents
func (g *EmbeddedGroup) debugDetached() ([]DebugEntry, error) {
	removed := g.removalCounts()
	entries := make([]DebugEntry, 0, len(g.add))
	for i, doc := range g.add {
		if removed[doc] > 0 {
			removed[doc]--
			continue
		}
		tree, err := doc.Debug()
		if err != nil {
			return nil, err
		}
		entries = append(entries, DebugEntry{Key: "_add" + strconv.Itoa(i), Document: tree})
	}
	return entries, nil
}
