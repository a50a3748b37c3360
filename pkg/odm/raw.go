package odm

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/adfharrison1/go-odm/pkg/domain"
)

// RawEntry is one position of a stored embedded-many collection. A nil
// Data is a tombstone left by a removed document.
type RawEntry struct {
	Key  string
	Data domain.Document
}

// ParseRawCollection normalizes stored embedded-many data: an array
// (index is the key) or a map keyed by position.
func ParseRawCollection(value interface{}) ([]RawEntry, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []RawEntry:
		return v, nil
	case []interface{}:
		entries := make([]RawEntry, 0, len(v))
		for i, item := range v {
			data, err := asRawDocument(item)
			if err != nil {
				return nil, fmt.Errorf("position %d: %w", i, err)
			}
			entries = append(entries, RawEntry{Key: strconv.Itoa(i), Data: data})
		}
		return entries, nil
	case []domain.Document:
		entries := make([]RawEntry, 0, len(v))
		for i, item := range v {
			entries = append(entries, RawEntry{Key: strconv.Itoa(i), Data: item})
		}
		return entries, nil
	case []map[string]interface{}:
		entries := make([]RawEntry, 0, len(v))
		for i, item := range v {
			entries = append(entries, RawEntry{Key: strconv.Itoa(i), Data: item})
		}
		return entries, nil
	case domain.Document:
		return parseKeyedCollection(v)
	case map[string]interface{}:
		return parseKeyedCollection(v)
	default:
		return nil, fmt.Errorf("unsupported embedded collection type %T", value)
	}
}

func parseKeyedCollection(m map[string]interface{}) ([]RawEntry, error) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	entries := make([]RawEntry, 0, len(keys))
	for _, key := range keys {
		data, err := asRawDocument(m[key])
		if err != nil {
			return nil, fmt.Errorf("position %s: %w", key, err)
		}
		entries = append(entries, RawEntry{Key: key, Data: data})
	}
	return entries, nil
}

func asRawDocument(value interface{}) (domain.Document, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case domain.Document:
		return v, nil
	case map[string]interface{}:
		return v, nil
	default:
		return nil, fmt.Errorf("expected embedded document, got %T", value)
	}
}

// SetDocumentData populates the document from raw stored data. It sets the
// baseline directly and leaves no ledger entries.
func (d *Document) SetDocumentData(raw domain.Document) error {
	if id, ok := raw["_id"]; ok && d.IsRoot() {
		if err := d.SetID(id); err != nil {
			return err
		}
	}

	for _, field := range d.meta.Fields {
		if value, ok := raw[field]; ok {
			d.fields[field] = value
		}
	}

	for _, rel := range d.meta.EmbeddedsOne {
		value, ok := raw[rel.Name]
		if !ok {
			continue
		}
		data, err := asRawDocument(value)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", d.meta.Class, rel.Name, err)
		}
		if data == nil {
			d.embeddedsOne[rel.Name] = nil
			continue
		}
		child, err := d.ctx.Create(rel.Class)
		if err != nil {
			return err
		}
		if root, path, ok := d.childRootAndPath(rel.Name); ok {
			child.SetRootAndPath(root, path)
		}
		if err := child.SetDocumentData(data); err != nil {
			return err
		}
		d.embeddedsOne[rel.Name] = child
	}

	for _, rel := range d.meta.EmbeddedsMany {
		value, ok := raw[rel.Name]
		if !ok {
			continue
		}
		entries, err := ParseRawCollection(value)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", d.meta.Class, rel.Name, err)
		}
		group, err := d.EmbeddedMany(rel.Name)
		if err != nil {
			return err
		}
		group.SetSavedData(entries)
	}

	return nil
}

// Raw returns the full stored representation of the document. Embedded
// collections are written as arrays in All order.
func (d *Document) Raw() (domain.Document, error) {
	raw := domain.Document{}
	if id := d.ID(); id != nil {
		raw["_id"] = id
	}

	for _, field := range d.meta.Fields {
		if value, ok := d.fields[field]; ok && value != nil {
			raw[field] = value
		}
	}

	for _, rel := range d.meta.EmbeddedsOne {
		child := d.embeddedsOne[rel.Name]
		if child == nil {
			continue
		}
		childRaw, err := child.Raw()
		if err != nil {
			return nil, err
		}
		raw[rel.Name] = map[string]interface{}(childRaw)
	}

	for _, rel := range d.meta.EmbeddedsMany {
		group, ok := d.embeddedsMany[rel.Name]
		if !ok {
			continue
		}
		items, err := group.rawAll()
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", d.meta.Class, rel.Name, err)
		}
		if len(items) > 0 {
			raw[rel.Name] = items
		}
	}

	return raw, nil
}
