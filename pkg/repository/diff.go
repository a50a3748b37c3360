package repository

import (
	"fmt"
	"sort"

	"github.com/adfharrison1/go-odm/pkg/domain"
	"github.com/adfharrison1/go-odm/pkg/odm"
)

// BuildUpdate computes the minimal diff that brings the stored copy of a
// persisted root up to date with its in-memory state.
func BuildUpdate(doc *odm.Document) (*domain.Update, error) {
	if !doc.IsRoot() {
		return nil, odm.ErrNotRoot
	}

	update := domain.NewUpdate()
	if err := diffDocument(doc, "", update); err != nil {
		return nil, err
	}
	sort.Strings(update.Unset)
	return update, nil
}

func diffDocument(doc *odm.Document, prefix string, update *domain.Update) error {
	meta := doc.Metadata()

	for name := range doc.FieldsModified() {
		value, _ := doc.Get(name)
		if value == nil {
			update.Unset = append(update.Unset, prefix+name)
			continue
		}
		update.Set[prefix+name] = domain.CopyValue(value)
	}

	for _, rel := range meta.EmbeddedsOne {
		child, err := doc.EmbeddedOne(rel.Name)
		if err != nil {
			return err
		}

		if doc.IsEmbeddedOneChanged(rel.Name) {
			if child == nil {
				update.Unset = append(update.Unset, prefix+rel.Name)
				continue
			}
			raw, err := child.Raw()
			if err != nil {
				return err
			}
			update.Set[prefix+rel.Name] = map[string]interface{}(raw)
			continue
		}

		if child != nil && child.IsModified() {
			if err := diffDocument(child, prefix+rel.Name+".", update); err != nil {
				return err
			}
		}
	}

	for _, rel := range meta.EmbeddedsMany {
		group, ok := doc.LoadedEmbeddedMany(rel.Name)
		if !ok {
			continue
		}
		if err := diffGroup(group, prefix+rel.Name, update); err != nil {
			return fmt.Errorf("%s%s: %w", prefix, rel.Name, err)
		}
	}

	return nil
}

func diffGroup(group *odm.EmbeddedGroup, path string, update *domain.Update) error {
	// Removals shift positions, so the whole collection is rewritten
	if len(group.Removed()) > 0 {
		all, err := group.All()
		if err != nil {
			return err
		}
		items, err := rawDocuments(all)
		if err != nil {
			return err
		}
		update.Set[path] = items
		return nil
	}

	if group.IsSavedInitialized() {
		saved, err := group.Saved()
		if err != nil {
			return err
		}
		for _, doc := range saved {
			if !doc.IsModified() {
				continue
			}
			_, docPath, err := doc.RootAndPath()
			if err != nil {
				return err
			}
			if err := diffDocument(doc, docPath+".", update); err != nil {
				return err
			}
		}
	}

	if added := group.Added(); len(added) > 0 {
		items, err := rawDocuments(added)
		if err != nil {
			return err
		}
		update.Push[path] = items
	}

	return nil
}

func rawDocuments(docs []*odm.Document) ([]interface{}, error) {
	items := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		raw, err := doc.Raw()
		if err != nil {
			return nil, err
		}
		items = append(items, map[string]interface{}(raw))
	}
	return items, nil
}
