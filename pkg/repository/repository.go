package repository

import (
	"fmt"
	"log"

	"github.com/adfharrison1/go-odm/pkg/domain"
	"github.com/adfharrison1/go-odm/pkg/odm"
	"github.com/google/uuid"
)

// Repository persists the root documents of one class through a Store
type Repository struct {
	ctx   *odm.Context
	store domain.Store
	meta  *odm.ClassMetadata
}

// New creates a repository for the root class
func New(ctx *odm.Context, store domain.Store, class string) (*Repository, error) {
	meta, err := ctx.Metadata(class)
	if err != nil {
		return nil, err
	}
	if meta.IsEmbedded {
		return nil, fmt.Errorf("%w: %s is embedded", odm.ErrNotRoot, class)
	}
	return &Repository{ctx: ctx, store: store, meta: meta}, nil
}

// Collection returns the collection the class is stored in
func (r *Repository) Collection() string {
	return r.meta.Collection
}

// Create returns a new, unsaved document of the repository class
func (r *Repository) Create() (*odm.Document, error) {
	return r.ctx.Create(r.meta.Class)
}

// Find loads the document stored under id
func (r *Repository) Find(id string) (*odm.Document, error) {
	raw, err := r.store.GetById(r.meta.Collection, id)
	if err != nil {
		return nil, err
	}

	doc, err := r.ctx.Create(r.meta.Class)
	if err != nil {
		return nil, err
	}
	if err := doc.SetDocumentData(raw); err != nil {
		doc.Release()
		return nil, fmt.Errorf("hydrate %s %s: %w", r.meta.Class, id, err)
	}
	if err := doc.SetIsNew(false); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save writes new documents whole and persisted ones as a diff, then makes
// the written state the new baseline.
func (r *Repository) Save(docs ...*odm.Document) error {
	for _, doc := range docs {
		if doc.Class() != r.meta.Class {
			return fmt.Errorf("repository for %s cannot save %s", r.meta.Class, doc.Class())
		}

		var err error
		if doc.IsNew() {
			err = r.insert(doc)
		} else {
			err = r.update(doc)
		}
		if err != nil {
			return err
		}

		if err := doc.ClearModified(); err != nil {
			return fmt.Errorf("re-baseline %s %v: %w", r.meta.Class, doc.ID(), err)
		}
	}
	return nil
}

func (r *Repository) insert(doc *odm.Document) error {
	if doc.ID() == nil {
		if err := doc.SetID(uuid.NewString()); err != nil {
			return err
		}
	}

	raw, err := doc.Raw()
	if err != nil {
		return err
	}
	if err := r.store.Insert(r.meta.Collection, raw); err != nil {
		return fmt.Errorf("insert %s %v: %w", r.meta.Class, doc.ID(), err)
	}

	log.Printf("DEBUG: Inserted %s %v into %s", r.meta.Class, doc.ID(), r.meta.Collection)
	return doc.SetIsNew(false)
}

func (r *Repository) update(doc *odm.Document) error {
	if !doc.IsModified() {
		return nil
	}

	update, err := BuildUpdate(doc)
	if err != nil {
		return err
	}
	if update.IsEmpty() {
		return nil
	}

	id := fmt.Sprintf("%v", doc.ID())
	if err := r.store.Update(r.meta.Collection, id, update); err != nil {
		return fmt.Errorf("update %s %s: %w", r.meta.Class, id, err)
	}

	log.Printf("DEBUG: Updated %s %s (set: %d, unset: %d, push: %d)",
		r.meta.Class, id, len(update.Set), len(update.Unset), len(update.Push))
	return nil
}

// Delete removes a persisted document and releases its tracking state
func (r *Repository) Delete(doc *odm.Document) error {
	if doc.IsNew() {
		return fmt.Errorf("cannot delete unsaved %s", r.meta.Class)
	}

	id := fmt.Sprintf("%v", doc.ID())
	if err := r.store.DeleteById(r.meta.Collection, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", r.meta.Class, id, err)
	}

	doc.Release()
	log.Printf("DEBUG: Deleted %s %s from %s", r.meta.Class, id, r.meta.Collection)
	return nil
}
