package storage

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/adfharrison1/go-odm/pkg/domain"
)

// CreateCollection creates a new collection
func (se *StorageEngine) CreateCollection(collName string) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	if collName == "" {
		return fmt.Errorf("collection name cannot be empty")
	}

	if _, exists := se.collections[collName]; exists {
		return fmt.Errorf("collection %s already exists", collName)
	}

	se.createCollectionUnsafe(collName)
	return nil
}

// createCollectionUnsafe registers an empty collection (caller holds the write lock)
func (se *StorageEngine) createCollectionUnsafe(collName string) *domain.Collection {
	collection := domain.NewCollection(collName)
	se.collections[collName] = collection
	se.infos[collName] = &CollectionInfo{
		Name:         collName,
		State:        CollectionStateLoaded,
		LastModified: time.Now(),
	}
	return collection
}

// Collections returns the collection names in sorted order
func (se *StorageEngine) Collections() []string {
	se.mu.RLock()
	defer se.mu.RUnlock()

	names := make([]string, 0, len(se.collections))
	for name := range se.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Insert stores a copy of doc, creating the collection on first use.
// Documents without an _id get the next numeric id of the collection.
func (se *StorageEngine) Insert(collName string, doc domain.Document) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	collection, exists := se.collections[collName]
	if !exists {
		collection = se.createCollectionUnsafe(collName)
	}

	stored := doc.Copy()
	if stored == nil {
		stored = domain.Document{}
	}

	var docID string
	if id, ok := stored["_id"]; ok {
		docID = fmt.Sprintf("%v", id)
	} else {
		docID = se.nextIDUnsafe(collName)
		stored["_id"] = docID
	}

	if _, exists := collection.Documents[docID]; exists {
		return fmt.Errorf("document with id %s already exists in collection %s", docID, collName)
	}

	collection.Documents[docID] = stored
	se.markDirty(collName, 1)
	return nil
}

// GetById returns a copy of a document
func (se *StorageEngine) GetById(collName, docId string) (domain.Document, error) {
	se.mu.RLock()
	defer se.mu.RUnlock()

	doc, err := se.getDocumentUnsafe(collName, docId)
	if err != nil {
		return nil, err
	}
	return doc.Copy(), nil
}

// Update applies a diff to a stored document: Set, then Unset, then Push
func (se *StorageEngine) Update(collName, docId string, update *domain.Update) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	doc, err := se.getDocumentUnsafe(collName, docId)
	if err != nil {
		return err
	}

	// Work on a copy so a failing path leaves the stored document intact
	working := doc.Copy()
	if err := applyUpdate(working, update); err != nil {
		return fmt.Errorf("update of document %s in collection %s: %w", docId, collName, err)
	}

	se.collections[collName].Documents[docId] = working
	se.markDirty(collName, 0)
	return nil
}

// DeleteById removes a specific document by its ID
func (se *StorageEngine) DeleteById(collName, docId string) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	if _, err := se.getDocumentUnsafe(collName, docId); err != nil {
		return err
	}

	delete(se.collections[collName].Documents, docId)
	se.markDirty(collName, -1)
	return nil
}

// nextIDUnsafe skips counter values already taken by explicit ids
func (se *StorageEngine) nextIDUnsafe(collName string) string {
	documents := se.collections[collName].Documents
	for {
		se.idCounters[collName]++
		docID := strconv.FormatInt(se.idCounters[collName], 10)
		if _, taken := documents[docID]; !taken {
			return docID
		}
	}
}

func (se *StorageEngine) getDocumentUnsafe(collName, docId string) (domain.Document, error) {
	collection, exists := se.collections[collName]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collName)
	}

	doc, exists := collection.Documents[docId]
	if !exists {
		return nil, fmt.Errorf("%w: id %s in collection %s", ErrDocumentNotFound, docId, collName)
	}
	return doc, nil
}

func applyUpdate(doc domain.Document, update *domain.Update) error {
	if update == nil {
		return nil
	}

	paths := make([]string, 0, len(update.Set))
	for path := range update.Set {
		paths = append(paths, path)
	}
	// Parents before children so a whole-array set is not clobbered
	sort.Strings(paths)

	for _, path := range paths {
		if err := checkPath(path); err != nil {
			return err
		}
		if err := setPath(doc, path, domain.CopyValue(update.Set[path])); err != nil {
			return err
		}
	}

	for _, path := range update.Unset {
		if err := checkPath(path); err != nil {
			return err
		}
		if err := unsetPath(doc, path); err != nil {
			return err
		}
	}

	paths = paths[:0]
	for path := range update.Push {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := checkPath(path); err != nil {
			return err
		}
		values := domain.CopyValue(update.Push[path]).([]interface{})
		if err := pushPath(doc, path, values); err != nil {
			return err
		}
	}

	return nil
}

func checkPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty update path")
	}
	if path == "_id" || strings.HasPrefix(path, "_id.") {
		return fmt.Errorf("cannot update _id")
	}
	return nil
}
