package odm

import (
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"weak"

	"github.com/adfharrison1/go-odm/pkg/sidetable"
)

// EmbeddedGroup is an embedded-many relation. Documents are partitioned
// into saved (materialized lazily from stored data), added and removed.
type EmbeddedGroup struct {
	ctx     *Context
	class   string
	handle  sidetable.Handle
	cleanup runtime.Cleanup

	add    []*Document
	remove []*Document

	savedInitialized bool
	saved            []*Document
	savedKeys        []string
	// nextKey is the first stored position after the saved data
	nextKey int
}

func newEmbeddedGroup(ctx *Context, class string) *EmbeddedGroup {
	g := &EmbeddedGroup{
		ctx:   ctx,
		class: class,
	}
	g.handle, g.cleanup = sidetable.Track(ctx.table, g)
	return g
}

// DocumentClass returns the class of the documents in the group
func (g *EmbeddedGroup) DocumentClass() string {
	return g.class
}

// SetRootAndPath attaches the group at path inside root. Added documents
// are re-attached at path._add<index>, saved ones at path.<key>.
func (g *EmbeddedGroup) SetRootAndPath(root *Document, path string) {
	g.ctx.table.Set(g.handle, keyRootAndPath, rootAndPath{root: weak.Make(root), path: path})

	for i, doc := range g.add {
		doc.SetRootAndPath(root, addPath(path, i))
	}
	for i, doc := range g.saved {
		doc.SetRootAndPath(root, path+"."+g.savedKeys[i])
	}
}

// RootAndPath returns where the group is attached
func (g *EmbeddedGroup) RootAndPath() (*Document, string, error) {
	return lookupRootAndPath(g.ctx.table, g.handle)
}

// Add appends documents to the added list. The same document may be added
// more than once; each occurrence is tracked on its own.
func (g *EmbeddedGroup) Add(docs ...*Document) {
	root, path, err := g.RootAndPath()
	for _, doc := range docs {
		index := len(g.add)
		g.add = append(g.add, doc)
		if err == nil {
			doc.SetRootAndPath(root, addPath(path, index))
		}
	}
}

// Remove marks documents for deletion on the next write
func (g *EmbeddedGroup) Remove(docs ...*Document) {
	g.remove = append(g.remove, docs...)
}

// Added returns the documents added since the last baseline
func (g *EmbeddedGroup) Added() []*Document {
	return slices.Clone(g.add)
}

// Removed returns the documents marked for deletion
func (g *EmbeddedGroup) Removed() []*Document {
	return slices.Clone(g.remove)
}

// ClearAdd forgets the added documents
func (g *EmbeddedGroup) ClearAdd() {
	g.add = nil
}

// ClearRemove forgets the removal marks
func (g *EmbeddedGroup) ClearRemove() {
	g.remove = nil
}

// SetSavedData sets the stored representation the saved documents are
// materialized from.
func (g *EmbeddedGroup) SetSavedData(entries []RawEntry) {
	g.ctx.table.Set(g.handle, keySavedData, entries)
}

// initializeSavedData registers the group path with the root as fetched
// and returns the stored data, if any.
func (g *EmbeddedGroup) initializeSavedData() ([]RawEntry, error) {
	root, path, err := g.RootAndPath()
	if err != nil {
		return nil, fmt.Errorf("initialize saved data of %s group: %w", g.class, err)
	}
	root.AddFieldCache(path)

	entries, _ := g.ctx.table.GetOrDefault(g.handle, keySavedData, []RawEntry(nil)).([]RawEntry)
	return entries, nil
}

// initializeSaved materializes stored entries, skipping tombstones
func (g *EmbeddedGroup) initializeSaved(entries []RawEntry) ([]*Document, []string, int, error) {
	root, path, err := g.RootAndPath()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("initialize saved %s documents: %w", g.class, err)
	}

	docs := make([]*Document, 0, len(entries))
	keys := make([]string, 0, len(entries))
	next := len(entries)
	for _, entry := range entries {
		if n, err := strconv.Atoi(entry.Key); err == nil && n+1 > next {
			next = n + 1
		}
		if entry.Data == nil {
			continue
		}

		doc, err := g.ctx.Create(g.class)
		if err != nil {
			return nil, nil, 0, err
		}
		doc.SetRootAndPath(root, path+"."+entry.Key)
		if err := doc.SetDocumentData(entry.Data); err != nil {
			return nil, nil, 0, fmt.Errorf("%s.%s: %w", path, entry.Key, err)
		}
		docs = append(docs, doc)
		keys = append(keys, entry.Key)
	}
	return docs, keys, next, nil
}

// IsSavedInitialized reports whether Saved has materialized the stored data
func (g *EmbeddedGroup) IsSavedInitialized() bool {
	return g.savedInitialized
}

// Saved returns the stored documents, materializing them on first call.
// Later calls return the memoized documents.
func (g *EmbeddedGroup) Saved() ([]*Document, error) {
	if !g.savedInitialized {
		entries, err := g.initializeSavedData()
		if err != nil {
			return nil, err
		}
		docs, keys, next, err := g.initializeSaved(entries)
		if err != nil {
			return nil, err
		}
		g.saved, g.savedKeys, g.nextKey = docs, keys, next
		g.savedInitialized = true
	}
	return slices.Clone(g.saved), nil
}

// All returns saved then added documents, without those marked for removal
func (g *EmbeddedGroup) All() ([]*Document, error) {
	saved, err := g.Saved()
	if err != nil {
		return nil, err
	}

	removed := g.removalCounts()
	all := make([]*Document, 0, len(saved)+len(g.add))
	for _, doc := range append(saved, g.add...) {
		if removed[doc] > 0 {
			removed[doc]--
			continue
		}
		all = append(all, doc)
	}
	return all, nil
}

// Count returns the number of documents All would return
func (g *EmbeddedGroup) Count() (int, error) {
	all, err := g.All()
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// Replace makes docs the whole content of the group
func (g *EmbeddedGroup) Replace(docs ...*Document) error {
	g.ClearAdd()
	g.ClearRemove()
	saved, err := g.Saved()
	if err != nil {
		return err
	}
	g.Remove(saved...)
	g.Add(docs...)
	return nil
}

// MarkAllSaved commits the group: surviving saved documents keep their
// positions, added ones take the next free positions, removed ones are
// dropped. Any removal compacts positions to 0..n-1. Nothing changes when
// the group or a document below it cannot be committed.
func (g *EmbeddedGroup) MarkAllSaved() error {
	if err := g.prepareCommit(); err != nil {
		return err
	}
	return g.markAllSaved()
}

// prepareCommit materializes the saved documents and checks that the group
// and every document it would commit are attached
func (g *EmbeddedGroup) prepareCommit() error {
	if !g.pendingCommit() {
		return nil
	}
	if _, _, err := g.RootAndPath(); err != nil {
		return err
	}

	all, err := g.All()
	if err != nil {
		return err
	}
	for _, doc := range all {
		if err := doc.prepareCommit(); err != nil {
			return err
		}
	}
	return nil
}

func (g *EmbeddedGroup) pendingCommit() bool {
	return g.savedInitialized || len(g.add) > 0 || len(g.remove) > 0
}

func (g *EmbeddedGroup) markAllSaved() error {
	if !g.pendingCommit() {
		return nil
	}

	saved, err := g.Saved()
	if err != nil {
		return err
	}
	root, path, err := g.RootAndPath()
	if err != nil {
		return err
	}

	removed := g.removalCounts()
	compact := len(g.remove) > 0
	docs := make([]*Document, 0, len(saved)+len(g.add))
	keys := make([]string, 0, len(saved)+len(g.add))
	next := g.nextKey

	for i, doc := range saved {
		if removed[doc] > 0 {
			removed[doc]--
			continue
		}
		docs = append(docs, doc)
		keys = append(keys, g.savedKeys[i])
	}
	for _, doc := range g.add {
		if removed[doc] > 0 {
			removed[doc]--
			continue
		}
		docs = append(docs, doc)
		keys = append(keys, strconv.Itoa(next))
		next++
	}

	if compact {
		for i := range keys {
			keys[i] = strconv.Itoa(i)
		}
		next = len(keys)
	}

	g.saved, g.savedKeys, g.nextKey = docs, keys, next
	g.add = nil
	g.remove = nil

	for i, doc := range docs {
		doc.SetRootAndPath(root, path+"."+keys[i])
		if err := doc.clearModified(); err != nil {
			return err
		}
	}
	return nil
}

// isModified reports whether the group changed since the last baseline
func (g *EmbeddedGroup) isModified(rootIsNew bool) bool {
	for _, doc := range g.add {
		if doc.IsModified() {
			return true
		}
	}
	if !rootIsNew && len(g.remove) > 0 {
		return true
	}
	if g.savedInitialized {
		if len(g.add) > 0 {
			return true
		}
		for _, doc := range g.saved {
			if doc.IsModified() {
				return true
			}
		}
	}
	return false
}

// rawAll returns the stored representation of All
func (g *EmbeddedGroup) rawAll() ([]interface{}, error) {
	all, err := g.All()
	if err != nil {
		return nil, err
	}
	items := make([]interface{}, 0, len(all))
	for _, doc := range all {
		raw, err := doc.Raw()
		if err != nil {
			return nil, err
		}
		items = append(items, map[string]interface{}(raw))
	}
	return items, nil
}

func (g *EmbeddedGroup) removalCounts() map[*Document]int {
	counts := make(map[*Document]int, len(g.remove))
	for _, doc := range g.remove {
		counts[doc]++
	}
	return counts
}

// Release drops the side-table entries of the group and its documents
func (g *EmbeddedGroup) Release() {
	for _, doc := range g.add {
		doc.Release()
	}
	for _, doc := range g.remove {
		doc.Release()
	}
	for _, doc := range g.saved {
		doc.Release()
	}
	g.cleanup.Stop()
	g.ctx.table.RemoveAll(g.handle)
}

func addPath(path string, index int) string {
	return path + "._add" + strconv.Itoa(index)
}
