package sidetable

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
)

// ErrMissingKey is returned by Get when the owner has no value under the key
var ErrMissingKey = errors.New("missing side-table key")

// Handle identifies an in-memory object for the lifetime of the process.
// It is never a persisted document id.
type Handle uint64

// Table stores auxiliary values per object identity, outside the object's
// own persisted representation.
//
// Cleanups registered through Track run on a runtime goroutine, so every
// method takes the table lock.
type Table struct {
	mu      sync.Mutex
	next    Handle
	entries map[Handle]map[string]interface{}
}

// New creates an empty side-table
func New() *Table {
	return &Table{
		entries: make(map[Handle]map[string]interface{}),
	}
}

// NewHandle allocates a fresh identity
func (t *Table) NewHandle() Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	return t.next
}

// Track allocates a handle for obj and releases its entries once obj is
// unreachable. Stop the returned cleanup when releasing explicitly.
func Track[T any](t *Table, obj *T) (Handle, runtime.Cleanup) {
	h := t.NewHandle()
	return h, runtime.AddCleanup(obj, t.RemoveAll, h)
}

// Has reports whether owner has a value under key, even a nil one
func (t *Table) Has(owner Handle, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[owner][key]
	return ok
}

// Get returns the value stored under key
func (t *Table) Get(owner Handle, key string) (interface{}, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	value, ok := t.entries[owner][key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	return value, nil
}

// GetOrDefault returns the value stored under key, or def if there is none
func (t *Table) GetOrDefault(owner Handle, key string, def interface{}) interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if value, ok := t.entries[owner][key]; ok {
		return value
	}
	return def
}

// Set stores value under key, creating the owner's entry on first write
func (t *Table) Set(owner Handle, key string, value interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[owner]
	if !ok {
		entry = make(map[string]interface{})
		t.entries[owner] = entry
	}
	entry[key] = value
}

// Remove deletes a single key
func (t *Table) Remove(owner Handle, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[owner]
	if !ok {
		return
	}
	delete(entry, key)
	if len(entry) == 0 {
		delete(t.entries, owner)
	}
}

// RemovePrefix deletes every key of owner starting with prefix
func (t *Table) RemovePrefix(owner Handle, prefix string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[owner]
	if !ok {
		return
	}
	for key := range entry {
		if strings.HasPrefix(key, prefix) {
			delete(entry, key)
		}
	}
	if len(entry) == 0 {
		delete(t.entries, owner)
	}
}

// RemoveAll drops every entry of owner. Safe to call more than once.
func (t *Table) RemoveAll(owner Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, owner)
}

// Keys returns the owner's keys in sorted order
func (t *Table) Keys(owner Handle) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := make([]string, 0, len(t.entries[owner]))
	for key := range t.entries[owner] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of owners holding at least one entry
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
