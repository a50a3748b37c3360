package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/adfharrison1/go-odm/pkg/domain"
)

var (
	// ErrCollectionNotFound is returned for collections that were never created
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrDocumentNotFound is returned for ids absent from a collection
	ErrDocumentNotFound = errors.New("document not found")
)

// StorageEngine keeps raw documents in memory and snapshots them to disk
type StorageEngine struct {
	mu          sync.RWMutex
	collections map[string]*domain.Collection
	infos       map[string]*CollectionInfo
	idCounters  map[string]int64

	// Configuration
	dataFile       string
	backgroundSave bool
	saveInterval   time.Duration

	// Background workers
	backgroundWg sync.WaitGroup
	stopChan     chan struct{}
}

var _ domain.Store = (*StorageEngine)(nil)

// NewStorageEngine creates a new storage engine
func NewStorageEngine(options ...StorageOption) *StorageEngine {
	engine := &StorageEngine{
		collections:    make(map[string]*domain.Collection),
		infos:          make(map[string]*CollectionInfo),
		idCounters:     make(map[string]int64),
		dataFile:       "go-odm_data.godm",
		backgroundSave: false,
		saveInterval:   5 * time.Minute,
		stopChan:       make(chan struct{}),
	}

	// Apply options
	for _, option := range options {
		option(engine)
	}

	return engine
}

// CollectionInfo returns a snapshot of the metadata of a collection
func (se *StorageEngine) CollectionInfo(collName string) (CollectionInfo, error) {
	se.mu.RLock()
	defer se.mu.RUnlock()

	info, exists := se.infos[collName]
	if !exists {
		return CollectionInfo{}, ErrCollectionNotFound
	}
	return *info, nil
}

// markDirty records a write to a collection (caller holds the write lock)
func (se *StorageEngine) markDirty(collName string, delta int64) {
	info := se.infos[collName]
	info.State = CollectionStateDirty
	info.DocumentCount += delta
	info.LastModified = time.Now()
}

// isDirty reports whether any collection changed since the last snapshot
func (se *StorageEngine) isDirty() bool {
	se.mu.RLock()
	defer se.mu.RUnlock()
	for _, info := range se.infos {
		if info.State == CollectionStateDirty {
			return true
		}
	}
	return false
}
