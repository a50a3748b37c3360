package storage

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/adfharrison1/go-odm/pkg/domain"
	"github.com/natefinch/atomic"
	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// SaveToFile writes a snapshot of every collection to filename. The file is
// replaced atomically so a crash never leaves a partial snapshot behind.
func (se *StorageEngine) SaveToFile(filename string) error {
	start := time.Now()

	storageData, saved := se.snapshot()

	payload, err := encodeSnapshot(storageData)
	if err != nil {
		se.restoreDirty(saved)
		return err
	}

	if err := atomic.WriteFile(filename, bytes.NewReader(payload)); err != nil {
		se.restoreDirty(saved)
		return fmt.Errorf("failed to write snapshot %s: %w", filename, err)
	}

	log.Printf("INFO: Saved %d collections to %s (%d bytes) in %v",
		len(storageData.Collections), filename, len(payload), time.Since(start))
	return nil
}

// LoadFromFile replaces the in-memory collections with the snapshot in
// filename. A missing file leaves the engine empty.
func (se *StorageEngine) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("INFO: No snapshot at %s, starting empty", filename)
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}

	storageData, err := decodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", filename, err)
	}

	// Build the new state aside so a bad document leaves the engine untouched
	collections := make(map[string]*domain.Collection, len(storageData.Collections))
	infos := make(map[string]*CollectionInfo, len(storageData.Collections))
	idCounters := make(map[string]int64, len(storageData.Collections))

	for collName, docs := range storageData.Collections {
		collection := domain.NewCollection(collName)

		// Track the highest numeric ID to restore the counter properly
		maxID := storageData.Metadata[collName].IDCounter
		for docID, docData := range docs {
			doc, ok := docData.(map[string]interface{})
			if !ok {
				return fmt.Errorf("failed to load %s: document %s in collection %s is %T, not a map",
					filename, docID, collName, docData)
			}
			collection.Documents[docID] = domain.Document(doc)

			if id, err := strconv.ParseInt(docID, 10, 64); err == nil && id > maxID {
				maxID = id
			}
		}

		collections[collName] = collection
		infos[collName] = &CollectionInfo{
			Name:          collName,
			DocumentCount: int64(len(collection.Documents)),
			State:         CollectionStateLoaded,
			LastModified:  time.Now(),
		}
		idCounters[collName] = maxID
	}

	se.mu.Lock()
	se.collections, se.infos, se.idCounters = collections, infos, idCounters
	se.mu.Unlock()

	for collName, collection := range collections {
		log.Printf("INFO: Loaded collection '%s' with %d documents, restored ID counter to %d",
			collName, len(collection.Documents), idCounters[collName])
	}
	return nil
}

// snapshot copies every collection and marks them clean. It returns the
// names of the collections that were dirty.
func (se *StorageEngine) snapshot() (*StorageData, []string) {
	se.mu.Lock()
	defer se.mu.Unlock()

	storageData := NewStorageData()
	var saved []string
	for collName, collection := range se.collections {
		docs := make(map[string]interface{}, len(collection.Documents))
		for docID, doc := range collection.Documents {
			docs[docID] = map[string]interface{}(doc.Copy())
		}
		storageData.Collections[collName] = docs
		storageData.Metadata[collName] = CollectionMetadata{IDCounter: se.idCounters[collName]}

		if info := se.infos[collName]; info.State == CollectionStateDirty {
			info.State = CollectionStateLoaded
			saved = append(saved, collName)
		}
	}
	return storageData, saved
}

func (se *StorageEngine) restoreDirty(collNames []string) {
	se.mu.Lock()
	defer se.mu.Unlock()
	for _, collName := range collNames {
		if info, exists := se.infos[collName]; exists {
			info.State = CollectionStateDirty
		}
	}
}

// maxExpansion bounds the lz4 block decompression ratio
const maxExpansion = 255

func encodeSnapshot(storageData *StorageData) ([]byte, error) {
	msgpackData, err := msgpack.Marshal(storageData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	compressedData := make([]byte, lz4.CompressBlockBound(len(msgpackData)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(msgpackData, compressedData, hashTable[:])
	if err != nil {
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}

	var flags uint8
	body := msgpackData
	// n == 0 means the block is incompressible
	if n > 0 && n < len(msgpackData) {
		flags |= FlagCompressed
		body = compressedData[:n]
	}

	var buf bytes.Buffer
	if err := WriteHeader(&buf, flags, uint64(len(msgpackData))); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	buf.Write(body)
	return buf.Bytes(), nil
}

func decodeSnapshot(data []byte) (*StorageData, error) {
	reader := bytes.NewReader(data)
	header, err := ReadHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("invalid file header: %w", err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	// An lz4 block expands at most 255 times, a plain payload not at all
	limit := uint64(len(body))
	if header.Flags&FlagCompressed != 0 {
		limit *= maxExpansion
	}
	if header.RawSize > limit {
		return nil, fmt.Errorf("invalid file header: raw size %d exceeds %d for a %d byte payload",
			header.RawSize, limit, len(body))
	}

	if header.Flags&FlagCompressed != 0 {
		decompressedData := make([]byte, header.RawSize)
		n, err := lz4.UncompressBlock(body, decompressedData)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress data: %w", err)
		}
		body = decompressedData[:n]
	}

	if uint64(len(body)) != header.RawSize {
		return nil, fmt.Errorf("payload size mismatch: header says %d, got %d", header.RawSize, len(body))
	}

	// Loose decoding widens integers to int64/uint64 and floats to float64
	storageData := NewStorageData()
	dec := msgpack.NewDecoder(bytes.NewReader(body))
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(storageData); err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	return storageData, nil
}
