package storage

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// Magic bytes to identify our file format
	MagicBytes = "GODM"
	// Current version
	FormatVersion = 1
	// File extension for snapshot files
	FileExtension = ".godm"
)

const (
	// FlagCompressed marks an lz4 block payload. Payloads lz4 cannot
	// shrink are stored as plain msgpack without the flag.
	FlagCompressed uint8 = 1 << iota
)

// FileHeader represents the header of a snapshot file
type FileHeader struct {
	Magic    [4]byte // "GODM"
	Version  uint8   // Format version
	Flags    uint8   // Payload flags
	Reserved [2]byte // Reserved for future use
	RawSize  uint64  // Size of the msgpack payload before compression
}

// WriteHeader writes the file header to the given writer
func WriteHeader(w io.Writer, flags uint8, rawSize uint64) error {
	header := FileHeader{
		Magic:   [4]byte{'G', 'O', 'D', 'M'},
		Version: FormatVersion,
		Flags:   flags,
		RawSize: rawSize,
	}

	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates the file header
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Validate magic bytes
	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid file format: expected %s, got %s", MagicBytes, string(header.Magic[:]))
	}

	// Validate version
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}

	return &header, nil
}

// CollectionMetadata is the persisted part of CollectionInfo
type CollectionMetadata struct {
	IDCounter int64 `msgpack:"id_counter"`
}

// StorageData represents the snapshot payload
type StorageData struct {
	Collections map[string]map[string]interface{} `msgpack:"collections"`
	Metadata    map[string]CollectionMetadata     `msgpack:"metadata,omitempty"`
}

// NewStorageData creates a new empty storage data structure
func NewStorageData() *StorageData {
	return &StorageData{
		Collections: make(map[string]map[string]interface{}),
		Metadata:    make(map[string]CollectionMetadata),
	}
}
