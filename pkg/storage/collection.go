package storage

import (
	"time"
)

type CollectionState int

const (
	CollectionStateLoaded CollectionState = iota
	CollectionStateDirty
)

type CollectionInfo struct {
	Name          string
	DocumentCount int64
	LastModified  time.Time
	State         CollectionState
}
