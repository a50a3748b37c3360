package storage

import "time"

type StorageOption func(*StorageEngine)

// WithDataFile sets the snapshot file used by background saves
func WithDataFile(filename string) StorageOption {
	return func(engine *StorageEngine) {
		engine.dataFile = filename
	}
}

func WithBackgroundSave(interval time.Duration) StorageOption {
	return func(engine *StorageEngine) {
		engine.backgroundSave = true
		engine.saveInterval = interval
	}
}
