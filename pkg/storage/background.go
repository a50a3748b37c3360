package storage

import (
	"log"
	"time"
)

// StartBackgroundWorkers starts the periodic snapshot worker
func (se *StorageEngine) StartBackgroundWorkers() {
	if !se.backgroundSave {
		return
	}

	log.Printf("INFO: Background save every %v to %s", se.saveInterval, se.dataFile)

	se.backgroundWg.Add(1)
	go func() {
		defer se.backgroundWg.Done()
		ticker := time.NewTicker(se.saveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				se.saveIfDirty()
			case <-se.stopChan:
				return
			}
		}
	}()
}

// StopBackgroundWorkers stops background workers
func (se *StorageEngine) StopBackgroundWorkers() {
	select {
	case <-se.stopChan:
		// Channel already closed, do nothing
	default:
		close(se.stopChan)
	}
	se.backgroundWg.Wait()
}

// DataFile returns the snapshot path used by background saves
func (se *StorageEngine) DataFile() string {
	return se.dataFile
}

func (se *StorageEngine) saveIfDirty() {
	if !se.isDirty() {
		log.Printf("DEBUG: No dirty collections to save")
		return
	}
	if err := se.SaveToFile(se.dataFile); err != nil {
		log.Printf("ERROR: Background save failed: %v", err)
	}
}
