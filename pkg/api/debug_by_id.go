package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/adfharrison1/go-odm/pkg/repository"
	"github.com/gorilla/mux"
)

// HandleDebugById hydrates a document and returns its debug tree
func (h *Handler) HandleDebugById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	docId := vars["id"]

	log.Printf("INFO: handleDebugById called for collection '%s', document '%s'", collName, docId)

	class, err := h.classes.ClassForCollection(collName)
	if err != nil {
		log.Printf("ERROR: No class mapped to collection '%s': %v", collName, err)
		WriteJSONError(w, statusFor(err), err.Error())
		return
	}

	repo, err := repository.New(h.odm, h.storage, class)
	if err != nil {
		log.Printf("ERROR: Could not open repository for class '%s': %v", class, err)
		WriteJSONError(w, statusFor(err), err.Error())
		return
	}

	doc, err := repo.Find(docId)
	if err != nil {
		log.Printf("ERROR: Could not load document '%s' from collection '%s': %v", docId, collName, err)
		WriteJSONError(w, statusFor(err), err.Error())
		return
	}
	defer doc.Release()

	tree, err := doc.Debug()
	if err != nil {
		log.Printf("ERROR: Debug of document '%s' failed: %v", docId, err)
		WriteJSONError(w, statusFor(err), err.Error())
		return
	}

	log.Printf("INFO: Built debug tree for document '%s' in collection '%s'", docId, collName)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tree)
}
