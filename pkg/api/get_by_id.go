package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleGetById handles GET requests for the stored form of a document
func (h *Handler) HandleGetById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	docId := vars["id"]

	log.Printf("INFO: handleGetById called for collection '%s', document '%s'", collName, docId)

	doc, err := h.storage.GetById(collName, docId)
	if err != nil {
		log.Printf("ERROR: Document '%s' not found in collection '%s': %v", docId, collName, err)
		WriteJSONError(w, statusFor(err), err.Error())
		return
	}

	log.Printf("INFO: Retrieved document '%s' from collection '%s'", docId, collName)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}
