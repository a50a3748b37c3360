package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/adfharrison1/go-odm/pkg/domain"
	"github.com/adfharrison1/go-odm/pkg/odm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *odm.Registry {
	t.Helper()
	registry, err := odm.NewRegistry(&odm.ClassMetadata{
		Class:      "Note",
		Collection: "notes",
		Fields:     []string{"text"},
	})
	require.NoError(t, err)
	return registry
}

func TestServer_Routes(t *testing.T) {
	srv := NewServer(testRegistry(t))
	defer srv.StopBackgroundWorkers()

	require.NoError(t, srv.Storage().Insert("notes", domain.Document{"_id": "n1", "text": "hi"}))

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"health", "/health", http.StatusOK},
		{"raw", "/collections/notes/documents/n1", http.StatusOK},
		{"debug", "/collections/notes/documents/n1/debug", http.StatusOK},
		{"unknown route", "/nowhere", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestServer_SaveAndInitDB(t *testing.T) {
	dir, err := os.MkdirTemp("", "go-odm-server")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	dataFile := filepath.Join(dir, "data.godm")

	srv := NewServer(testRegistry(t))
	defer srv.StopBackgroundWorkers()
	require.NoError(t, srv.Storage().Insert("notes", domain.Document{"_id": "n1", "text": "hi"}))
	srv.SaveDB(dataFile)

	restored := NewServer(testRegistry(t))
	defer restored.StopBackgroundWorkers()
	restored.InitDB(dataFile)

	doc, err := restored.Storage().GetById("notes", "n1")
	require.NoError(t, err)
	assert.Equal(t, "hi", doc["text"])
}
