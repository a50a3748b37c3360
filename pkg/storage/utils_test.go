package storage

import (
	"testing"

	"github.com/adfharrison1/go-odm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() domain.Document {
	return domain.Document{
		"title": "t",
		"source": map[string]interface{}{
			"name": "wire",
		},
		"comments": []interface{}{
			map[string]interface{}{
				"name":  "c0",
				"infos": []interface{}{map[string]interface{}{"note": "n0"}},
			},
			map[string]interface{}{"name": "c1"},
		},
	}
}

func TestSetPath(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		value interface{}
		check func(t *testing.T, doc domain.Document)
	}{
		{
			name:  "top level",
			path:  "title",
			value: "new",
			check: func(t *testing.T, doc domain.Document) {
				assert.Equal(t, "new", doc["title"])
			},
		},
		{
			name:  "nested map",
			path:  "source.url",
			value: "u",
			check: func(t *testing.T, doc domain.Document) {
				assert.Equal(t, "u", doc["source"].(map[string]interface{})["url"])
			},
		},
		{
			name:  "creates intermediate maps",
			path:  "meta.stats.views",
			value: 3,
			check: func(t *testing.T, doc domain.Document) {
				meta := doc["meta"].(map[string]interface{})
				assert.Equal(t, 3, meta["stats"].(map[string]interface{})["views"])
			},
		},
		{
			name:  "array element field",
			path:  "comments.0.infos.0.note",
			value: "edited",
			check: func(t *testing.T, doc domain.Document) {
				comment := doc["comments"].([]interface{})[0].(map[string]interface{})
				info := comment["infos"].([]interface{})[0].(map[string]interface{})
				assert.Equal(t, "edited", info["note"])
			},
		},
		{
			name:  "whole array element",
			path:  "comments.1",
			value: map[string]interface{}{"name": "replaced"},
			check: func(t *testing.T, doc domain.Document) {
				assert.Equal(t, map[string]interface{}{"name": "replaced"}, doc["comments"].([]interface{})[1])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDocument()
			require.NoError(t, setPath(doc, tt.path, tt.value))
			tt.check(t, doc)
		})
	}
}

func TestSetPathErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"index out of range", "comments.5.name"},
		{"non numeric index", "comments.first.name"},
		{"through scalar", "title.sub"},
		{"empty segment", "source..name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, setPath(sampleDocument(), tt.path, "x"))
		})
	}
}

func TestUnsetPath(t *testing.T) {
	doc := sampleDocument()

	require.NoError(t, unsetPath(doc, "title"))
	assert.NotContains(t, doc, "title")

	require.NoError(t, unsetPath(doc, "source.name"))
	assert.Empty(t, doc["source"])

	// Array elements leave a tombstone so positions stay stable
	require.NoError(t, unsetPath(doc, "comments.0"))
	comments := doc["comments"].([]interface{})
	assert.Len(t, comments, 2)
	assert.Nil(t, comments[0])

	// Missing parents are ignored
	require.NoError(t, unsetPath(doc, "nothing.here"))
}

func TestPushPath(t *testing.T) {
	doc := sampleDocument()

	require.NoError(t, pushPath(doc, "comments", []interface{}{map[string]interface{}{"name": "c2"}}))
	assert.Len(t, doc["comments"], 3)

	require.NoError(t, pushPath(doc, "comments.1.infos", []interface{}{map[string]interface{}{"note": "n"}}))
	comment := doc["comments"].([]interface{})[1].(map[string]interface{})
	assert.Equal(t, []interface{}{map[string]interface{}{"note": "n"}}, comment["infos"])

	assert.Error(t, pushPath(doc, "title", []interface{}{"x"}))
}
