package domain

// Document is the raw stored representation of a document
type Document map[string]interface{}

// Collection holds the raw documents of one root class, keyed by id
type Collection struct {
	Name      string              `json:"name" msgpack:"name"`
	Documents map[string]Document `json:"documents" msgpack:"documents"`
}

// NewCollection creates a new collection
func NewCollection(name string) *Collection {
	return &Collection{
		Name:      name,
		Documents: make(map[string]Document),
	}
}

// Copy returns a deep copy of the document. Nested maps and slices are
// copied, scalars are shared.
func (d Document) Copy() Document {
	if d == nil {
		return nil
	}
	return CopyValue(map[string]interface{}(d)).(map[string]interface{})
}

// CopyValue deep-copies maps and slices found in raw data
func CopyValue(value interface{}) interface{} {
	switch v := value.(type) {
	case Document:
		return Document(CopyValue(map[string]interface{}(v)).(map[string]interface{}))
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, inner := range v {
			out[key] = CopyValue(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, inner := range v {
			out[i] = CopyValue(inner)
		}
		return out
	default:
		return v
	}
}
