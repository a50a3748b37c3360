package domain

// Update is the minimal diff written for an already persisted document.
// Keys are dotted paths from the document root; numeric segments address
// array positions.
type Update struct {
	Set   map[string]interface{}   `json:"set,omitempty" msgpack:"set,omitempty"`
	Unset []string                 `json:"unset,omitempty" msgpack:"unset,omitempty"`
	Push  map[string][]interface{} `json:"push,omitempty" msgpack:"push,omitempty"`
}

// NewUpdate creates an empty update
func NewUpdate() *Update {
	return &Update{
		Set:  make(map[string]interface{}),
		Push: make(map[string][]interface{}),
	}
}

// IsEmpty reports whether the update changes nothing
func (u *Update) IsEmpty() bool {
	return len(u.Set) == 0 && len(u.Unset) == 0 && len(u.Push) == 0
}
