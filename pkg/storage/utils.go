package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adfharrison1/go-odm/pkg/domain"
)

// setPath assigns value at a dotted path, creating intermediate maps.
// Numeric segments index into arrays and must be in range.
func setPath(doc domain.Document, path string, value interface{}) error {
	container, last, err := resolveParent(doc, path, true)
	if err != nil {
		return err
	}
	return assign(container, last, value, path)
}

// unsetPath deletes a map key, or leaves a nil tombstone for an array element.
// Missing parents are ignored.
func unsetPath(doc domain.Document, path string) error {
	container, last, err := resolveParent(doc, path, false)
	if err != nil {
		return err
	}
	if container == nil {
		return nil
	}

	switch c := container.(type) {
	case map[string]interface{}:
		delete(c, last)
	case domain.Document:
		delete(c, last)
	case []interface{}:
		index, err := arrayIndex(c, last, path)
		if err != nil {
			return nil
		}
		c[index] = nil
	}
	return nil
}

// pushPath appends values to the array at path, creating it when missing
func pushPath(doc domain.Document, path string, values []interface{}) error {
	container, last, err := resolveParent(doc, path, true)
	if err != nil {
		return err
	}

	current, exists, err := lookup(container, last, path)
	if err != nil {
		return err
	}

	var array []interface{}
	if exists && current != nil {
		var ok bool
		array, ok = current.([]interface{})
		if !ok {
			return fmt.Errorf("cannot push to %s: value is %T, not an array", path, current)
		}
	}

	return assign(container, last, append(array, values...), path)
}

// resolveParent walks all but the last segment of path. With create unset,
// a missing intermediate returns a nil container.
func resolveParent(doc domain.Document, path string, create bool) (interface{}, string, error) {
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if segment == "" {
			return nil, "", fmt.Errorf("invalid path %q", path)
		}
	}

	var container interface{} = map[string]interface{}(doc)
	for _, segment := range segments[:len(segments)-1] {
		next, exists, err := lookup(container, segment, path)
		if err != nil {
			return nil, "", err
		}

		if !exists || next == nil {
			if !create {
				return nil, "", nil
			}
			next = make(map[string]interface{})
			if err := assign(container, segment, next, path); err != nil {
				return nil, "", err
			}
		}

		switch next.(type) {
		case map[string]interface{}, domain.Document, []interface{}:
			container = next
		default:
			return nil, "", fmt.Errorf("cannot traverse %s: segment %s is %T", path, segment, next)
		}
	}

	return container, segments[len(segments)-1], nil
}

func lookup(container interface{}, key, path string) (interface{}, bool, error) {
	switch c := container.(type) {
	case map[string]interface{}:
		value, ok := c[key]
		return value, ok, nil
	case domain.Document:
		value, ok := c[key]
		return value, ok, nil
	case []interface{}:
		index, err := arrayIndex(c, key, path)
		if err != nil {
			return nil, false, err
		}
		return c[index], true, nil
	default:
		return nil, false, fmt.Errorf("cannot traverse %s: unexpected container %T", path, container)
	}
}

func assign(container interface{}, key string, value interface{}, path string) error {
	switch c := container.(type) {
	case map[string]interface{}:
		c[key] = value
	case domain.Document:
		c[key] = value
	case []interface{}:
		index, err := arrayIndex(c, key, path)
		if err != nil {
			return err
		}
		c[index] = value
	default:
		return fmt.Errorf("cannot assign %s: unexpected container %T", path, container)
	}
	return nil
}

func arrayIndex(array []interface{}, key, path string) (int, error) {
	index, err := strconv.Atoi(key)
	if err != nil {
		return 0, fmt.Errorf("invalid array index %q in %s", key, path)
	}
	if index < 0 || index >= len(array) {
		return 0, fmt.Errorf("array index %d out of range in %s", index, path)
	}
	return index, nil
}
