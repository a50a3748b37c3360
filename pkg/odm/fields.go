package odm

import (
	"fmt"
	"math"
	"reflect"

	"github.com/adfharrison1/go-odm/pkg/domain"
)

// Get returns the current value of a field
func (d *Document) Get(name string) (interface{}, bool) {
	value, ok := d.fields[name]
	return value, ok
}

// Set writes a field, recording the overwritten value as the original on
// the first divergence from the baseline.
func (d *Document) Set(name string, value interface{}) error {
	if !d.meta.HasField(name) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, d.meta.Class, name)
	}
	d.recordIfChanged(name, value, d.fields[name])
	d.fields[name] = value
	return nil
}

// recordIfChanged stashes current as the original of name unless an
// original is already stashed. Later writes never update it, even when
// they restore the original value.
func (d *Document) recordIfChanged(name string, value, current interface{}) {
	if _, modified := d.fieldsModified[name]; modified {
		return
	}
	if sameValue(value, current) {
		return
	}
	d.fieldsModified[name] = current
}

// sameValue is deep equality where numbers compare by value across widths,
// so int(5) matches the int64(5) a decoded document carries
func sameValue(a, b interface{}) bool {
	return reflect.DeepEqual(normalizeNumbers(a), normalizeNumbers(b))
}

func normalizeNumbers(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, inner := range v {
			out[key] = normalizeNumbers(inner)
		}
		return out
	case domain.Document:
		return normalizeNumbers(map[string]interface{}(v))
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, inner := range v {
			out[i] = normalizeNumbers(inner)
		}
		return out
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if n := rv.Uint(); n <= math.MaxInt64 {
			return int64(n)
		}
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	default:
		return value
	}
}

// IsFieldModified reports whether name has an entry in the ledger
func (d *Document) IsFieldModified(name string) bool {
	_, ok := d.fieldsModified[name]
	return ok
}

// GetOriginalFieldValue returns the baseline value of name
func (d *Document) GetOriginalFieldValue(name string) interface{} {
	if original, ok := d.fieldsModified[name]; ok {
		return original
	}
	return d.fields[name]
}

// FieldsModified returns a copy of the ledger: field name to original value
func (d *Document) FieldsModified() map[string]interface{} {
	modified := make(map[string]interface{}, len(d.fieldsModified))
	for name, original := range d.fieldsModified {
		modified[name] = original
	}
	return modified
}

// ClearFieldsModified commits the current field values as the baseline
func (d *Document) ClearFieldsModified() {
	d.fieldsModified = make(map[string]interface{})
}
