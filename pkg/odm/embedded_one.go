package odm

// IsEmbeddedOneChanged reports whether the relation name was replaced
// since the last baseline.
func (d *Document) IsEmbeddedOneChanged(name string) bool {
	if _, ok := d.embeddedsOne[name]; !ok {
		return false
	}
	return d.ctx.table.Has(d.handle, embeddedOnePrefix+name)
}

// GetOriginalEmbeddedOneValue returns the baseline document of name
func (d *Document) GetOriginalEmbeddedOneValue(name string) *Document {
	if d.IsEmbeddedOneChanged(name) {
		original, _ := d.ctx.table.GetOrDefault(d.handle, embeddedOnePrefix+name, nil).(*Document)
		return original
	}
	return d.embeddedsOne[name]
}

// EmbeddedsOneChanged maps every replaced relation to its original document
func (d *Document) EmbeddedsOneChanged() map[string]*Document {
	changed := make(map[string]*Document)
	for _, rel := range d.meta.EmbeddedsOne {
		if d.IsEmbeddedOneChanged(rel.Name) {
			changed[rel.Name] = d.GetOriginalEmbeddedOneValue(rel.Name)
		}
	}
	return changed
}

// ClearEmbeddedsOneChanged commits the current references as the baseline.
// Children keep their own change state.
func (d *Document) ClearEmbeddedsOneChanged() {
	d.ctx.table.RemovePrefix(d.handle, embeddedOnePrefix)
}
