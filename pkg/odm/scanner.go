package odm

import "fmt"

// IsModified reports whether anything in the document or below it changed
// since the last baseline.
func (d *Document) IsModified() bool {
	// The ledger is authoritative, so its size answers the field check.
	if len(d.fieldsModified) > 0 {
		return true
	}

	rootIsNew := d.rootIsNew()

	for _, rel := range d.meta.EmbeddedsOne {
		if child := d.embeddedsOne[rel.Name]; child != nil && child.IsModified() {
			return true
		}
		// A new root writes its whole subtree, so a swap is not a change of its own
		if !rootIsNew && d.IsEmbeddedOneChanged(rel.Name) {
			return true
		}
	}

	for _, rel := range d.meta.EmbeddedsMany {
		if group, ok := d.embeddedsMany[rel.Name]; ok && group.isModified(rootIsNew) {
			return true
		}
	}

	return false
}

// rootIsNew asks the aggregate the document belongs to, or the document
// itself when it is not attached.
func (d *Document) rootIsNew() bool {
	if root, _, err := d.RootAndPath(); err == nil {
		return root.IsNew()
	}
	return d.IsNew()
}

// ClearModified commits the current state of the document and its subtree
// as the new baseline. Every group in the subtree is materialized and
// checked for a root/path first, so a failure leaves the baseline untouched.
func (d *Document) ClearModified() error {
	if err := d.prepareCommit(); err != nil {
		return err
	}
	return d.clearModified()
}

// prepareCommit performs the fallible part of a commit without changing
// any tracked state
func (d *Document) prepareCommit() error {
	for _, rel := range d.meta.EmbeddedsOne {
		if child := d.embeddedsOne[rel.Name]; child != nil {
			if err := child.prepareCommit(); err != nil {
				return err
			}
		}
	}

	for _, rel := range d.meta.EmbeddedsMany {
		if group, ok := d.embeddedsMany[rel.Name]; ok {
			if err := group.prepareCommit(); err != nil {
				return fmt.Errorf("%s.%s: %w", d.meta.Class, rel.Name, err)
			}
		}
	}
	return nil
}

func (d *Document) clearModified() error {
	d.ClearFieldsModified()
	d.ClearEmbeddedsOneChanged()

	for _, rel := range d.meta.EmbeddedsOne {
		if child := d.embeddedsOne[rel.Name]; child != nil {
			if err := child.clearModified(); err != nil {
				return err
			}
		}
	}

	for _, rel := range d.meta.EmbeddedsMany {
		if group, ok := d.embeddedsMany[rel.Name]; ok {
			if err := group.markAllSaved(); err != nil {
				return err
			}
		}
	}

	return nil
}
