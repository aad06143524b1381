package buffer

// Apply runs edits in order as one change and one undo step. Each edit's
// range is read against the document as the earlier edits left it and is
// clamped into bounds. The cursor ends after the last effective edit and the
// selection is cleared. Apply reports whether the text changed.
func (b *Buffer) Apply(edits ...TextEdit) bool {
	return b.apply(nil, edits)
}

// ApplyAt is Apply with the cursor placed at cursor afterwards, as input
// rules do after rewriting a list marker. The cursor is part of the change
// and of the undo step.
func (b *Buffer) ApplyAt(cursor Pos, edits ...TextEdit) bool {
	return b.apply(&cursor, edits)
}

func (b *Buffer) apply(cursor *Pos, edits []TextEdit) bool {
	if len(edits) == 0 {
		return false
	}

	prev := b.snapshot()
	change := b.beginChange(ChangeSourceLocal)
	end, changed := b.cursor, false
	for _, e := range edits {
		next, applied, ok := b.replaceRange(e.Range, e.Text)
		if !ok {
			continue
		}
		end, changed = next, true
		change.addAppliedEdit(applied)
	}
	if !changed {
		return false
	}

	if cursor != nil {
		end = *cursor
	}
	b.cursor = b.clampPos(end)
	b.sel = selectionState{}
	b.version++
	b.textVersion++
	b.recordUndo(prev)
	b.commitChange(change)
	return true
}
