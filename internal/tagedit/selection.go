package tagedit

// Selection returns a copy of the selected indices.
func (s *Session) Selection() Selection {
	return append(Selection(nil), s.selection...)
}

// Select replaces the selection. Indices that do not name an entry are
// dropped. The cursor moves to the first selected entry.
func (s *Session) Select(sel Selection) {
	s.selection = s.resolve(sel)
	if len(s.selection) > 0 {
		s.cursor = s.selection[0]
	}
}

// SelectAll selects every entry.
func (s *Session) SelectAll() {
	s.selection = make(Selection, len(s.entries))
	for i := range s.entries {
		s.selection[i] = i
	}
}

// Next moves the cursor to the next entry, wrapping around, and selects it.
func (s *Session) Next() int {
	return s.move(1)
}

// Previous moves the cursor to the previous entry, wrapping around, and
// selects it.
func (s *Session) Previous() int {
	return s.move(-1)
}

func (s *Session) move(delta int) int {
	n := len(s.entries)
	if n == 0 {
		return -1
	}
	s.cursor = ((s.cursor+delta)%n + n) % n
	s.selection = Selection{s.cursor}
	return s.cursor
}
