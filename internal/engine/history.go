package engine

const defaultHistoryDepth = 50

// snapshots is a LIFO of session states trimmed from the bottom.
type snapshots []Snapshot

func (st *snapshots) push(s Snapshot, limit int) {
	*st = append(*st, s)
	if over := len(*st) - limit; over > 0 {
		*st = append((*st)[:0], (*st)[over:]...)
	}
}

func (st *snapshots) pop() (Snapshot, bool) {
	n := len(*st)
	if n == 0 {
		return Snapshot{}, false
	}
	s := (*st)[n-1]
	*st = (*st)[:n-1]
	return s, true
}

func (st snapshots) top() (Snapshot, bool) {
	if len(st) == 0 {
		return Snapshot{}, false
	}
	return st[len(st)-1], true
}

// History records session states for undo and redo. Each entry is the
// state before an edit, labelled with that edit.
type History struct {
	past   snapshots
	future snapshots
	depth  int
}

// NewHistory returns a History keeping the last depth edits.
// A non-positive depth keeps 50.
func NewHistory(depth int) *History {
	if depth <= 0 {
		depth = defaultHistoryDepth
	}
	return &History{depth: depth}
}

// Push records the state before an edit. Any undone edits are discarded.
func (h *History) Push(s Snapshot) {
	h.past.push(s, h.depth)
	h.future = nil
}

// Undo returns the state before the last edit and keeps current for Redo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	prev, ok := h.past.pop()
	if !ok {
		return Snapshot{}, false
	}
	current.Label = prev.Label
	h.future.push(current, h.depth)
	return prev, true
}

// Redo returns the state after the last undone edit and keeps current for
// Undo.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	next, ok := h.future.pop()
	if !ok {
		return Snapshot{}, false
	}
	current.Label = next.Label
	h.past.push(current, h.depth)
	return next, true
}

func (h *History) CanUndo() bool { return len(h.past) > 0 }

func (h *History) CanRedo() bool { return len(h.future) > 0 }

// UndoLabel names the edit Undo would revert, empty when there is none.
func (h *History) UndoLabel() string {
	s, _ := h.past.top()
	return s.Label
}

// RedoLabel names the edit Redo would reapply.
func (h *History) RedoLabel() string {
	s, _ := h.future.top()
	return s.Label
}

// Clear drops all recorded edits.
func (h *History) Clear() {
	h.past = nil
	h.future = nil
}
