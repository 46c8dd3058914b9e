package urlstate

import (
	"net/url"
	"sync"

	"go.skia.org/flamechart/flamechart/go/trace"
	"go.skia.org/flamechart/go/skerr"
)

// History is a browser-like session history of URLs. It is safe for
// concurrent use.
type History struct {
	mutex   sync.Mutex
	entries []*url.URL
	index   int
}

// NewHistory returns a History whose only entry is initial.
func NewHistory(initial *url.URL) *History {
	if initial == nil {
		initial = &url.URL{Path: "/"}
	}
	return &History{entries: []*url.URL{initial}}
}

// Push adds u after the current entry and makes it current. Entries that
// were forward of the current one are dropped.
func (h *History) Push(u *url.URL) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.entries = append(h.entries[:h.index+1], u)
	h.index++
}

// Back moves to the previous entry. Returns false if already at the first.
func (h *History) Back() (*url.URL, bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.index == 0 {
		return h.entries[0], false
	}
	h.index--
	return h.entries[h.index], true
}

// Forward moves to the next entry. Returns false if already at the last.
func (h *History) Forward() (*url.URL, bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.index == len(h.entries)-1 {
		return h.entries[h.index], false
	}
	h.index++
	return h.entries[h.index], true
}

// Current returns the current entry.
func (h *History) Current() *url.URL {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.entries[h.index]
}

// Len is the number of entries.
func (h *History) Len() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.entries)
}

// Synchronizer keeps a History and the displayed tree in step. Each call goes
// in one direction only: Persist writes the tree into a new entry, while
// Restore, Back and Forward read the tree out of an entry.
type Synchronizer struct {
	history *History
}

// NewSynchronizer returns a Synchronizer over h.
func NewSynchronizer(h *History) *Synchronizer {
	return &Synchronizer{history: h}
}

// History returns the underlying history.
func (s *Synchronizer) History() *History {
	return s.history
}

// Persist pushes a new history entry holding tree. A nil tree pushes an entry
// without the data parameter.
func (s *Synchronizer) Persist(tree *trace.VisualNode) error {
	u, err := Persist(s.history.Current(), tree)
	if err != nil {
		return skerr.Wrap(err)
	}
	s.history.Push(u)
	return nil
}

// Restore decodes the tree in the current entry.
func (s *Synchronizer) Restore() (*trace.VisualNode, error) {
	return Restore(s.history.Current())
}

// Back moves back one entry and restores from it. moved is false if there was
// no previous entry, in which case the tree is not restored.
func (s *Synchronizer) Back() (tree *trace.VisualNode, moved bool, err error) {
	u, moved := s.history.Back()
	if !moved {
		return nil, false, nil
	}
	tree, err = Restore(u)
	return tree, true, err
}

// Forward moves forward one entry and restores from it.
func (s *Synchronizer) Forward() (tree *trace.VisualNode, moved bool, err error) {
	u, moved := s.history.Forward()
	if !moved {
		return nil, false, nil
	}
	tree, err = Restore(u)
	return tree, true, err
}
