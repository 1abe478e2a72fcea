package navstate

import "sync"

// Section is a named vertical region of the page in document coordinates.
type Section struct {
	ID     string
	Top    float64
	Height float64
}

func (s Section) bottom() float64 {
	return s.Top + s.Height
}

// SectionTracker decides which registered section the user is looking at. A
// section counts as active while it overlaps the middle fifth of the
// viewport, which keeps the highlight stable near section boundaries. The
// last active section is retained when the band falls in a gap.
type SectionTracker struct {
	mu       sync.Mutex
	sections []Section
	active   string
}

// NewSectionTracker creates a tracker with no registered sections.
func NewSectionTracker() *SectionTracker {
	return &SectionTracker{}
}

// Register adds or updates a section's bounds. Sections keep their
// registration order, which is assumed to be document order.
func (t *SectionTracker) Register(id string, top, height float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.sections {
		if t.sections[i].ID == id {
			t.sections[i].Top = top
			t.sections[i].Height = height
			return
		}
	}
	t.sections = append(t.sections, Section{ID: id, Top: top, Height: height})
}

// Unregister removes a section, e.g. when its content is conditionally
// hidden. Removing the active section clears the highlight.
func (t *SectionTracker) Unregister(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.sections {
		if t.sections[i].ID == id {
			t.sections = append(t.sections[:i], t.sections[i+1:]...)
			break
		}
	}
	if t.active == id {
		t.active = ""
	}
}

// Observe updates the tracker for a new scroll position and returns the
// active section id. The decision band runs from 40% to 60% of viewport
// height; among overlapping sections the one latest in document order wins,
// so a section scrolling in from below takes over from the one above it.
func (t *SectionTracker) Observe(scrollTop, viewportHeight float64) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	bandTop := scrollTop + viewportHeight*0.4
	bandBottom := scrollTop + viewportHeight*0.6

	for i := len(t.sections) - 1; i >= 0; i-- {
		s := t.sections[i]
		if s.Top < bandBottom && s.bottom() > bandTop {
			t.active = s.ID
			break
		}
	}
	return t.active
}

// Active returns the most recently determined section id, or the empty
// string when nothing has been observed yet.
func (t *SectionTracker) Active() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}
