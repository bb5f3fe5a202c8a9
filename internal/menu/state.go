// Package menu implements the interactive connection picker: a raw-keyboard
// driven, single-threaded UI that filters, groups, scrolls, and selects among
// stored connection records, with a numbered line-mode fallback for
// non-interactive terminals.
package menu

import (
	"sort"
	"strings"

	"github.com/sshgo/sshgo/internal/model"
	"github.com/sshgo/sshgo/internal/term"
)

// maxQuickPickDigits caps the numeric quick-pick buffer.
const maxQuickPickDigits = 3

type mode int

const (
	modeBrowsing mode = iota
	modeNumeric
)

// Group is one display column: all filtered records of a single kind.
type Group struct {
	Kind    model.Kind
	Records []model.ConnectionRecord
}

// State is the complete menu state. It is created fresh per session, mutated
// only through Handle, and discarded when the session ends.
type State struct {
	records []model.ConnectionRecord

	filter   string
	groups   []Group
	active   int
	cursor   int
	scroll   int
	capacity int

	mode    mode
	numeric string
}

// NewState builds the initial Browsing state over the loaded records. The
// record set is fixed for the lifetime of the session.
func NewState(records []model.ConnectionRecord) *State {
	s := &State{records: records, capacity: 1}
	s.groups = groupRecords(records, "")
	return s
}

// groupRecords partitions the records whose name, host, or username contains
// filter as a case-insensitive substring. The SSH group always sorts first;
// remaining kinds follow alphabetically. Empty groups are not included.
func groupRecords(records []model.ConnectionRecord, filter string) []Group {
	f := strings.ToLower(filter)
	byKind := map[model.Kind][]model.ConnectionRecord{}
	for _, r := range records {
		if f != "" && !matches(r, f) {
			continue
		}
		byKind[r.Kind] = append(byKind[r.Kind], r)
	}
	kinds := make([]model.Kind, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if kinds[i] == model.KindSSH {
			return true
		}
		if kinds[j] == model.KindSSH {
			return false
		}
		return kinds[i] < kinds[j]
	})
	groups := make([]Group, 0, len(kinds))
	for _, k := range kinds {
		groups = append(groups, Group{Kind: k, Records: byKind[k]})
	}
	return groups
}

func matches(r model.ConnectionRecord, lowerFilter string) bool {
	return strings.Contains(strings.ToLower(r.Name), lowerFilter) ||
		strings.Contains(strings.ToLower(r.Host), lowerFilter) ||
		strings.Contains(strings.ToLower(r.Username), lowerFilter)
}

// SetCapacity updates the number of visible entries per column, derived from
// the terminal height before each redraw, and re-clamps the scroll window.
func (s *State) SetCapacity(n int) {
	if n < 1 {
		n = 1
	}
	s.capacity = n
	s.clampScroll()
}

// Filter returns the accumulated search string.
func (s *State) Filter() string { return s.filter }

// Groups returns the current grouped view in display order.
func (s *State) Groups() []Group { return s.groups }

// ActiveGroup returns the index of the highlighted group.
func (s *State) ActiveGroup() int { return s.active }

// Cursor returns the highlighted row within the active group.
func (s *State) Cursor() int { return s.cursor }

// Scroll returns the first visible row of the active group.
func (s *State) Scroll() int { return s.scroll }

// NumericMode reports whether the quick-pick overlay is active, and the
// accumulated digit buffer.
func (s *State) NumericMode() (bool, string) {
	return s.mode == modeNumeric, s.numeric
}

// Empty reports whether the current filter matches no records at all.
func (s *State) Empty() bool { return len(s.groups) == 0 }

// Handle applies one key event. It returns done=true when the session ends;
// selected is nil on cancel or interrupt.
func (s *State) Handle(ev term.Event) (done bool, selected *model.ConnectionRecord) {
	if ev.Key == term.KeyInterrupt {
		return true, nil
	}
	if s.mode == modeNumeric {
		return s.handleNumeric(ev)
	}
	return s.handleBrowsing(ev)
}

func (s *State) handleBrowsing(ev term.Event) (bool, *model.ConnectionRecord) {
	switch ev.Key {
	case term.KeyUp:
		if s.Empty() {
			return false, nil
		}
		if s.cursor > 0 {
			s.cursor--
			if s.cursor < s.scroll {
				s.scroll = s.cursor
			}
		}
	case term.KeyDown:
		if s.Empty() {
			return false, nil
		}
		if s.cursor < len(s.activeRecords())-1 {
			s.cursor++
			if s.cursor >= s.scroll+s.capacity {
				s.scroll = s.cursor - s.capacity + 1
			}
		}
	case term.KeyLeft:
		if s.active > 0 {
			s.active--
			s.cursor, s.scroll = 0, 0
		}
	case term.KeyRight:
		if s.active < len(s.groups)-1 {
			s.active++
			s.cursor, s.scroll = 0, 0
		}
	case term.KeyEnter:
		if recs := s.activeRecords(); len(recs) > 0 {
			r := recs[s.cursor]
			return true, &r
		}
	case term.KeyEscape:
		return true, nil
	case term.KeyBackspace:
		if s.filter != "" {
			s.setFilter(s.filter[:len(s.filter)-1])
		}
	case term.KeyDigit:
		if !s.Empty() {
			s.mode = modeNumeric
			s.numeric = string(ev.Ch)
		}
	case term.KeyPrintable:
		// A bare q quits; once a filter is active it is just another
		// filter character.
		if (ev.Ch == 'q' || ev.Ch == 'Q') && s.filter == "" {
			return true, nil
		}
		s.setFilter(s.filter + string(ev.Ch))
	}
	return false, nil
}

func (s *State) handleNumeric(ev term.Event) (bool, *model.ConnectionRecord) {
	switch ev.Key {
	case term.KeyDigit:
		if len(s.numeric) < maxQuickPickDigits {
			s.numeric += string(ev.Ch)
		}
	case term.KeyEnter:
		n := parseIndex(s.numeric)
		flat := s.Flattened()
		s.leaveNumeric()
		if n >= 1 && n <= len(flat) {
			r := flat[n-1]
			return true, &r
		}
		// 0 and out-of-range cancel back to Browsing silently.
	case term.KeyBackspace:
		if len(s.numeric) <= 1 {
			s.leaveNumeric()
		} else {
			s.numeric = s.numeric[:len(s.numeric)-1]
		}
	case term.KeyEscape:
		s.leaveNumeric()
	}
	return false, nil
}

// leaveNumeric returns to Browsing with filter, group, cursor, and scroll
// untouched.
func (s *State) leaveNumeric() {
	s.mode = modeBrowsing
	s.numeric = ""
}

// Flattened enumerates the grouped view in display order: the SSH group
// first, then remaining groups, preserving each group's internal order.
// Quick-pick indices are 1-based positions into this slice.
func (s *State) Flattened() []model.ConnectionRecord {
	var out []model.ConnectionRecord
	for _, g := range s.groups {
		out = append(out, g.Records...)
	}
	return out
}

// setFilter recomputes the grouped view, resets cursor and scroll, and
// re-resolves the active group: it is kept when the set of groups is
// unchanged, otherwise reset to the first group.
func (s *State) setFilter(f string) {
	prev := s.groupKinds()
	s.filter = f
	s.groups = groupRecords(s.records, f)
	s.cursor, s.scroll = 0, 0
	if !equalKinds(prev, s.groupKinds()) || s.active >= len(s.groups) {
		s.active = 0
	}
}

func (s *State) groupKinds() []model.Kind {
	kinds := make([]model.Kind, len(s.groups))
	for i, g := range s.groups {
		kinds[i] = g.Kind
	}
	return kinds
}

func equalKinds(a, b []model.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s *State) activeRecords() []model.ConnectionRecord {
	if s.active < 0 || s.active >= len(s.groups) {
		return nil
	}
	return s.groups[s.active].Records
}

// clampScroll restores the scroll invariants after a capacity change:
// 0 <= scroll <= max(0, len-capacity) and the cursor stays in the window.
func (s *State) clampScroll() {
	n := len(s.activeRecords())
	maxScroll := n - s.capacity
	if maxScroll < 0 {
		maxScroll = 0
	}
	if s.scroll > maxScroll {
		s.scroll = maxScroll
	}
	if s.scroll < 0 {
		s.scroll = 0
	}
	if s.cursor >= s.scroll+s.capacity {
		s.scroll = s.cursor - s.capacity + 1
	}
	if s.cursor < s.scroll {
		s.scroll = s.cursor
	}
}

func parseIndex(buf string) int {
	n := 0
	for _, c := range buf {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	if buf == "" {
		return -1
	}
	return n
}
