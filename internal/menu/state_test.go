package menu

import (
	"testing"

	"github.com/sshgo/sshgo/internal/model"
	"github.com/sshgo/sshgo/internal/term"
)

func rec(name string, kind model.Kind, host, user string) model.ConnectionRecord {
	port := kind.DefaultPort()
	return model.ConnectionRecord{Name: name, Kind: kind, Host: host, Port: port, Username: user}
}

func testRecords() []model.ConnectionRecord {
	return []model.ConnectionRecord{
		rec("web1", model.KindSSH, "10.0.0.1", "root"),
		rec("web2", model.KindSSH, "10.0.0.2", "deploy"),
		rec("rdp1", model.KindRDP, "10.0.0.3", "admin"),
	}
}

func press(s *State, keys ...term.Event) (bool, *model.ConnectionRecord) {
	var done bool
	var sel *model.ConnectionRecord
	for _, k := range keys {
		done, sel = s.Handle(k)
	}
	return done, sel
}

func key(k term.Key) term.Event { return term.Event{Key: k} }
func ch(c byte) term.Event      { return term.Event{Key: term.KeyPrintable, Ch: c} }
func digit(c byte) term.Event   { return term.Event{Key: term.KeyDigit, Ch: c} }

func typeWord(s *State, word string) {
	for i := 0; i < len(word); i++ {
		s.Handle(ch(word[i]))
	}
}

func TestGroupingSSHFirst(t *testing.T) {
	s := NewState(testRecords())
	groups := s.Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Kind != model.KindSSH || groups[1].Kind != model.KindRDP {
		t.Fatalf("wrong group order: %v %v", groups[0].Kind, groups[1].Kind)
	}
	if len(groups[0].Records) != 2 || len(groups[1].Records) != 1 {
		t.Fatalf("wrong partition: %+v", groups)
	}
}

func TestFilterMatchesNameHostUsername(t *testing.T) {
	s := NewState(testRecords())

	typeWord(s, "WEB")
	if flat := s.Flattened(); len(flat) != 2 {
		t.Fatalf("name filter: expected 2, got %d", len(flat))
	}

	s = NewState(testRecords())
	typeWord(s, "0.3")
	if flat := s.Flattened(); len(flat) != 1 || flat[0].Name != "rdp1" {
		t.Fatalf("host filter: got %+v", s.Flattened())
	}

	s = NewState(testRecords())
	typeWord(s, "deploy")
	if flat := s.Flattened(); len(flat) != 1 || flat[0].Name != "web2" {
		t.Fatalf("username filter: got %+v", s.Flattened())
	}
}

func TestBackspaceRestoresGroupedView(t *testing.T) {
	s := NewState(testRecords())
	typeWord(s, "web")
	before := s.Flattened()

	s.Handle(ch('x'))
	if !s.Empty() {
		t.Fatal("expected webx to match nothing")
	}
	s.Handle(key(term.KeyBackspace))

	after := s.Flattened()
	if len(after) != len(before) {
		t.Fatalf("grouped view not restored: %d vs %d", len(after), len(before))
	}
	for i := range after {
		if after[i] != before[i] {
			t.Fatalf("record %d differs after undo: %+v vs %+v", i, after[i], before[i])
		}
	}
	if s.Cursor() != 0 || s.Scroll() != 0 {
		t.Fatalf("cursor/scroll not reset: %d/%d", s.Cursor(), s.Scroll())
	}
	if s.ActiveGroup() != 0 {
		t.Fatalf("active group not restored: %d", s.ActiveGroup())
	}
}

func TestRightSwitchesGroupAndEnterSelects(t *testing.T) {
	records := []model.ConnectionRecord{
		rec("web1", model.KindSSH, "10.0.0.1", "root"),
		rec("rdp1", model.KindRDP, "10.0.0.2", "admin"),
	}
	s := NewState(records)
	if s.ActiveGroup() != 0 || s.Cursor() != 0 {
		t.Fatalf("unexpected initial state: group=%d cursor=%d", s.ActiveGroup(), s.Cursor())
	}

	s.Handle(key(term.KeyRight))
	if s.ActiveGroup() != 1 || s.Cursor() != 0 {
		t.Fatalf("after Right: group=%d cursor=%d", s.ActiveGroup(), s.Cursor())
	}

	done, sel := s.Handle(key(term.KeyEnter))
	if !done || sel == nil || sel.Name != "rdp1" {
		t.Fatalf("expected rdp1 selected, got done=%v sel=%+v", done, sel)
	}
}

func TestLeftRightAtEdgesAreNoOps(t *testing.T) {
	s := NewState(testRecords())
	s.Handle(key(term.KeyLeft))
	if s.ActiveGroup() != 0 {
		t.Fatal("Left at first group moved")
	}
	s.Handle(key(term.KeyRight))
	s.Handle(key(term.KeyRight))
	if s.ActiveGroup() != 1 {
		t.Fatalf("Right past last group: %d", s.ActiveGroup())
	}
}

func TestCursorAndScrollWindow(t *testing.T) {
	var records []model.ConnectionRecord
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		records = append(records, rec(n, model.KindSSH, "10.0.0.1", "root"))
	}
	s := NewState(records)
	s.SetCapacity(2)

	s.Handle(key(term.KeyUp))
	if s.Cursor() != 0 {
		t.Fatal("Up at top moved cursor")
	}

	for i := 0; i < 3; i++ {
		s.Handle(key(term.KeyDown))
	}
	if s.Cursor() != 3 || s.Scroll() != 2 {
		t.Fatalf("after 3x Down: cursor=%d scroll=%d", s.Cursor(), s.Scroll())
	}
	if s.Cursor() < s.Scroll() || s.Cursor() >= s.Scroll()+2 {
		t.Fatal("cursor left the visible window")
	}

	for i := 0; i < 10; i++ {
		s.Handle(key(term.KeyDown))
	}
	if s.Cursor() != 4 {
		t.Fatalf("Down past end: cursor=%d", s.Cursor())
	}

	for i := 0; i < 4; i++ {
		s.Handle(key(term.KeyUp))
	}
	if s.Cursor() != 0 || s.Scroll() != 0 {
		t.Fatalf("after scrolling back up: cursor=%d scroll=%d", s.Cursor(), s.Scroll())
	}
}

func TestCapacityChangeKeepsCursorVisible(t *testing.T) {
	var records []model.ConnectionRecord
	for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
		records = append(records, rec(n, model.KindSSH, "10.0.0.1", "root"))
	}
	s := NewState(records)
	s.SetCapacity(4)
	for i := 0; i < 5; i++ {
		s.Handle(key(term.KeyDown))
	}
	s.SetCapacity(2)
	if s.Cursor() < s.Scroll() || s.Cursor() >= s.Scroll()+2 {
		t.Fatalf("cursor %d outside window [%d,%d)", s.Cursor(), s.Scroll(), s.Scroll()+2)
	}
}

func TestQuitKeyOnlyWithEmptyFilter(t *testing.T) {
	s := NewState(testRecords())
	typeWord(s, "rd")
	done, _ := s.Handle(ch('q'))
	if done {
		t.Fatal("q with active filter must be a filter character")
	}
	if s.Filter() != "rdq" {
		t.Fatalf("filter: %q", s.Filter())
	}

	s = NewState(testRecords())
	done, sel := s.Handle(ch('q'))
	if !done || sel != nil {
		t.Fatalf("bare q should cancel: done=%v sel=%v", done, sel)
	}
	s = NewState(testRecords())
	done, _ = s.Handle(ch('Q'))
	if !done {
		t.Fatal("bare Q should cancel")
	}
}

func TestEmptyViewNavigationNoOps(t *testing.T) {
	s := NewState(testRecords())
	typeWord(s, "xyz")
	if !s.Empty() {
		t.Fatal("expected empty grouped view")
	}
	for _, k := range []term.Key{term.KeyUp, term.KeyDown, term.KeyLeft, term.KeyRight, term.KeyEnter} {
		done, sel := s.Handle(key(k))
		if done || sel != nil {
			t.Fatalf("key %v acted on empty view", k)
		}
	}
	done, sel := s.Handle(key(term.KeyEscape))
	if !done || sel != nil {
		t.Fatal("Escape on empty view should cancel")
	}
}

func TestInterruptCancelsAnywhere(t *testing.T) {
	s := NewState(testRecords())
	done, sel := s.Handle(key(term.KeyInterrupt))
	if !done || sel != nil {
		t.Fatal("interrupt in Browsing should cancel")
	}

	s = NewState(testRecords())
	s.Handle(digit('1'))
	done, sel = s.Handle(key(term.KeyInterrupt))
	if !done || sel != nil {
		t.Fatal("interrupt in NumericEntry should cancel")
	}
}

func TestQuickPickSelectsGlobalIndex(t *testing.T) {
	records := []model.ConnectionRecord{
		rec("A", model.KindSSH, "10.0.0.1", "root"),
		rec("B", model.KindSSH, "10.0.0.2", "root"),
		rec("C", model.KindRDP, "10.0.0.3", "admin"),
	}
	s := NewState(records)
	done, sel := press(s, digit('2'), key(term.KeyEnter))
	if !done || sel == nil || sel.Name != "B" {
		t.Fatalf("quick-pick 2: done=%v sel=%+v", done, sel)
	}

	s = NewState(records)
	done, sel = press(s, digit('3'), key(term.KeyEnter))
	if !done || sel == nil || sel.Name != "C" {
		t.Fatalf("quick-pick 3 should cross into RDP group: %+v", sel)
	}
}

func TestQuickPickZeroAndOutOfRangeCancel(t *testing.T) {
	s := NewState(testRecords())
	done, sel := press(s, digit('0'), key(term.KeyEnter))
	if done || sel != nil {
		t.Fatal("0 should cancel back to Browsing")
	}
	if numeric, _ := s.NumericMode(); numeric {
		t.Fatal("still in numeric mode after cancel")
	}
	if s.Cursor() != 0 || s.Scroll() != 0 || s.ActiveGroup() != 0 || s.Filter() != "" {
		t.Fatal("Browsing state changed by cancelled quick-pick")
	}

	done, sel = press(s, digit('9'), digit('9'), key(term.KeyEnter))
	if done || sel != nil {
		t.Fatal("out-of-range index should cancel")
	}
}

func TestQuickPickBufferRules(t *testing.T) {
	s := NewState(testRecords())
	press(s, digit('1'), digit('2'), digit('3'), digit('4'))
	if _, buf := s.NumericMode(); buf != "123" {
		t.Fatalf("buffer should cap at 3 digits, got %q", buf)
	}

	s.Handle(key(term.KeyBackspace))
	if _, buf := s.NumericMode(); buf != "12" {
		t.Fatalf("backspace should drop one digit, got %q", buf)
	}

	s.Handle(key(term.KeyEscape))
	if numeric, _ := s.NumericMode(); numeric {
		t.Fatal("escape should leave numeric mode")
	}

	s.Handle(digit('5'))
	s.Handle(key(term.KeyBackspace))
	if numeric, _ := s.NumericMode(); numeric {
		t.Fatal("backspace on single digit should cancel to Browsing")
	}
}

func TestQuickPickPreservesBrowsingState(t *testing.T) {
	var records []model.ConnectionRecord
	for _, n := range []string{"a1", "a2", "a3", "a4"} {
		records = append(records, rec(n, model.KindSSH, "10.0.0.1", "root"))
	}
	records = append(records, rec("r1", model.KindRDP, "10.0.0.9", "admin"))

	s := NewState(records)
	s.SetCapacity(2)
	press(s, key(term.KeyDown), key(term.KeyDown), key(term.KeyDown))
	cursor, scroll := s.Cursor(), s.Scroll()

	press(s, digit('7'), key(term.KeyEscape))
	if s.Cursor() != cursor || s.Scroll() != scroll || s.ActiveGroup() != 0 {
		t.Fatalf("quick-pick cancel disturbed state: cursor=%d scroll=%d group=%d",
			s.Cursor(), s.Scroll(), s.ActiveGroup())
	}
}

func TestDigitIgnoredOnEmptyView(t *testing.T) {
	s := NewState(testRecords())
	typeWord(s, "xyz")
	s.Handle(digit('1'))
	if numeric, _ := s.NumericMode(); numeric {
		t.Fatal("digit on empty view entered numeric mode")
	}
}
