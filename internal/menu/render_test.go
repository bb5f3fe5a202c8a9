package menu

import (
	"strings"
	"testing"

	"github.com/sshgo/sshgo/internal/model"
	"github.com/sshgo/sshgo/internal/term"
)

func TestVisibleCapacity(t *testing.T) {
	if got := VisibleCapacity(24); got != 4 {
		t.Fatalf("24 rows: got %d", got)
	}
	if got := VisibleCapacity(5); got != 1 {
		t.Fatalf("tiny terminal must keep capacity 1, got %d", got)
	}
	if got := VisibleCapacity(0); got != 1 {
		t.Fatalf("zero height: got %d", got)
	}
}

func TestRenderShowsGroupsAndMarker(t *testing.T) {
	s := NewState(testRecords())
	s.SetCapacity(VisibleCapacity(24))
	out := Render(s, 120, 24, 24)

	for _, want := range []string{"SSH (2)", "RDP (1)", "web1", "rdp1", "root@10.0.0.1:22", "admin@10.0.0.3:3389"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
	if !strings.Contains(out, "> 1. web1") {
		t.Errorf("cursor marker missing on first entry:\n%s", out)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	s := NewState(testRecords())
	s.SetCapacity(VisibleCapacity(24))
	a := Render(s, 100, 24, 24)
	b := Render(s, 100, 24, 24)
	if a != b {
		t.Fatal("identical state and size rendered differently")
	}
}

func TestRenderGlobalIndicesCrossGroups(t *testing.T) {
	s := NewState(testRecords())
	s.SetCapacity(4)
	out := Render(s, 120, 40, 24)
	// rdp1 is the third record in the flattened enumeration.
	if !strings.Contains(out, "3. rdp1") {
		t.Fatalf("expected global index 3 for rdp1:\n%s", out)
	}
}

func TestRenderScrollIndicator(t *testing.T) {
	var records []model.ConnectionRecord
	for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
		records = append(records, rec(n, model.KindSSH, "10.0.0.1", "root"))
	}
	s := NewState(records)
	s.SetCapacity(VisibleCapacity(15)) // capacity 2
	out := Render(s, 80, 15, 24)
	if !strings.Contains(out, "1-2 of 6") {
		t.Fatalf("scroll indicator missing:\n%s", out)
	}
	if strings.Contains(out, "↑ 1-2") {
		t.Fatal("no up hint expected at top")
	}

	for i := 0; i < 5; i++ {
		s.Handle(key(term.KeyDown))
	}
	out = Render(s, 80, 15, 24)
	if !strings.Contains(out, "5-6 of 6") {
		t.Fatalf("scroll indicator after paging missing:\n%s", out)
	}
	if !strings.Contains(out, "↑") {
		t.Fatal("up hint expected after scrolling down")
	}
}

func TestRenderEmptyFilterNotice(t *testing.T) {
	s := NewState(testRecords())
	typeWord(s, "xyz")
	out := Render(s, 80, 24, 24)
	if !strings.Contains(out, `no connections match "xyz"`) {
		t.Fatalf("empty notice missing:\n%s", out)
	}
}

func TestRenderNumericOverlay(t *testing.T) {
	s := NewState(testRecords())
	press(s, digit('1'), digit('2'))
	out := Render(s, 80, 24, 24)
	if !strings.Contains(out, "Jump to: 12_") {
		t.Fatalf("numeric buffer not shown:\n%s", out)
	}
}

func TestColumnWidthFloorsAtMinimum(t *testing.T) {
	records := []model.ConnectionRecord{rec("a", model.KindSSH, "h", "u")}
	if w := columnWidth(records, 30); w != 30 {
		t.Fatalf("expected minimum width 30, got %d", w)
	}
	long := []model.ConnectionRecord{rec("a-very-long-connection-name", model.KindSSH, "h", "u")}
	if w := columnWidth(long, 10); w != len("a-very-long-connection-name")+markerWidth {
		t.Fatalf("width should follow longest name, got %d", w)
	}
}

func TestClip(t *testing.T) {
	if got := clip("abcdef", 4); got != "abc…" {
		t.Fatalf("clip: got %q", got)
	}
	if got := clip("abc", 4); got != "abc" {
		t.Fatalf("clip short: got %q", got)
	}
}
