package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sshgo/sshgo/internal/model"
)

// Fixed chrome around the entry rows. The banner, search line, and a blank
// line sit above the columns; each column spends one row on its title; the
// scroll indicator, a blank line, and the key hints sit below.
const (
	fixedHeaderRows = 4
	fixedFooterRows = 3
	rowsPerEntry    = 4
	markerWidth     = 7 // "> 999. "
	addrPadding     = 5
)

var (
	bannerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activeTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// VisibleCapacity computes how many entries fit in one column for the given
// terminal height, never less than one.
func VisibleCapacity(height int) int {
	n := (height - fixedHeaderRows - fixedFooterRows) / rowsPerEntry
	if n < 1 {
		n = 1
	}
	return n
}

// Render paints the full menu for the given state and terminal size. The
// output is a pure function of its inputs: identical state and dimensions
// always produce identical output.
func Render(s *State, width, height, minColWidth int) string {
	var b strings.Builder

	b.WriteString(bannerStyle.Render("SSH CONNECTION MANAGER"))
	b.WriteByte('\n')
	if numeric, buf := s.NumericMode(); numeric {
		b.WriteString("Jump to: " + buf + "_")
	} else {
		b.WriteString("Filter: " + s.Filter() + "_")
	}
	b.WriteString("\n\n")

	if s.Empty() {
		b.WriteString(dimStyle.Render("no connections match " + fmt.Sprintf("%q", s.Filter())))
		b.WriteString("\n\n")
		b.WriteString(renderHints(s))
		return clipWidth(b.String(), width)
	}

	capacity := VisibleCapacity(height)
	cols := make([]string, 0, len(s.Groups()))
	base := 0
	for gi, g := range s.Groups() {
		cols = append(cols, renderColumn(s, gi, g, base, capacity, minColWidth))
		base += len(g.Records)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteByte('\n')
	b.WriteString(renderHints(s))
	return clipWidth(b.String(), width)
}

// renderColumn paints one group: title with count, visible entry rows, and a
// scroll indicator when the group overflows the window. Only the active
// group applies the cursor and scroll offset; inactive groups show from the
// top.
func renderColumn(s *State, groupIdx int, g Group, base, capacity, minColWidth int) string {
	active := groupIdx == s.ActiveGroup()
	scroll := 0
	if active {
		scroll = s.Scroll()
	}
	end := scroll + capacity
	if end > len(g.Records) {
		end = len(g.Records)
	}

	colWidth := columnWidth(g.Records, minColWidth)
	var lines []string

	title := fmt.Sprintf("%s (%d)", g.Kind.Upper(), len(g.Records))
	if active {
		lines = append(lines, activeTitle.Render(pad(title, colWidth)))
	} else {
		lines = append(lines, titleStyle.Render(pad(title, colWidth)))
	}

	for i := scroll; i < end; i++ {
		r := g.Records[i]
		marker := "  "
		if active && i == s.Cursor() {
			marker = "> "
		}
		name := clip(fmt.Sprintf("%s%d. %s", marker, base+i+1, r.Name), colWidth)
		addr := clip(strings.Repeat(" ", addrPadding)+r.Address(), colWidth)
		cred := "[no password]"
		if r.HasSecret() {
			cred = "[password]"
		}
		cred = clip(strings.Repeat(" ", addrPadding)+cred, colWidth)

		if active && i == s.Cursor() {
			lines = append(lines, selectedStyle.Render(pad(name, colWidth)))
		} else {
			lines = append(lines, pad(name, colWidth))
		}
		lines = append(lines, pad(addr, colWidth))
		lines = append(lines, dimStyle.Render(pad(cred, colWidth)))
		lines = append(lines, pad("", colWidth))
	}

	if len(g.Records) > capacity {
		ind := fmt.Sprintf("%d-%d of %d", scroll+1, end, len(g.Records))
		if scroll > 0 {
			ind = "↑ " + ind
		}
		if end < len(g.Records) {
			ind = ind + " ↓"
		}
		lines = append(lines, dimStyle.Render(pad(ind, colWidth)))
	} else {
		lines = append(lines, pad("", colWidth))
	}

	return strings.Join(lines, "\n")
}

func renderHints(s *State) string {
	if numeric, _ := s.NumericMode(); numeric {
		return dimStyle.Render("digits jump | Enter confirm | Backspace delete | Esc cancel")
	}
	return dimStyle.Render("type to filter | arrows navigate | digits jump | Enter connect | Esc/q quit")
}

// columnWidth sizes a column to its widest name or address, with padding,
// but never narrower than the configured minimum.
func columnWidth(records []model.ConnectionRecord, minColWidth int) int {
	w := minColWidth
	for _, r := range records {
		if n := len(r.Name) + markerWidth; n > w {
			w = n
		}
		if n := len(r.Address()) + addrPadding + 2; n > w {
			w = n
		}
	}
	return w
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

func clipWidth(view string, width int) string {
	return lipgloss.NewStyle().MaxWidth(width).Render(view)
}
