// Package ui provides the interactive record editor used by `sshgo add` and
// `sshgo edit`, built on Bubble Tea text inputs.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sshgo/sshgo/internal/model"
	"github.com/sshgo/sshgo/internal/store"
)

// Field indices for the record form. fieldKind is a toggle row, not a text
// input.
const (
	fieldKind = iota
	fieldName
	fieldHost
	fieldPort
	fieldUsername
	fieldSecret
	fieldExtra
	fieldCount
)

var (
	formTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	formErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	formHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type recordForm struct {
	title    string
	kind     model.Kind
	fields   []textinput.Model
	focusIdx int
	errMsg   string

	submitted bool
	result    model.ConnectionRecord
}

// newRecordForm builds a form prefilled from initial (zero value for add).
func newRecordForm(initial model.ConnectionRecord, title string) *recordForm {
	f := &recordForm{title: title, kind: initial.Kind}
	if f.kind == "" {
		f.kind = model.KindSSH
	}

	placeholders := []string{
		"", // kind toggle row
		"prod-web (required)",
		"192.168.1.10 or example.com (required)",
		"22 for ssh, 3389 for rdp (default)",
		"root (required)",
		"stored in plain text; empty for key auth",
		"-A or /size:1920x1080 (optional)",
	}
	values := []string{
		"",
		initial.Name,
		initial.Host,
		"",
		initial.Username,
		initial.Secret,
		initial.ExtraParams,
	}
	if initial.Port != 0 {
		values[fieldPort] = strconv.Itoa(initial.Port)
	}
	limits := []int{0, 64, 256, 6, 64, 256, 256}

	f.fields = make([]textinput.Model, fieldCount)
	for i := fieldName; i < fieldCount; i++ {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Width = 40
		ti.SetValue(values[i])
		f.fields[i] = ti
	}
	f.fields[fieldSecret].EchoMode = textinput.EchoPassword

	f.focusIdx = fieldKind
	return f
}

func (f *recordForm) Init() tea.Cmd { return nil }

func (f *recordForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "esc":
		f.submitted = false
		return f, tea.Quit
	case "enter":
		rec, err := f.buildRecord()
		if err != nil {
			f.errMsg = err.Error()
			return f, nil
		}
		f.result = rec
		f.submitted = true
		return f, tea.Quit
	case "tab", "down":
		return f, f.focus((f.focusIdx + 1) % fieldCount)
	case "shift+tab", "up":
		return f, f.focus((f.focusIdx - 1 + fieldCount) % fieldCount)
	}

	if f.focusIdx == fieldKind {
		switch keyMsg.String() {
		case "left", "right", " ":
			f.toggleKind()
		}
		return f, nil
	}

	var cmd tea.Cmd
	f.fields[f.focusIdx], cmd = f.fields[f.focusIdx].Update(msg)
	f.errMsg = ""
	return f, cmd
}

func (f *recordForm) focus(idx int) tea.Cmd {
	if f.focusIdx != fieldKind {
		f.fields[f.focusIdx].Blur()
	}
	f.focusIdx = idx
	if idx == fieldKind {
		return nil
	}
	f.fields[idx].Focus()
	return f.fields[idx].Cursor.BlinkCmd()
}

func (f *recordForm) toggleKind() {
	if f.kind == model.KindSSH {
		f.kind = model.KindRDP
	} else {
		f.kind = model.KindSSH
	}
}

// buildRecord validates the form into a ConnectionRecord. The port defaults
// by kind when left blank; the store validation rejects delimiter characters
// and out-of-range ports.
func (f *recordForm) buildRecord() (model.ConnectionRecord, error) {
	r := model.ConnectionRecord{
		Name:        strings.TrimSpace(f.fields[fieldName].Value()),
		Kind:        f.kind,
		Host:        strings.TrimSpace(f.fields[fieldHost].Value()),
		Username:    strings.TrimSpace(f.fields[fieldUsername].Value()),
		Secret:      f.fields[fieldSecret].Value(),
		ExtraParams: strings.TrimSpace(f.fields[fieldExtra].Value()),
	}
	portStr := strings.TrimSpace(f.fields[fieldPort].Value())
	if portStr == "" {
		r.Port = f.kind.DefaultPort()
	} else {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return model.ConnectionRecord{}, fmt.Errorf("port must be a number")
		}
		r.Port = p
	}
	if err := store.ValidateRecord(r); err != nil {
		return model.ConnectionRecord{}, err
	}
	return r, nil
}

func (f *recordForm) View() string {
	labels := []string{"Type:", "Name:", "Host:", "Port:", "Username:", "Password:", "Extra params:"}

	var b strings.Builder
	b.WriteString(formTitleStyle.Render(f.title))
	b.WriteString("\n\n")

	for i, label := range labels {
		cursor := "  "
		if i == f.focusIdx {
			cursor = "> "
		}
		if i == fieldKind {
			ssh, rdp := " ", " "
			if f.kind == model.KindSSH {
				ssh = "x"
			} else {
				rdp = "x"
			}
			b.WriteString(fmt.Sprintf("%s%-14s (%s) SSH  (%s) RDP\n", cursor, label, ssh, rdp))
			continue
		}
		b.WriteString(fmt.Sprintf("%s%-14s %s\n", cursor, label, f.fields[i].View()))
	}

	if f.errMsg != "" {
		b.WriteString("\n" + formErrStyle.Render("Error: "+f.errMsg) + "\n")
	}
	b.WriteString("\n" + formHintStyle.Render("Tab/arrows navigate | Space toggles type | Enter save | Esc cancel"))
	return b.String()
}

// RunRecordForm opens the editor and returns the resulting record.
// ok is false when the user cancelled.
func RunRecordForm(initial model.ConnectionRecord, title string) (model.ConnectionRecord, bool, error) {
	m, err := tea.NewProgram(newRecordForm(initial, title)).Run()
	if err != nil {
		return model.ConnectionRecord{}, false, fmt.Errorf("run form: %w", err)
	}
	f, ok := m.(*recordForm)
	if !ok || !f.submitted {
		return model.ConnectionRecord{}, false, nil
	}
	return f.result, true, nil
}
