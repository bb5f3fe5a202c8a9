package menu

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sshgo/sshgo/internal/appconfig"
	"github.com/sshgo/sshgo/internal/model"
	"github.com/sshgo/sshgo/internal/term"
)

const clearScreen = "\033[2J\033[H"

// Run shows the interactive menu over the given records and returns the
// selected one, or nil when the user cancels. Records are loaded once by the
// caller; the store is not re-polled during the session.
//
// Raw-mode control is acquired once here and released on every exit path.
// When raw mode is unavailable (non-interactive terminal, platform probe
// failure) the menu degrades to a numbered line-mode prompt.
func Run(records []model.ConnectionRecord, cfg appconfig.Config) (*model.ConnectionRecord, error) {
	if len(records) == 0 {
		fmt.Println("No connections in the store. Add one with: sshgo add")
		return nil, nil
	}

	sess, err := term.AcquireRaw()
	if err != nil {
		fmt.Println("Interactive mode unavailable, falling back to numbered selection.")
		return RunLineMode(os.Stdin, os.Stdout, records)
	}
	defer sess.Restore()

	st := NewState(records)
	for {
		cols, rows := term.Size()
		st.SetCapacity(VisibleCapacity(rows))
		draw(os.Stdout, Render(st, cols, rows, cfg.UI.MinColumnWidth))

		ev, err := sess.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read key: %w", err)
		}
		done, selected := st.Handle(ev)
		if done {
			fmt.Fprint(os.Stdout, clearScreen)
			return selected, nil
		}
	}
}

// draw repaints the whole screen. Raw mode disables output post-processing,
// so bare newlines must be written as CRLF.
func draw(w io.Writer, view string) {
	fmt.Fprint(w, clearScreen)
	fmt.Fprint(w, strings.ReplaceAll(view, "\n", "\r\n"))
}
