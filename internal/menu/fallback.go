package menu

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sshgo/sshgo/internal/model"
)

// RunLineMode is the selection mode for terminals without raw-mode support:
// a flat numbered list of all records (SSH group first, then remaining
// groups in display order) read line by line. 0 or EOF cancels; anything
// unparseable re-prompts.
func RunLineMode(in io.Reader, out io.Writer, records []model.ConnectionRecord) (*model.ConnectionRecord, error) {
	st := NewState(records)
	flat := st.Flattened()

	fmt.Fprintln(out, "Available connections:")
	for i, r := range flat {
		fmt.Fprintf(out, "%d) %s [%s]\n", i+1, r.Name, r.Kind.Upper())
		fmt.Fprintf(out, "   %s\n", r.Address())
	}
	fmt.Fprintln(out, "0) Exit")

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "Your choice (0-%d): ", len(flat))
		if !sc.Scan() {
			fmt.Fprintln(out)
			return nil, sc.Err()
		}
		choice := strings.TrimSpace(sc.Text())
		n, err := strconv.Atoi(choice)
		if err != nil {
			fmt.Fprintln(out, "Enter a number.")
			continue
		}
		if n == 0 {
			return nil, nil
		}
		if n < 1 || n > len(flat) {
			fmt.Fprintln(out, "Invalid choice.")
			continue
		}
		r := flat[n-1]
		return &r, nil
	}
}
