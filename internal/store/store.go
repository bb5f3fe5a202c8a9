// Package store persists connection records in a pipe-delimited flat file.
//
// Each non-comment line holds one record:
//
//	name|kind|host|port|username|secret|extra_params
//
// Lines with fewer than 6 fields are skipped silently — a corrupt line drops
// one record from the working set and never becomes a fatal error. All
// mutations are read-modify-write through a temporary file followed by an
// atomic rename, and the file is written with owner-only permissions because
// the secret column may hold credentials.
package store

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sshgo/sshgo/internal/model"
	"github.com/sshgo/sshgo/internal/util"
)

const fieldCount = 7

var (
	ErrExists        = errors.New("record already exists")
	ErrNotFound      = errors.New("record not found")
	ErrNameCollision = errors.New("record name already taken")
)

// Store provides access to one connection store file.
type Store struct {
	path string
}

// New creates a store bound to the given file path. The file does not need
// to exist yet.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// ValidateRecord rejects records that cannot survive a round trip through
// the pipe-delimited format, plus empty keys and out-of-range ports.
func ValidateRecord(r model.ConnectionRecord) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if err := util.ValidatePort(r.Port); err != nil {
		return err
	}
	for _, f := range []string{r.Name, string(r.Kind), r.Host, r.Username, r.Secret, r.ExtraParams} {
		if strings.Contains(f, "|") {
			return fmt.Errorf("fields cannot contain the %q delimiter", "|")
		}
	}
	return nil
}

// ListAll returns all parseable records in file order.
func (s *Store) ListAll() ([]model.ConnectionRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	var out []model.ConnectionRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if r, ok := parseLine(line); ok {
			out = append(out, r)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan store: %w", err)
	}
	return out, nil
}

// Find returns the record with the given name, or ok=false.
func (s *Store) Find(name string) (model.ConnectionRecord, bool, error) {
	records, err := s.ListAll()
	if err != nil {
		return model.ConnectionRecord{}, false, err
	}
	for _, r := range records {
		if r.Name == name {
			return r, true, nil
		}
	}
	return model.ConnectionRecord{}, false, nil
}

// Exists reports whether a record with the given name is stored.
func (s *Store) Exists(name string) (bool, error) {
	_, ok, err := s.Find(name)
	return ok, err
}

// Names returns all record names in file order. Used for on-demand shell
// completion; there is no process-wide name cache.
func (s *Store) Names() ([]string, error) {
	records, err := s.ListAll()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names, nil
}

// Insert appends a record. Returns ErrExists if the name is taken.
func (s *Store) Insert(r model.ConnectionRecord) error {
	if err := ValidateRecord(r); err != nil {
		return err
	}
	lines, err := s.readLines()
	if err != nil {
		return err
	}
	if nameTaken(lines, r.Name) {
		return fmt.Errorf("%w: %s", ErrExists, r.Name)
	}
	lines = append(lines, formatLine(r))
	return s.writeLines(lines)
}

// Remove deletes the named record. Returns ErrNotFound if absent.
func (s *Store) Remove(name string) error {
	lines, err := s.readLines()
	if err != nil {
		return err
	}
	out := lines[:0]
	removed := false
	for _, line := range lines {
		if recordName(line) == name {
			removed = true
			continue
		}
		out = append(out, line)
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s.writeLines(out)
}

// Replace swaps the record stored under oldName for newRecord, preserving
// its position in the file. Renames are checked against existing names.
func (s *Store) Replace(oldName string, newRecord model.ConnectionRecord) error {
	if err := ValidateRecord(newRecord); err != nil {
		return err
	}
	lines, err := s.readLines()
	if err != nil {
		return err
	}
	if oldName != newRecord.Name && nameTaken(lines, newRecord.Name) {
		return fmt.Errorf("%w: %s", ErrNameCollision, newRecord.Name)
	}
	replaced := false
	for i, line := range lines {
		if recordName(line) == oldName {
			lines[i] = formatLine(newRecord)
			replaced = true
			break
		}
	}
	if !replaced {
		return fmt.Errorf("%w: %s", ErrNotFound, oldName)
	}
	return s.writeLines(lines)
}

// readLines returns the raw file lines, comments and blanks included, so
// mutations keep user annotations intact.
func (s *Store) readLines() ([]string, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}
	text := strings.TrimSuffix(string(b), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// writeLines writes the full file through a temp file and atomic rename,
// with owner-only permissions.
func (s *Store) writeLines(lines []string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".connections-*")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

func nameTaken(lines []string, name string) bool {
	for _, line := range lines {
		if recordName(line) == name {
			return true
		}
	}
	return false
}

// recordName extracts the key of a record line without a full parse.
// Comments and blank lines yield "".
func recordName(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || !strings.Contains(line, "|") {
		return ""
	}
	return line[:strings.Index(line, "|")]
}

func parseLine(line string) (model.ConnectionRecord, bool) {
	parts := strings.Split(line, "|")
	if len(parts) < fieldCount-1 {
		return model.ConnectionRecord{}, false
	}
	for len(parts) < fieldCount {
		parts = append(parts, "")
	}
	kind := model.ParseKind(parts[1])
	port, err := strconv.Atoi(parts[3])
	if err != nil || port == 0 {
		port = kind.DefaultPort()
	}
	return model.ConnectionRecord{
		Name:        parts[0],
		Kind:        kind,
		Host:        parts[2],
		Port:        port,
		Username:    parts[4],
		Secret:      parts[5],
		ExtraParams: parts[6],
	}, true
}

func formatLine(r model.ConnectionRecord) string {
	return strings.Join([]string{
		r.Name,
		string(r.Kind),
		r.Host,
		strconv.Itoa(r.Port),
		r.Username,
		r.Secret,
		r.ExtraParams,
	}, "|")
}
