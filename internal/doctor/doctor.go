// Package doctor runs local environment diagnostics for sshgo: client
// binaries, store file posture, and store content health.
package doctor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sshgo/sshgo/internal/appconfig"
	"github.com/sshgo/sshgo/internal/launcher"
	"github.com/sshgo/sshgo/internal/model"
)

// DefaultProbeTimeout bounds each per-record reachability check.
const DefaultProbeTimeout = 5 * time.Second

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Issue struct {
	Severity       Severity `json:"severity"`
	Check          string   `json:"check"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

func (r Report) HasHigh() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// Run executes all local diagnostics.
func Run(cfg appconfig.Config, storePath string) (Report, error) {
	var issues []Issue

	if err := launcher.EnsureSSHBinary(); err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "ssh-binary",
			Target:         "PATH",
			Message:        err.Error(),
			Recommendation: "install the OpenSSH client and ensure `ssh` is on PATH",
		})
	}
	if _, err := exec.LookPath("sshpass"); err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityLow,
			Check:          "sshpass-binary",
			Target:         "PATH",
			Message:        "sshpass not found; stored SSH passwords will not be used",
			Recommendation: "install sshpass or rely on key-based authentication",
		})
	}
	if _, err := launcher.FindRDPClient(cfg); err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityLow,
			Check:          "rdp-client",
			Target:         "PATH",
			Message:        err.Error(),
			Recommendation: "install freerdp (xfreerdp) or rdesktop to launch RDP records",
		})
	}

	// The store holds credentials, so both the file and its directory must
	// be owner-only.
	checkPathPerm(&issues, filepath.Dir(storePath), 0o700, false)
	checkPathPerm(&issues, storePath, 0o600, true)
	issues = append(issues, malformedLineIssues(storePath)...)

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return severityRank(issues[i].Severity) > severityRank(issues[j].Severity)
		}
		if issues[i].Check != issues[j].Check {
			return issues[i].Check < issues[j].Check
		}
		return issues[i].Target < issues[j].Target
	})
	return Report{Issues: issues}, nil
}

// ProbeRecords tests reachability of every stored record's target and reports
// the unreachable ones. SSH records run a BatchMode ssh echo, RDP records a
// plain TCP dial; either way no session is opened.
func ProbeRecords(ctx context.Context, records []model.ConnectionRecord, timeout time.Duration) []Issue {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	var issues []Issue
	for _, r := range records {
		if err := launcher.Probe(ctx, r, timeout); err != nil {
			issues = append(issues, Issue{
				Severity:       SeverityMedium,
				Check:          "probe",
				Target:         r.Address(),
				Message:        err.Error(),
				Recommendation: "check that the host is up and the port is reachable from this machine",
			})
		}
	}
	return issues
}

// malformedLineIssues reports store lines the parser would drop silently, so
// the user can find records that vanished from the menu.
func malformedLineIssues(storePath string) []Issue {
	f, err := os.Open(storePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	var issues []Issue
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Count(line, "|") < 5 {
			issues = append(issues, Issue{
				Severity:       SeverityMedium,
				Check:          "store-malformed",
				Target:         fmt.Sprintf("%s:%d", storePath, lineNo),
				Message:        "record line has fewer than 6 fields and is ignored",
				Recommendation: "fix or remove the line; records are name|kind|host|port|username|secret|extra",
			})
		}
	}
	return issues
}

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

func checkPathPerm(issues *[]Issue, path string, max os.FileMode, isFile bool) {
	st, err := os.Stat(path)
	if err != nil {
		return
	}
	mode := st.Mode().Perm()
	if mode > max {
		kind := "directory"
		if isFile {
			kind = "file"
		}
		*issues = append(*issues, Issue{
			Severity:       SeverityMedium,
			Check:          "store-permissions",
			Target:         path,
			Message:        fmt.Sprintf("%s permissions are too broad (%#o)", kind, mode),
			Recommendation: fmt.Sprintf("restrict permissions to %#o or tighter", max),
		})
	}
}
