// Package launcher starts the external client process for a selected
// connection record.
//
// It does NOT implement SSH or RDP itself: it shells out to the system
// binaries (ssh, optionally wrapped in sshpass; xfreerdp or rdesktop), which
// keeps the user's full client configuration in play without reimplementing
// any of it.
//
// The record's kind is a closed variant: Launch dispatches on it and returns
// the client's exit code. SSH sessions run in the foreground inside a PTY;
// RDP clients are GUI programs and are started detached, returning
// immediately.
//
// All arguments are passed via exec.Command's argv, never through a shell,
// so record fields containing shell metacharacters cannot inject commands.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/creack/pty"
	"github.com/sshgo/sshgo/internal/appconfig"
	"github.com/sshgo/sshgo/internal/model"
	"github.com/sshgo/sshgo/internal/util"
)

// rdpClients in preference order.
var rdpClients = []string{"xfreerdp", "rdesktop"}

// EnsureSSHBinary checks that the "ssh" binary is available on the system
// PATH, so connect attempts can fail with a clear message up front instead
// of a confusing exec error.
func EnsureSSHBinary() error {
	if _, err := exec.LookPath("ssh"); err != nil {
		return fmt.Errorf("ssh binary not found in PATH")
	}
	return nil
}

// Launch connects to the record's target and returns the client exit code.
func Launch(ctx context.Context, r model.ConnectionRecord, cfg appconfig.Config) (int, error) {
	switch r.Kind {
	case model.KindRDP:
		return launchRDP(r, cfg)
	default:
		return launchSSH(ctx, r, cfg)
	}
}

// BuildSSHArgs composes the ssh argv (excluding the program name) for the
// record. Extra params pass through flag by flag: "-o value" pairs and
// dash-prefixed switches are kept, anything else is dropped so a stored
// record can never smuggle a remote command.
func BuildSSHArgs(r model.ConnectionRecord, cfg appconfig.Config) []string {
	args := []string{
		"-o", "StrictHostKeyChecking=" + util.DefaultString(cfg.SSH.StrictHostKeyChecking, "no"),
		"-p", strconv.Itoa(r.Port),
	}
	extra := util.SplitArgs(r.ExtraParams)
	for i := 0; i < len(extra); i++ {
		switch {
		case extra[i] == "-o" && i+1 < len(extra):
			args = append(args, "-o", extra[i+1])
			i++
		case strings.HasPrefix(extra[i], "-"):
			args = append(args, extra[i])
		}
	}
	return append(args, fmt.Sprintf("%s@%s", r.Username, r.Host))
}

// sshCommand builds the full command, wrapping in sshpass when the record
// stores a secret and sshpass is installed. Without sshpass the session
// still runs; ssh will prompt or use key auth. The context kills the session
// when it expires.
func sshCommand(ctx context.Context, r model.ConnectionRecord, cfg appconfig.Config) (*exec.Cmd, bool) {
	args := BuildSSHArgs(r, cfg)
	if r.HasSecret() {
		if _, err := exec.LookPath("sshpass"); err == nil {
			return exec.CommandContext(ctx, "sshpass", append([]string{"-p", r.Secret, "ssh"}, args...)...), true
		}
		return exec.CommandContext(ctx, "ssh", args...), false
	}
	return exec.CommandContext(ctx, "ssh", args...), true
}

// launchSSH runs an interactive SSH session in a pseudo-terminal, piping the
// user's stdin to the PTY and the PTY output to stdout, and blocks until the
// session ends. The PTY is required for password prompts and remote line
// editing.
func launchSSH(ctx context.Context, r model.ConnectionRecord, cfg appconfig.Config) (int, error) {
	if err := EnsureSSHBinary(); err != nil {
		return 1, err
	}
	cmd, secretUsed := sshCommand(ctx, r, cfg)
	if !secretUsed {
		fmt.Fprintln(os.Stderr, "sshpass is not installed; the stored password will not be used")
	}

	f, err := pty.Start(cmd)
	if err != nil {
		return 1, fmt.Errorf("start ssh session: %w", err)
	}
	defer f.Close()

	// Stdin copy runs in a goroutine because io.Copy blocks until the PTY
	// closes when the SSH process exits.
	go func() {
		_, _ = io.Copy(f, os.Stdin)
	}()
	_, _ = io.Copy(os.Stdout, f)

	return exitCode(cmd.Wait()), nil
}

// FindRDPClient returns the preferred available RDP client binary. The
// configured client wins when set; otherwise xfreerdp is preferred over
// rdesktop.
func FindRDPClient(cfg appconfig.Config) (string, error) {
	if cfg.RDP.Client != "" {
		if _, err := exec.LookPath(cfg.RDP.Client); err != nil {
			return "", fmt.Errorf("configured rdp client %q not found in PATH", cfg.RDP.Client)
		}
		return cfg.RDP.Client, nil
	}
	for _, c := range rdpClients {
		if _, err := exec.LookPath(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("no RDP client found in PATH (install xfreerdp or rdesktop)")
}

// BuildRDPArgs composes the argv for the given RDP client binary.
func BuildRDPArgs(client string, r model.ConnectionRecord) []string {
	extra := util.SplitArgs(r.ExtraParams)
	if client == "rdesktop" {
		args := []string{"-g", "1024x768", "-u", r.Username}
		if r.HasSecret() {
			args = append(args, "-p", r.Secret)
		}
		args = append(args, fmt.Sprintf("%s:%d", r.Host, r.Port))
		return append(args, extra...)
	}
	args := []string{
		fmt.Sprintf("/v:%s:%d", r.Host, r.Port),
		fmt.Sprintf("/u:%s", r.Username),
	}
	if r.HasSecret() {
		args = append(args, fmt.Sprintf("/p:%s", r.Secret))
	}
	if len(extra) > 0 {
		return append(args, extra...)
	}
	return append(args, "/cert:ignore", "/dynamic-resolution")
}

// launchRDP starts the RDP client detached from the terminal (own session,
// stdio discarded) and returns immediately: GUI clients must not block the
// console, so the exit code is always 0 on a successful start.
func launchRDP(r model.ConnectionRecord, cfg appconfig.Config) (int, error) {
	client, err := FindRDPClient(cfg)
	if err != nil {
		return 1, err
	}
	cmd := exec.Command(client, BuildRDPArgs(client, r)...)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return 1, fmt.Errorf("start %s: %w", client, err)
	}
	// Reap the client in the background so it is not left a zombie while
	// this process lingers.
	go func() { _ = cmd.Wait() }()
	return 0, nil
}

// Probe tests reachability of the record's target without opening a session:
// a BatchMode ssh echo for SSH records, a plain TCP dial for RDP.
func Probe(ctx context.Context, r model.ConnectionRecord, timeout time.Duration) error {
	if r.Kind == model.KindRDP {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(r.Host, strconv.Itoa(r.Port)))
		if err != nil {
			return fmt.Errorf("rdp port unreachable: %w", err)
		}
		return conn.Close()
	}

	args := []string{
		"-o", "StrictHostKeyChecking=no",
		"-o", "BatchMode=yes",
		"-o", fmt.Sprintf("ConnectTimeout=%d", int(timeout.Seconds())),
		"-p", strconv.Itoa(r.Port),
		fmt.Sprintf("%s@%s", r.Username, r.Host),
		"true",
	}
	cmd := exec.CommandContext(ctx, "ssh", args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ssh probe failed: %w", err)
	}
	return nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
