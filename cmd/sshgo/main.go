// Package main is the entry point for the sshgo binary.
//
// sshgo is a terminal front-end for launching remote-desktop sessions (SSH
// and RDP) stored in a small flat-file address book. Run without arguments
// it opens the interactive menu; with a connection name it connects
// directly; subcommands manage the stored entries.
//
// Usage:
//
//	sshgo              # interactive menu
//	sshgo prod-web     # connect to a stored entry by name
//	sshgo list         # list stored entries
//	sshgo add          # add an entry (interactive form)
//
// The CLI is constructed in internal/cli and the menu in internal/menu.
// This file wires them together and handles top-level error reporting.
package main

import (
	"fmt"
	"os"

	"github.com/sshgo/sshgo/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
