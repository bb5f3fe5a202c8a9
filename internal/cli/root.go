// Package cli provides the command-line interface for sshgo.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/sshgo/sshgo/internal/appconfig"
	"github.com/sshgo/sshgo/internal/doctor"
	"github.com/sshgo/sshgo/internal/launcher"
	"github.com/sshgo/sshgo/internal/menu"
	"github.com/sshgo/sshgo/internal/model"
	"github.com/sshgo/sshgo/internal/store"
	"github.com/sshgo/sshgo/internal/ui"
	"github.com/sshgo/sshgo/internal/util"
)

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sshgo [name]",
		Short: "SSH and RDP connection manager",
		Long: "sshgo stores connection entries in a small flat file and launches them\n" +
			"through the system ssh and RDP clients. Run without arguments for the\n" +
			"interactive menu, or pass a connection name to connect directly.",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRecordNames,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return connectByName(args[0])
			}
			return runMenu()
		},
	}

	root.AddCommand(newListCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newEditCmd())
	root.AddCommand(newRemoveCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newDoctorCmd())
	return root
}

// openStore resolves the store path and binds a store to it.
func openStore() (*store.Store, error) {
	path, err := appconfig.StoreFilePath()
	if err != nil {
		return nil, err
	}
	return store.New(path), nil
}

// loadConfig returns the app config, falling back to defaults on error so a
// broken config.yaml never blocks connecting.
func loadConfig() appconfig.Config {
	cfg, err := appconfig.Load()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		return appconfig.Default()
	}
	return cfg
}

// completeRecordNames is the dynamic completion source for commands taking a
// record name. It queries the store on demand; there is no name cache.
func completeRecordNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	s, err := openStore()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names, err := s.Names()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, toComplete) {
			out = append(out, n)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func runMenu() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	records, err := s.ListAll()
	if err != nil {
		return err
	}
	cfg := loadConfig()
	selected, err := menu.Run(records, cfg)
	if err != nil {
		return err
	}
	if selected == nil {
		return nil
	}
	if err := connect(*selected, cfg); err != nil {
		return err
	}
	fmt.Printf("Disconnected from %s\n", selected.Name)
	return nil
}

func connectByName(name string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	r, ok, err := s.Find(name)
	if err != nil {
		return err
	}
	if !ok {
		names, _ := s.Names()
		if len(names) > 0 {
			fmt.Fprintln(os.Stderr, "Available connections:")
			for _, n := range names {
				fmt.Fprintf(os.Stderr, "  - %s\n", n)
			}
		}
		return fmt.Errorf("connection %q not found", name)
	}
	return connect(r, loadConfig())
}

func connect(r model.ConnectionRecord, cfg appconfig.Config) error {
	fmt.Printf("Connecting to %s...\n", r.Address())
	// Interactive sessions can stay open for hours; the timeout is a
	// backstop, not a session limit.
	ctx, cancel := context.WithTimeout(context.Background(), 24*time.Hour)
	defer cancel()
	code, err := launcher.Launch(ctx, r, cfg)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("connection to %s exited with code %d", r.Name, code)
	}
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			records, err := s.ListAll()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No connections in the store.")
				return nil
			}
			fmt.Printf("%-24s %-6s %-28s %-16s %s\n", "NAME", "TYPE", "ADDRESS", "USER", "SECRET")
			for _, r := range records {
				secret := "-"
				if r.HasSecret() {
					secret = "yes"
				}
				addr := fmt.Sprintf("%s:%d", r.Host, r.Port)
				fmt.Printf("%-24s %-6s %-28s %-16s %s\n", r.Name, r.Kind.Upper(), addr, util.EmptyDash(r.Username), secret)
			}
			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	var kindFlag string
	cmd := &cobra.Command{
		Use:   "add [name host user [password] [port]]",
		Short: "Add a connection (interactive form without arguments)",
		Args:  cobra.RangeArgs(0, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				rec, ok, err := ui.RunRecordForm(model.ConnectionRecord{Kind: model.ParseKind(kindFlag)}, "Add connection")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("Cancelled.")
					return nil
				}
				if err := s.Insert(rec); err != nil {
					return err
				}
				fmt.Printf("Added %s\n", rec.Name)
				return nil
			}
			if len(args) < 3 {
				return fmt.Errorf("quick add needs at least name, host, and user")
			}
			rec, err := quickRecord(args, kindFlag)
			if err != nil {
				return err
			}
			if err := s.Insert(rec); err != nil {
				return err
			}
			fmt.Printf("Added %s\n", rec.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&kindFlag, "type", "ssh", "connection type (ssh or rdp)")
	return cmd
}

// quickRecord builds a record from the positional quick-add form:
// name host user [password] [port].
func quickRecord(args []string, kindFlag string) (model.ConnectionRecord, error) {
	kind := model.ParseKind(kindFlag)
	r := model.ConnectionRecord{
		Name:     args[0],
		Kind:     kind,
		Host:     args[1],
		Port:     kind.DefaultPort(),
		Username: args[2],
	}
	if len(args) >= 4 {
		r.Secret = args[3]
	}
	if len(args) == 5 {
		p, err := strconv.Atoi(args[4])
		if err != nil {
			return model.ConnectionRecord{}, fmt.Errorf("invalid port %q", args[4])
		}
		r.Port = p
	}
	if err := store.ValidateRecord(r); err != nil {
		return model.ConnectionRecord{}, err
	}
	return r, nil
}

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "edit <name>",
		Short:             "Edit a connection",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeRecordNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			r, ok, err := s.Find(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("connection %q not found", args[0])
			}
			updated, ok, err := ui.RunRecordForm(r, "Edit "+r.Name)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Cancelled.")
				return nil
			}
			if err := s.Replace(args[0], updated); err != nil {
				return err
			}
			fmt.Printf("Updated %s\n", updated.Name)
			return nil
		},
	}
}

func newRemoveCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:               "remove <name>",
		Aliases:           []string{"rm"},
		Short:             "Remove a connection",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeRecordNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			r, ok, err := s.Find(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("connection %q not found", args[0])
			}
			if !force && !confirm(fmt.Sprintf("Remove %s (%s)?", r.Name, r.Address())) {
				fmt.Println("Cancelled.")
				return nil
			}
			if err := s.Remove(args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

// confirm asks a y/N question on stdin; anything but y/yes declines.
func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	return answer == "y" || answer == "yes"
}

func newShowCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:               "show <name>",
		Short:             "Show connection details",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeRecordNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			r, ok, err := s.Find(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("connection %q not found", args[0])
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			secret := "not set"
			if r.HasSecret() {
				secret = "set"
			}
			fmt.Printf("Name:     %s\n", r.Name)
			fmt.Printf("Type:     %s\n", r.Kind.Upper())
			fmt.Printf("Host:     %s\n", r.Host)
			fmt.Printf("Port:     %d\n", r.Port)
			fmt.Printf("User:     %s\n", r.Username)
			fmt.Printf("Password: %s\n", secret)
			fmt.Printf("Params:   %s\n", util.EmptyDash(r.ExtraParams))
			fmt.Printf("Command:  %s\n", commandPreview(r))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

// commandPreview is the literal connect command for display only.
func commandPreview(r model.ConnectionRecord) string {
	if r.Kind == model.KindRDP {
		return fmt.Sprintf("xfreerdp /v:%s:%d /u:%s", r.Host, r.Port, r.Username)
	}
	return fmt.Sprintf("ssh -p %d %s@%s", r.Port, r.Username, r.Host)
}

func newDoctorCmd() *cobra.Command {
	var (
		jsonOut bool
		probe   bool
	)
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the local environment and store",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := appconfig.StoreFilePath()
			if err != nil {
				return err
			}
			rep, err := doctor.Run(loadConfig(), path)
			if err != nil {
				return err
			}
			if probe {
				records, err := store.New(path).ListAll()
				if err != nil {
					return err
				}
				rep.Issues = append(rep.Issues, doctor.ProbeRecords(cmd.Context(), records, doctor.DefaultProbeTimeout)...)
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			if len(rep.Issues) == 0 {
				fmt.Println("No issues found.")
				return nil
			}
			for _, i := range rep.Issues {
				fmt.Printf("[%s] %s %s: %s\n    %s\n", i.Severity, i.Check, i.Target, i.Message, i.Recommendation)
			}
			if rep.HasHigh() {
				return fmt.Errorf("high severity issues found")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	cmd.Flags().BoolVar(&probe, "probe", false, "also test reachability of every stored record")
	return cmd
}
