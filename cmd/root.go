package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"remote-sync/internal/config"
	"remote-sync/internal/events"
	"remote-sync/internal/history"
	"remote-sync/internal/rsync"
	"remote-sync/internal/sshconfig"
	"remote-sync/internal/syncdata"
	"remote-sync/internal/tui"
	"remote-sync/internal/util"
)

var runID = uuid.NewString()

// RunID identifies this invocation in the log file and in transfer events.
func RunID() string { return runID }

var (
	pullFlag    bool
	dryRunFlag  bool
	noPermsFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "remote-sync <path> [host]",
	Short: "Mirror a local path to the same place under a remote home over rsync+ssh",
	Long: `remote-sync pushes (or with --pull, fetches) a file or directory to the
matching location under the remote user's home directory.

Paths under your local home map to ~/... on the remote side. When no host is
given, default_host from the settings file is used, otherwise you pick one of
the hosts from ~/.ssh/config.`,
	Args:          cobra.RangeArgs(1, 2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv()
		if err != nil {
			return err
		}
		host, err := resolveHost(args, env.cfg, pickHost)
		if err != nil {
			return err
		}
		return runSync(env, syncdata.Request{
			Path:    args[0],
			Host:    host,
			Pull:    pullFlag,
			DryRun:  dryRunFlag,
			NoPerms: noPermsFlag,
		})
	},
}

func init() {
	rootCmd.Flags().BoolVar(&pullFlag, "pull", false, "copy from the remote host to the local path")
	rootCmd.Flags().BoolVarP(&dryRunFlag, "dry-run", "d", false, "show what would change without transferring")
	rootCmd.Flags().BoolVar(&noPermsFlag, "no-perms", false, "do not propagate file permissions")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(hostsCmd)
	rootCmd.AddCommand(newHistoryCmd())
}

// appEnv is what every command needs before touching a remote.
type appEnv struct {
	home string
	cwd  string
	cfg  *config.Config
}

func loadEnv() (*appEnv, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("unable to resolve home directory: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("unable to resolve current directory: %w", err)
	}
	cfg, err := config.LoadAndValidateConfig(home)
	if err != nil {
		return nil, err
	}
	if src := cfg.Source(); src != "" {
		log.Printf("config loaded from %s", src)
	}
	return &appEnv{home: home, cwd: cwd, cfg: cfg}, nil
}

// pickHost shows the interactive host list on the terminal.
func pickHost(hosts []string) (string, error) {
	return tui.PickHost(hosts)
}

// resolveHost picks the target host: the argument, then default_host, then
// an interactive choice among the ssh config aliases.
func resolveHost(args []string, cfg *config.Config, pick func([]string) (string, error)) (string, error) {
	if len(args) > 1 && args[1] != "" {
		return args[1], nil
	}
	if cfg.DefaultHost != "" {
		return cfg.DefaultHost, nil
	}
	hosts, err := sshconfig.ReadHosts(cfg.SSHConfig)
	if err != nil {
		return "", err
	}
	if len(hosts) == 0 {
		return "", fmt.Errorf("no hosts found in %s", cfg.SSHConfig)
	}
	host, err := pick(hosts)
	if errors.Is(err, tui.ErrCancelled) {
		return "", errors.New("no host selected")
	}
	return host, err
}

func runSync(env *appEnv, req syncdata.Request) error {
	detach, err := history.Attach(events.GlobalBus, history.NewStore(env.home), req.NoPerms)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer detach()

	s := syncdata.New(rsync.ExecRunner{}, env.cfg, util.Default, env.home, env.cwd)
	s.RunID = runID
	s.NewDisplay = func(label string) rsync.Display {
		return tui.NewDisplay(os.Stdout, util.Default, label)
	}

	util.Default.Printf("%s  %s\n", tui.Describe(req.Pull, req.Host), req.Path)
	return s.Run(req)
}

// ExecuteContext runs the command tree with ctx attached
func ExecuteContext(ctx context.Context) error {
	rootCmd.SetContext(ctx)
	if err := rootCmd.Execute(); err != nil {
		return err
	}
	return nil
}
