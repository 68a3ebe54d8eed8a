package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"remote-sync/internal/config"
	"remote-sync/internal/util"
)

const settingsHeader = `# remote-sync settings
#
# Values may reference environment variables as ${VAR}; a .env file in the
# current directory is loaded first. Variables already set in the shell win.
#
# control_persist accepts yes, no, seconds or a duration such as 10m.
# extra_excludes are added after .git/, node_modules/, target/ and .DS_Store.
# default_host is used when no host is given on the command line.

`

var (
	initGlobal bool
	initForce  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize config file",
	Long: `Generate a default remote-sync.yaml in the current directory, or with
--global in ~/.config/remote-sync/config.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("unable to resolve home directory: %w", err)
		}
		target := config.ConfigFileName
		if initGlobal {
			target = config.GlobalConfigPath(home)
		}
		if err := writeDefaultSettings(target, home, initForce); err != nil {
			return err
		}
		util.Default.Printf("✅ Config written to %s\n", target)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "write the per-user settings file instead")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
}

func writeDefaultSettings(path, home string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("check %s: %w", path, err)
		}
	}

	cfg := config.Default(home)
	// keep the file portable between machines
	if rel, err := filepath.Rel(home, cfg.SSHConfig); err == nil {
		cfg.SSHConfig = "~/" + filepath.ToSlash(rel)
	}

	var buf bytes.Buffer
	buf.WriteString(settingsHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("error generating config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("error generating config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}
