package cmd

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"remote-sync/internal/sshconfig"
	"remote-sync/internal/util"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List host aliases from the ssh config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv()
		if err != nil {
			return err
		}
		hosts, err := sshconfig.ReadHosts(env.cfg.SSHConfig)
		if err != nil {
			return err
		}
		if len(hosts) == 0 {
			util.Default.Printf("No hosts found in %s\n", env.cfg.SSHConfig)
			return nil
		}
		renderHosts(util.Default.Writer(), hosts, env.cfg.DefaultHost)
		return nil
	},
}

func renderHosts(w io.Writer, hosts []string, defaultHost string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Host", "Default"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, h := range hosts {
		mark := ""
		if h == defaultHost {
			mark = "*"
		}
		table.Append([]string{h, mark})
	}
	table.Render()
}
