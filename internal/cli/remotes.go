package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/sfi2k7/hubconsole/ui"
	"github.com/spf13/cobra"
)

func NewRemotesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remotes",
		Short: "Inspect and sync remote repositories",
	}
	cmd.AddCommand(newRemotesGetCommand(opts))
	cmd.AddCommand(newRemotesSyncCommand(opts))
	return cmd
}

func newRemotesGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <distribution>",
		Short: "Show the sync configuration of a distribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			r, err := c.Remotes.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			status := ui.SyncStatus(*r)
			if opts.json() {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"remote": r,
					"status": status,
				})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "name\t%s\n", r.Name)
			fmt.Fprintf(w, "url\t%s\n", r.URL)
			fmt.Fprintf(w, "auth url\t%s\n", r.AuthURL)
			fmt.Fprintf(w, "proxy url\t%s\n", r.ProxyURL)
			fmt.Fprintf(w, "tls validation\t%t\n", r.TLSValidation)
			fmt.Fprintf(w, "requirements file\t%t\n", r.RequirementsFile != "")
			fmt.Fprintf(w, "last sync\t%s\n", status.Text)
			if r.LastSyncTask != nil && r.LastSyncTask.Error != nil {
				fmt.Fprintf(w, "sync error\t%s\n", r.LastSyncTask.Error.Description)
			}
			return w.Flush()
		},
	}
}

func newRemotesSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <distribution>",
		Short: "Start syncing a distribution from its remote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			task, err := c.Remotes.Sync(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.json() {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"task": task})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sync of %s started, task %s\n", args[0], task)
			return nil
		},
	}
}
