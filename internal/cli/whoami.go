package cli

import (
	"fmt"

	"github.com/sfi2k7/hubconsole/ui"
	"github.com/spf13/cobra"
)

func NewWhoamiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user the API credentials belong to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			u, err := c.ActiveUser.Get(cmd.Context())
			if err != nil {
				return err
			}
			if opts.json() {
				return writeJSON(cmd.OutOrStdout(), u)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.DisplayName(*u))
			return nil
		},
	}
}
