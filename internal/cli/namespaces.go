package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/sfi2k7/hubconsole/api"
	"github.com/sfi2k7/hubconsole/params"
	"github.com/sfi2k7/hubconsole/ui"
	"github.com/spf13/cobra"
)

// namespacePermissions are the object permissions a new namespace grants
// its groups.
var namespacePermissions = []string{
	"galaxy.change_namespace",
	"galaxy.upload_to_namespace",
}

func NewNamespacesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "namespaces",
		Short: "List and create collection namespaces",
	}
	cmd.AddCommand(newNamespacesListCommand(opts))
	cmd.AddCommand(newNamespacesCreateCommand(opts))
	return cmd
}

func newNamespacesListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "List namespaces",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			defaults := params.New().
				SetInt(ui.PageKey, api.DefaultPage).
				SetInt(ui.PageSizeKey, api.DefaultPageSize)
			p := parseQuery(cmd.ErrOrStderr(), defaults, args, ui.PageKey, ui.PageSizeKey)

			page, err := c.Namespaces.List(cmd.Context(), p)
			if err != nil {
				return err
			}
			if opts.json() {
				return writeJSON(cmd.OutOrStdout(), page)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCOMPANY\tGROUPS")
			for _, ns := range page.Data {
				groups := make([]string, 0, len(ns.Groups))
				for _, g := range ns.Groups {
					groups = append(groups, g.Name)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", ns.Name, ns.Company, strings.Join(groups, ","))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d namespaces)\n",
				p.Int(ui.PageKey, api.DefaultPage),
				ui.PageCount(page.Meta.Count, p.Int(ui.PageSizeKey, api.DefaultPageSize)),
				page.Meta.Count)
			return nil
		},
	}
}

func newNamespacesCreateCommand(opts *RootOptions) *cobra.Command {
	var groups []string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a namespace owned by the given groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if fields := ui.ValidateNamespaceName(name); fields != nil {
				return fieldError(fields)
			}

			c, err := opts.client()
			if err != nil {
				return err
			}

			owners := make([]api.GroupPermissions, 0, len(groups))
			for _, g := range groups {
				perms := append([]string(nil), namespacePermissions...)
				owners = append(owners, api.GroupPermissions{Name: g, ObjectPermissions: perms})
			}

			ns, err := c.Namespaces.Create(cmd.Context(), name, owners)
			if err != nil {
				return fieldError(ui.MergeFieldErrors(nil, err))
			}
			if opts.json() {
				return writeJSON(cmd.OutOrStdout(), ns)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created namespace %s\n", ns.Name)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&groups, "group", nil, "owner group, repeatable")
	return cmd
}

// fieldError joins per-field messages in a stable order.
func fieldError(fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "__nofield" {
			msgs = append(msgs, fields[k])
			continue
		}
		msgs = append(msgs, k+": "+fields[k])
	}
	return errors.New(strings.Join(msgs, "; "))
}
