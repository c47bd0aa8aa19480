package cli

import (
	"fmt"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sfi2k7/hubconsole/api"
	"github.com/sfi2k7/hubconsole/params"
	"github.com/sfi2k7/hubconsole/ui"
	"github.com/spf13/cobra"
)

type imagesResult struct {
	Query string        `json:"query"`
	Count int           `json:"count"`
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
	Rows  []ui.ImageRow `json:"rows"`
}

func NewImagesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "images <repo> [query]",
		Short: "List the images of an execution environment",
		Long: `List the images of an execution environment repository.

The optional query uses the console URL syntax, e.g.
  hubconsole images ee-minimal 'tag=latest&page=2&page_size=20'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			repo := args[0]
			p := parseQuery(cmd.ErrOrStderr(), ui.ImageParams, args[1:], api.ImageParams...)

			page, err := c.ExecutionEnvironments.ListImages(cmd.Context(), repo, p)
			if err != nil {
				return err
			}

			pageSize := p.Int(ui.PageSizeKey, api.DefaultPageSize)
			res := imagesResult{
				Query: p.Encode(),
				Count: page.Meta.Count,
				Page:  p.Int(ui.PageKey, api.DefaultPage),
				Pages: ui.PageCount(page.Meta.Count, pageSize),
				Rows:  ui.ImageRows(page.Data, registryHost(opts.cfg.APIBaseURL()), repo, time.Now()),
			}
			if opts.json() {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return printImages(cmd, res, p)
		},
	}
}

func printImages(cmd *cobra.Command, res imagesResult, p params.Params) error {
	out := cmd.OutOrStdout()
	for _, chip := range ui.AppliedFilters(p, ui.DefaultIgnored...) {
		fmt.Fprintf(out, "filter %s: %s\n", chip.Key, chip.Value)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DIGEST\tTAGS\tLAYERS\tSIZE\tCREATED\tPULL")
	for _, r := range res.Rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			ui.ShortDigest(r.Digest), strings.Join(r.Tags, ","), r.Layers, r.Size, r.Age, r.PullCommand)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "page %d of %d (%d images)\n", res.Page, res.Pages, res.Count)
	return nil
}

// registryHost is the host images are pulled from: the API host.
func registryHost(apiBase string) string {
	u, err := url.Parse(apiBase)
	if err != nil || u.Host == "" {
		return "localhost"
	}
	return u.Host
}
