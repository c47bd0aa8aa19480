package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sfi2k7/hubconsole/params"
	"github.com/sfi2k7/hubconsole/toc"
	"github.com/spf13/cobra"
)

type tocOptions struct {
	namespace  string
	collection string
	name       string
	typ        string
}

func NewTOCCommand(opts *RootOptions) *cobra.Command {
	o := &tocOptions{}

	cmd := &cobra.Command{
		Use:   "toc <docs_blob.json> [query]",
		Short: "Print the documentation table of contents of a collection",
		Long: `Print the documentation table of contents of a collection.

The file holds either a docs blob or a collection version carrying one
under "docs_blob". The optional query is kept on every entry link.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := readDocsBlob(args[0])
			if err != nil {
				return err
			}
			table := toc.Build(blob, o.namespace, o.collection)
			if opts.json() {
				return writeJSON(cmd.OutOrStdout(), table.Sections())
			}
			p := parseQuery(cmd.ErrOrStderr(), params.New(), args[1:])
			fmt.Fprint(cmd.OutOrStdout(), table.Tree(o.name, o.typ, p))
			return nil
		},
	}
	cmd.Flags().StringVar(&o.namespace, "namespace", "", "collection namespace")
	cmd.Flags().StringVar(&o.collection, "collection", "", "collection name")
	cmd.Flags().StringVar(&o.name, "name", "", "selected page name")
	cmd.Flags().StringVar(&o.typ, "type", "", "selected page type")
	_ = cmd.MarkFlagRequired("namespace")
	_ = cmd.MarkFlagRequired("collection")
	return cmd
}

func readDocsBlob(path string) (toc.DocsBlob, error) {
	var doc struct {
		toc.DocsBlob
		Wrapped *toc.DocsBlob `json:"docs_blob"`
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return toc.DocsBlob{}, errors.Wrap(err, "reading docs blob")
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return toc.DocsBlob{}, errors.Wrapf(err, "decoding %s", path)
	}
	if doc.Wrapped != nil {
		return *doc.Wrapped, nil
	}
	return doc.DocsBlob, nil
}
