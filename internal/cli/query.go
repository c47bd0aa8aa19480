package cli

import (
	"fmt"
	"io"

	"github.com/sfi2k7/hubconsole/params"
	"go.uber.org/multierr"
)

// parseQuery reads the optional query argument over defaults. Numeric
// values that do not parse are reported on w and dropped.
func parseQuery(w io.Writer, defaults params.Params, args []string, numeric ...string) params.Params {
	if len(args) == 0 {
		return defaults
	}
	parsed, err := params.ParseStrict(args[0], numeric...)
	for _, e := range multierr.Errors(err) {
		fmt.Fprintf(w, "warning: %v, ignored\n", e)
	}
	out := defaults
	for _, k := range parsed.Keys() {
		v, _ := parsed.Get(k)
		out = out.Set(k, v)
	}
	return out
}
