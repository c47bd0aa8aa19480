package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sfi2k7/hubconsole/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
