// Command cnftmint lists, previews and mints the giveaway's compressed NFT
// variants, and can serve the same operations over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	_ "xdao.co/cnftmint/mintrpc"
	_ "xdao.co/cnftmint/submitter/dryrun"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
