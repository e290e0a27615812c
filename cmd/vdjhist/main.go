// vdjhist - VirtualDJ play history importer
//
// vdjhist reads VirtualDJ .m3u history exports, reconstructs an ordered,
// deduplicated timeline of play events and records them in a local ledger.
package main

import (
	"os"

	"github.com/kaiano/vdjhist/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
