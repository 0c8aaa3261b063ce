// cachesim replays a trace against a configured cache-level stack and
// writes per-cache statistics; all of the real work lives behind the
// cobra root command in cmd/root.go.

package main

import (
	"github.com/cachesim/cachesim/cmd"
)

func main() {
	cmd.Execute()
}
