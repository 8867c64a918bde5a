// Command vepctl validates voter files and merges them into an entity pool.
package main

import (
	"os"

	"github.com/custodia-labs/vepctl/internal/adapters/driving/cli"
	"github.com/custodia-labs/vepctl/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)

	app, err := newApp("")
	if err != nil {
		logger.Error("Startup failed: %v", err)
		return 1
	}
	defer app.Close()

	cli.SetServices(app.services)
	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}
