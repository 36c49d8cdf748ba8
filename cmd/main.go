package main

import (
	"os"

	"github.com/alecthomas/kong"

	"tomatick/internal/cli"
	ferrors "tomatick/internal/foundation/errors"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	var root cli.CLI
	ctx := kong.Parse(&root,
		kong.Name("tomatick"),
		kong.Description(cli.AppName+" - a Pomodoro timer for the tray and the terminal"),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
		kong.Bind(&root),
	)

	err := ctx.Run()
	os.Exit(ferrors.NewCLIErrorAdapter(root.Verbose).Report(os.Stderr, err))
}
