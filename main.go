package main

import (
	"github.com/alecthomas/kong"

	"siphon/cmd"
)

func main() {
	ctx := kong.Parse(&cmd.CLI, kong.Name("Siphon"), kong.Description("Siphon is a drinks menu service."))
	err := ctx.Run(&cmd.Context{Debug: cmd.CLI.Debug})
	ctx.FatalIfErrorf(err)
}
