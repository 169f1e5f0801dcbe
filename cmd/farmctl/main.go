// farmctl runs the soil, disease, crop and yield analyses from the command
// line against the configured AI provider.
package main

import (
	"os"

	"agrisense/cmd/farmctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
