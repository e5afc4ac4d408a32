// Package cli implements roomctl, a command-line view over a listings file.
package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// App holds flags shared by every command.
type App struct {
	SeedFile string
	JSON     bool
}

// NewRootCmd builds the roomctl command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "roomctl",
		Short:        "Browse and check room listings without running the server",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Cheapest rooms with Wifi
  roomctl rooms --amenity Wifi --sort PRICE_LOW_HIGH

  # Rooms in a custom listings file
  roomctl rooms --seed-file rooms.yaml --search bandra

  # Check a listings file before deploying it
  roomctl check rooms.yaml
`),
	}

	cmd.PersistentFlags().StringVar(&app.SeedFile, "seed-file", "", "YAML listings file (default: built-in listings)")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print JSON instead of a table")

	cmd.AddCommand(newRoomsCmd(app))
	cmd.AddCommand(newCheckCmd(app))
	return cmd
}
