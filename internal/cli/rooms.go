package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meraroom/meraroom-server/internal/catalog"
	"github.com/meraroom/meraroom-server/internal/domain"
	"github.com/meraroom/meraroom-server/internal/seed"
)

// roomsOptions mirrors the query a browsing session would hold.
type roomsOptions struct {
	search    string
	min       int64
	max       int64
	amenities []string
	sort      string
	saved     []string
	savedView bool
}

func newRoomsCmd(app *App) *cobra.Command {
	opts := &roomsOptions{}

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List rooms matching a query",
		Long: `List rooms the way the home screen shows them: filtered by search text,
price bounds and amenities (a room must have every amenity given), then
sorted. With --saved-view the saved screen is shown instead, which ignores
the query.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rooms, err := loadRooms(app.SeedFile)
			if err != nil {
				return err
			}

			events, err := opts.events(cmd)
			if err != nil {
				return err
			}
			state := catalog.Reduce(catalog.NewState(catalog.New(rooms...)), events...)
			view := catalog.Derive(state)

			if app.JSON {
				return writeJSON(cmd.OutOrStdout(), newRoomsReport(view, opts.savedView))
			}
			return writeRoomsTable(cmd.OutOrStdout(), view, opts.savedView)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.search, "search", "", "Case-insensitive text matched against title and location")
	f.Int64Var(&opts.min, "min", 0, "Minimum price")
	f.Int64Var(&opts.max, "max", 0, "Maximum price")
	f.StringArrayVar(&opts.amenities, "amenity", nil, "Required amenity (repeatable)")
	f.StringVar(&opts.sort, "sort", "", "RELEVANCE, PRICE_LOW_HIGH, PRICE_HIGH_LOW or NEWEST")
	f.StringArrayVar(&opts.saved, "saved", nil, "Room id to mark saved (repeatable)")
	f.BoolVar(&opts.savedView, "saved-view", false, "Show saved rooms instead of the query result")
	return cmd
}

// events turns the flags into the reducer events a session would see.
// Unset price flags leave that side unbounded.
func (o *roomsOptions) events(cmd *cobra.Command) ([]catalog.Event, error) {
	sortOpt, err := catalog.ParseSortOption(o.sort)
	if err != nil {
		return nil, err
	}

	var events []catalog.Event
	if o.search != "" {
		events = append(events, catalog.SetSearch{Text: o.search})
	}
	if cmd.Flags().Changed("min") {
		if o.min < 0 {
			return nil, errors.New("--min must not be negative")
		}
		events = append(events, catalog.SetMinPrice{Price: catalog.Price(o.min)})
	}
	if cmd.Flags().Changed("max") {
		if o.max < 0 {
			return nil, errors.New("--max must not be negative")
		}
		events = append(events, catalog.SetMaxPrice{Price: catalog.Price(o.max)})
	}
	for _, a := range distinct(o.amenities) {
		events = append(events, catalog.ToggleAmenity{Amenity: a})
	}
	events = append(events, catalog.SetSort{Sort: sortOpt})
	for _, id := range distinct(o.saved) {
		events = append(events, catalog.ToggleSaved{RoomID: id})
	}
	if o.savedView {
		events = append(events, catalog.Navigate{Screen: catalog.ScreenSaved})
	}
	return events, nil
}

// distinct drops repeated flag values so a repeated --amenity or --saved
// does not toggle the selection back off.
func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func loadRooms(path string) ([]domain.Room, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.Load(path)
}

func newCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a listings file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.SeedFile
			if len(args) == 1 {
				path = args[0]
			}
			rooms, err := loadRooms(path)
			if err != nil {
				return err
			}

			amenities := make(map[string]struct{})
			for _, r := range rooms {
				for _, a := range r.Amenities {
					amenities[a] = struct{}{}
				}
			}

			if app.JSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"rooms":     len(rooms),
					"amenities": len(amenities),
				})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %d rooms, %d distinct amenities\n",
				okStyle.Render("ok"), len(rooms), len(amenities))
			return err
		},
	}
}
