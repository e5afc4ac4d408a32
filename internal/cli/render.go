package cli

import (
	"encoding/json/v2"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/meraroom/meraroom-server/internal/catalog"
	"github.com/meraroom/meraroom-server/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5f9fb0"))
	priceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2e8b57")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d"))
	savedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d16d7a"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#2e8b57")).Bold(true)
)

// roomsReport is the --json form of the rooms command.
type roomsReport struct {
	Screen            string        `json:"screen"`
	Rooms             []domain.Room `json:"rooms"`
	SavedIDs          []string      `json:"saved_ids"`
	ActiveFilterCount int           `json:"active_filter_count"`
	CatalogSize       int           `json:"catalog_size"`
}

func newRoomsReport(v catalog.View, savedView bool) roomsReport {
	rooms := v.Visible
	if savedView {
		rooms = v.Saved
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	saved := v.SavedIDs
	if saved == nil {
		saved = []string{}
	}
	return roomsReport{
		Screen:            v.Screen.String(),
		Rooms:             rooms,
		SavedIDs:          saved,
		ActiveFilterCount: v.ActiveFilterCount,
		CatalogSize:       v.CatalogSize,
	}
}

func writeJSON(w io.Writer, v any) error {
	if err := json.MarshalWrite(w, v); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func writeRoomsTable(w io.Writer, v catalog.View, savedView bool) error {
	rooms := v.Visible
	title := fmt.Sprintf("%d of %d rooms", len(rooms), v.CatalogSize)
	if savedView {
		rooms = v.Saved
		title = fmt.Sprintf("%d saved", len(rooms))
	} else if v.ActiveFilterCount > 0 {
		title += fmt.Sprintf(" (%d filters)", v.ActiveFilterCount)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteByte('\n')

	if len(rooms) == 0 {
		b.WriteString(mutedStyle.Render("No rooms match."))
		b.WriteByte('\n')
		_, err := io.WriteString(w, b.String())
		return err
	}

	idWidth := 2
	for _, r := range rooms {
		idWidth = max(idWidth, len(r.ID))
	}

	saved := make(map[string]bool, len(v.SavedIDs))
	for _, id := range v.SavedIDs {
		saved[id] = true
	}

	for _, r := range rooms {
		mark := " "
		if saved[r.ID] {
			mark = savedStyle.Render("*")
		}
		fmt.Fprintf(&b, "%s %-*s  %s  %s\n", mark, idWidth, r.ID,
			priceStyle.Render(formatPrice(r.Price)), r.Title)
		fmt.Fprintf(&b, "  %*s  %s\n", idWidth, "",
			mutedStyle.Render(strings.Join(append([]string{r.Location}, r.Amenities...), " · ")))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// formatPrice renders 15000 as "₹15,000".
func formatPrice(p int64) string {
	s := strconv.FormatInt(p, 10)
	var out []byte
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return "₹" + string(out)
}
