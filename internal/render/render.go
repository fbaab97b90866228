// Package render draws dashboard views for the terminal.
package render

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sells-group/plant-dashboard/internal/dashboard"
	"github.com/sells-group/plant-dashboard/internal/feed"
)

// Palette
var (
	Accent  = lipgloss.Color("#8BC34A")
	Muted   = lipgloss.Color("#6B7280")
	Danger  = lipgloss.Color("#E53935")
	Warning = lipgloss.Color("#FFC107")
	Info    = lipgloss.Color("#29B6F6")
	Border  = lipgloss.Color("#2A3850")
)

// Styles groups the styles used by the renderers.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
	Border lipgloss.Style
}

// DefaultStyles returns the dashboard styles.
func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Label:  lipgloss.NewStyle().Padding(0, 1),
		Value:  lipgloss.NewStyle().Bold(true).Padding(0, 1).Align(lipgloss.Right),
		Muted:  lipgloss.NewStyle().Foreground(Muted),
		Error:  lipgloss.NewStyle().Bold(true).Foreground(Danger),
		Border: lipgloss.NewStyle().Foreground(Border),
	}
}

// View renders a title line, the update time and a table of slot captions
// and values in display order. Feeds with status badges get a third column.
func View(s Styles, v dashboard.View) string {
	order := dashboard.SlotOrder(v.Feed)
	withBadges := false
	for _, id := range order {
		if dashboard.SlotBadge(id) != "" {
			withBadges = true
			break
		}
	}

	headers := []string{"Indicador", "Valor"}
	if withBadges {
		headers = append(headers, "Estado")
	}
	rows := make([][]string, 0, len(order))
	for _, id := range order {
		row := []string{dashboard.SlotLabel(id), v.Slot(id)}
		if withBadges {
			row = append(row, dashboard.SlotBadge(id))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return s.Header
			case col == 1:
				return s.Value
			case col == 2:
				return s.Label.Foreground(badgeColor(rows[row][2]))
			default:
				return s.Label
			}
		})

	lines := []string{s.Title.Render(v.Title)}
	if v.Updated != "" {
		lines = append(lines, s.Muted.Render("Actualizado: "+v.Updated))
	}
	lines = append(lines, t.Render())
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func badgeColor(badge string) lipgloss.Color {
	switch badge {
	case "Crítico":
		return Danger
	case "Excelente":
		return Accent
	case "Nuevo":
		return Info
	default:
		return Warning
	}
}

// Dates renders the date options of a feed, newest first.
func Dates(s Styles, name string, opts []feed.DateOption) string {
	if len(opts) == 0 {
		return s.Muted.Render(fmt.Sprintf("%s: no dates", name))
	}

	rows := make([][]string, len(opts))
	for i, o := range opts {
		rows[i] = []string{o.Value, o.Label}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		Headers("Valor", "Fecha").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Label
		})

	return lipgloss.JoinVertical(lipgloss.Left, s.Title.Render(name), t.Render())
}

// Status renders a one-line summary of a feed's cache state.
func Status(s Styles, st dashboard.Status) string {
	var b strings.Builder
	b.WriteString(st.Feed)
	b.WriteString(": ")
	if st.Loaded {
		fmt.Fprintf(&b, "%d rows, updated %s (gen %d)", st.Rows, st.FetchedAt.Local().Format(time.DateTime), st.Generation)
	} else {
		b.WriteString("no data")
	}
	line := s.Muted.Render(b.String())
	if st.LastErr != nil {
		line += " " + s.Error.Render(ErrorMessage(st.LastErr))
	}
	return line
}

// ErrorMessage maps a failure to the short message shown to users.
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, feed.ErrRowNotFound):
		return "No se encontraron datos para la fecha seleccionada"
	case errors.Is(err, feed.ErrEmptyPayload):
		return "La hoja publicada está vacía"
	case errors.Is(err, feed.ErrInsufficientRows):
		return "La hoja publicada no tiene filas de datos"
	case errors.Is(err, feed.ErrFetch):
		return "Error al cargar los datos: " + err.Error()
	default:
		return err.Error()
	}
}
