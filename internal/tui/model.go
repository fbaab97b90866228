// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sells-group/plant-dashboard/internal/dashboard"
	"github.com/sells-group/plant-dashboard/internal/feed"
	"github.com/sells-group/plant-dashboard/internal/render"
)

// Backend is the dataset cache the dashboard reads from.
type Backend interface {
	Feeds() []string
	Refresh(ctx context.Context) dashboard.RefreshResult
	View(name string, sel feed.Selector) (dashboard.View, error)
	DateOptions(name string) ([]feed.DateOption, error)
	Status(name string) (dashboard.Status, error)
}

const listWidth = 28

// refreshMsg carries the outcome of a combined refresh.
type refreshMsg struct {
	result dashboard.RefreshResult
}

// dateItem adapts feed.DateOption to list.Item
type dateItem struct {
	opt feed.DateOption
}

func (i dateItem) Title() string       { return i.opt.Label }
func (i dateItem) Description() string { return i.opt.Value }
func (i dateItem) FilterValue() string { return i.opt.Value + " " + i.opt.Label }

// Model is the root bubbletea model. The last view built for each feed stays
// on screen when a later refresh or selection fails; the failure is shown in
// the status line instead.
type Model struct {
	ctx     context.Context
	backend Backend
	styles  render.Styles

	feeds  []string
	active int

	dates   list.Model
	spinner spinner.Model
	loading bool

	views    map[string]dashboard.View
	selected map[string]feed.Selector
	status   string
}

// New creates the dashboard model. ctx bounds every refresh it starts.
func New(ctx context.Context, backend Backend) Model {
	styles := render.DefaultStyles()

	l := list.New(nil, list.NewDefaultDelegate(), listWidth, 0)
	l.Title = "Fechas"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = styles.Title

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(render.Accent)

	return Model{
		ctx:      ctx,
		backend:  backend,
		styles:   styles,
		feeds:    backend.Feeds(),
		dates:    l,
		spinner:  s,
		loading:  true,
		views:    make(map[string]dashboard.View),
		selected: make(map[string]feed.Selector),
	}
}

// Init starts the first refresh.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh())
}

func (m Model) refresh() tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		return refreshMsg{result: backend.Refresh(ctx)}
	}
}

// Feed returns the name of the feed on screen.
func (m Model) Feed() string {
	if len(m.feeds) == 0 {
		return ""
	}
	return m.feeds[m.active]
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.dates.SetSize(listWidth, max(msg.Height-6, 4))
		return m, nil

	case tea.KeyMsg:
		if m.dates.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.refresh())
		case "tab":
			if len(m.feeds) > 1 {
				m.active = (m.active + 1) % len(m.feeds)
				m.status = ""
				cmd = m.reload()
			}
			return m, cmd
		case "enter":
			if item, ok := m.dates.SelectedItem().(dateItem); ok {
				m.selected[m.Feed()] = feed.Selector(item.opt.Value)
				m.status = ""
				m.rebuild()
			}
			return m, nil
		}

	case refreshMsg:
		m.loading = false
		m.status = ""
		cmd = m.reload()
		if s := failureSummary(msg.result); s != "" {
			m.status = s
		}
		return m, cmd

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	m.dates, cmd = m.dates.Update(msg)
	return m, cmd
}

// reload refreshes the date list and view of the active feed from the cache.
func (m *Model) reload() tea.Cmd {
	name := m.Feed()
	opts, err := m.backend.DateOptions(name)
	if err != nil {
		m.status = render.ErrorMessage(err)
		return nil
	}

	items := make([]list.Item, len(opts))
	cursor := 0
	for i, o := range opts {
		items[i] = dateItem{opt: o}
		if feed.Selector(o.Value) == m.selected[name] {
			cursor = i
		}
	}
	cmd := m.dates.SetItems(items)
	m.dates.Select(cursor)
	m.rebuild()
	return cmd
}

// rebuild builds the view for the active feed and selection.
func (m *Model) rebuild() {
	name := m.Feed()
	sel, ok := m.selected[name]
	if !ok {
		sel = feed.Latest
	}
	v, err := m.backend.View(name, sel)
	if err != nil {
		m.status = render.ErrorMessage(err)
		return
	}
	m.views[name] = v
}

func failureSummary(res dashboard.RefreshResult) string {
	if len(res.Errors) == 0 {
		return ""
	}
	name := slices.Sorted(maps.Keys(res.Errors))[0]
	msg := fmt.Sprintf("%s: %s", name, render.ErrorMessage(res.Errors[name]))
	if n := len(res.Errors); n > 1 {
		msg += fmt.Sprintf(" (+%d)", n-1)
	}
	return msg
}

// View renders the dashboard.
func (m Model) View() string {
	tabs := make([]string, len(m.feeds))
	for i, name := range m.feeds {
		if i == m.active {
			tabs[i] = m.styles.Title.Render("[" + name + "]")
		} else {
			tabs[i] = m.styles.Muted.Render(" " + name + " ")
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	body := m.styles.Muted.Render("Cargando datos...")
	if v, ok := m.views[m.Feed()]; ok {
		body = render.View(m.styles, v)
	}
	content := lipgloss.JoinHorizontal(lipgloss.Top, m.dates.View(), "  ", body)

	footer := ""
	if st, err := m.backend.Status(m.Feed()); err == nil {
		// Errors go to the status line below.
		st.LastErr = nil
		footer = render.Status(m.styles, st)
	}
	if m.loading {
		footer = m.spinner.View() + " " + footer
	}
	if m.status != "" {
		footer += "\n" + m.styles.Error.Render(m.status)
	}
	help := m.styles.Muted.Render("r actualizar · tab cambiar hoja · enter seleccionar · / filtrar · q salir")

	return lipgloss.JoinVertical(lipgloss.Left, header, "", content, "", footer, help)
}
