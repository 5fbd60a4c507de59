package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rxtech-lab/argo-signal/internal/pipeline"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/provider"
)

// Application states.
const (
	StateProviderSelect = iota
	StateSymbolInput
	StateTimeframeSelect
	StateWatchlist
)

// refreshTimeout bounds one watchlist refresh.
const refreshTimeout = 60 * time.Second

// Refresher builds watchlist rows. *pipeline.Pipeline implements it.
type Refresher interface {
	Watchlist(ctx context.Context, req pipeline.WatchlistRequest) []pipeline.WatchlistRow
}

// RefresherFactory creates the refresher for the chosen provider.
type RefresherFactory func(providerType provider.ProviderType) (Refresher, error)

// Model is the main Bubble Tea model for the watchlist CLI.
type Model struct {
	state         int
	providerList  list.Model
	symbolInput   textinput.Model
	timeframeList list.Model
	dataTable     table.Model
	rows          []pipeline.WatchlistRow
	symbols       []string
	timeframe     types.Timeframe
	refreshedAt   time.Time
	refreshing    bool
	err           error
	width         int
	height        int

	factory   RefresherFactory
	refresher Refresher
	interval  time.Duration
	notify    bool
	// generation invalidates ticks and results of a left watch session
	generation int
}

// NewModel creates a new Model with initial state.
func NewModel(factory RefresherFactory, symbols []string, timeframe types.Timeframe, interval time.Duration, notify bool) Model {
	return Model{
		state:         StateProviderSelect,
		providerList:  NewProviderList(),
		symbolInput:   NewSymbolInput(symbols),
		timeframeList: NewTimeframeList(timeframe),
		dataTable:     NewWatchlistTable(),
		timeframe:     timeframe,
		factory:       factory,
		interval:      interval,
		notify:        notify,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			// Only quit on 'q' if not in text input mode
			if m.state != StateSymbolInput {
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.providerList.SetSize(msg.Width, msg.Height-4)
		m.timeframeList.SetSize(msg.Width, msg.Height-4)
		m.dataTable.SetWidth(msg.Width)
		m.dataTable.SetHeight(msg.Height - 8)

		return m, nil

	case WatchlistMsg:
		if msg.generation != m.generation {
			return m, nil
		}

		m.rows = msg.Rows
		m.refreshedAt = msg.RefreshedAt
		m.refreshing = false
		m.err = nil
		m.dataTable = UpdateTableRows(m.dataTable, m.rows)

		return m, m.scheduleRefresh()

	case RefreshErrorMsg:
		m.err = msg.Err
		m.refreshing = false

		return m, nil

	case refreshTickMsg:
		if msg.generation != m.generation || m.state != StateWatchlist {
			return m, nil
		}

		m.refreshing = true

		return m, m.refresh()
	}

	// Delegate to state-specific update
	switch m.state {
	case StateProviderSelect:
		return m.updateProviderSelect(msg)
	case StateSymbolInput:
		return m.updateSymbolInput(msg)
	case StateTimeframeSelect:
		return m.updateTimeframeSelect(msg)
	case StateWatchlist:
		return m.updateWatchlist(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateSymbolInput:
		m.state = StateProviderSelect
		m.symbolInput.Blur()
	case StateTimeframeSelect:
		m.state = StateSymbolInput
		m.symbolInput.Focus()

		return m, textinput.Blink
	case StateWatchlist:
		// Leave the session; pending ticks and results are dropped
		m.generation++
		m.rows = nil
		m.err = nil
		m.refreshing = false
		m.dataTable = UpdateTableRows(m.dataTable, nil)
		m.state = StateTimeframeSelect
	}

	return m, nil
}

func (m Model) updateProviderSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.providerList.SelectedItem().(listItem); ok {
			refresher, err := m.factory(provider.ProviderType(item.name))
			if err != nil {
				m.err = err

				return m, nil
			}

			m.refresher = refresher
			m.err = nil
			m.state = StateSymbolInput
			m.symbolInput.Focus()

			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.providerList, cmd = m.providerList.Update(msg)

	return m, cmd
}

func (m Model) updateSymbolInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		symbols := ParseSymbols(m.symbolInput.Value())
		if len(symbols) > 0 {
			m.symbols = symbols
			m.state = StateTimeframeSelect
			m.symbolInput.Blur()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.symbolInput, cmd = m.symbolInput.Update(msg)

	return m, cmd
}

func (m Model) updateTimeframeSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.timeframeList.SelectedItem().(listItem); ok {
			m.timeframe = types.Timeframe(item.name)
			m.state = StateWatchlist
			m.refreshing = true
			m.generation++

			return m, m.refresh()
		}
	}

	var cmd tea.Cmd
	m.timeframeList, cmd = m.timeframeList.Update(msg)

	return m, cmd
}

func (m Model) updateWatchlist(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "r" && !m.refreshing {
		m.refreshing = true

		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.dataTable, cmd = m.dataTable.Update(msg)

	return m, cmd
}

// refresh returns a command that runs one watchlist pass.
func (m Model) refresh() tea.Cmd {
	refresher := m.refresher
	req := pipeline.WatchlistRequest{
		Symbols:   m.symbols,
		Timeframe: m.timeframe,
		Notify:    m.notify,
	}
	generation := m.generation

	return func() tea.Msg {
		if refresher == nil {
			return RefreshErrorMsg{Err: fmt.Errorf("no data provider selected")}
		}

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		return WatchlistMsg{
			Rows:        refresher.Watchlist(ctx, req),
			RefreshedAt: time.Now(),
			generation:  generation,
		}
	}
}

func (m Model) scheduleRefresh() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}

	generation := m.generation

	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return refreshTickMsg{generation: generation}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateProviderSelect:
		s.WriteString(TitleStyle.Render("Argo Signal - Watchlist"))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		s.WriteString(m.providerList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, q to quit"))

	case StateSymbolInput:
		s.WriteString(TitleStyle.Render("Enter Symbols"))
		s.WriteString("\n\n")
		s.WriteString("Enter comma-separated symbols (e.g., BTC,ETH,SOL):\n\n")
		s.WriteString(m.symbolInput.View())
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("Press Enter to confirm, Esc to go back"))

	case StateTimeframeSelect:
		s.WriteString(TitleStyle.Render("Select Timeframe"))
		s.WriteString("\n\n")
		s.WriteString(m.timeframeList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, Esc to go back"))

	case StateWatchlist:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Watchlist (%s)", m.timeframe)))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		if len(m.rows) == 0 {
			s.WriteString("Loading candles...\n")
		} else {
			s.WriteString(m.dataTable.View())
			s.WriteString("\n\n")

			labels := make([]string, 0, len(m.rows))
			for _, row := range m.rows {
				labels = append(labels, row.Symbol+" "+SignalStyle(row).Render(row.Label()))
			}

			s.WriteString(strings.Join(labels, "  "))
			s.WriteString("\n")
		}

		status := "idle"
		if m.refreshing {
			status = "refreshing"
		} else if !m.refreshedAt.IsZero() {
			status = "updated " + m.refreshedAt.Format("15:04:05")
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(fmt.Sprintf("q: quit | r: refresh | Esc: back | %s", status)))
	}

	return s.String()
}
