package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/rxtech-lab/argo-signal/internal/pipeline"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
)

// listItem implements list.Item interface for provider and timeframe lists.
type listItem struct {
	name        string
	description string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

func newList(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewProviderList creates a new list for provider selection, default first.
func NewProviderList() list.Model {
	infos := marketdata.ListProviderInfo()
	items := make([]list.Item, 0, len(infos))

	for _, info := range infos {
		item := listItem{name: info.Name, description: info.Description}
		if info.Default {
			items = append([]list.Item{item}, items...)
		} else {
			items = append(items, item)
		}
	}

	return newList("Select Data Provider", items)
}

var timeframeDescriptions = map[types.Timeframe]string{
	types.Timeframe1m:  "1 minute candles",
	types.Timeframe5m:  "5 minute candles",
	types.Timeframe15m: "15 minute candles",
	types.Timeframe1h:  "1 hour candles",
	types.Timeframe4h:  "4 hour candles",
	types.Timeframe1d:  "1 day candles",
}

// NewTimeframeList creates a new list for timeframe selection with selected preselected.
func NewTimeframeList(selected types.Timeframe) list.Model {
	timeframes := types.AllTimeframes()
	items := make([]list.Item, 0, len(timeframes))
	index := 0

	for i, tf := range timeframes {
		items = append(items, listItem{name: string(tf), description: timeframeDescriptions[tf]})
		if tf == selected {
			index = i
		}
	}

	l := newList("Select Timeframe", items)
	l.Select(index)

	return l
}

// NewSymbolInput creates a new text input for symbol entry prefilled with symbols.
func NewSymbolInput(symbols []string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "BTC,ETH,XRP,SOL,DOGE"
	ti.SetValue(strings.Join(symbols, ","))
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 50
	ti.Prompt = "> "

	return ti
}

// ParseSymbols parses comma-separated symbols into a slice.
func ParseSymbols(input string) []string {
	parts := strings.Split(input, ",")
	symbols := make([]string, 0, len(parts))

	for _, p := range parts {
		s := strings.TrimSpace(strings.ToUpper(p))
		if s != "" {
			symbols = append(symbols, s)
		}
	}

	return symbols
}

// NewWatchlistTable creates a new table for the watchlist rows.
func NewWatchlistTable() table.Model {
	columns := []table.Column{
		{Title: "Symbol", Width: 8},
		{Title: "Price", Width: 14},
		{Title: "Change", Width: 12},
		{Title: "Signal", Width: 12},
		{Title: "Reason", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// UpdateTableRows replaces the table rows with the watchlist, in watchlist order.
func UpdateTableRows(t table.Model, rows []pipeline.WatchlistRow) table.Model {
	out := make([]table.Row, 0, len(rows))

	for _, row := range rows {
		price, change := "-", "-"
		if row.Available {
			price = fmt.Sprintf("%.2f", row.Price)
			change = FormatChange(row.ChangePct)
		}

		out = append(out, table.Row{
			row.Symbol,
			price,
			change,
			row.Label(),
			row.Reason,
		})
	}

	t.SetRows(out)

	return t
}
