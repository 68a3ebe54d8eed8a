package tui

import (
	"io"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

type menuItem string

func (m menuItem) Title() string       { return string(m) }
func (m menuItem) Description() string { return "" }
func (m menuItem) FilterValue() string { return string(m) }

// compactDelegate reduces per-item height to 1 line to make list dense
type compactDelegate struct{ list.DefaultDelegate }

func (d compactDelegate) Height() int { return 1 }

// remove extra spacing between rows
func (d compactDelegate) Spacing() int { return 0 }

// Render only the title with a simple selected marker
func (d compactDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	it, ok := listItem.(menuItem)
	if !ok {
		return
	}
	title := it.Title()
	if index == m.Index() {
		_, _ = io.WriteString(w, d.Styles.SelectedTitle.Render("> "+title))
		return
	}
	_, _ = io.WriteString(w, d.Styles.NormalTitle.Render("  "+title))
}

// NewMenu builds a one-line-per-item list. With filter set, typing "/"
// narrows the items by fuzzy match.
func NewMenu(items []string, title string, filter bool) *menuModel {
	lItems := make([]list.Item, 0, len(items))
	for _, it := range items {
		lItems = append(lItems, menuItem(it))
	}

	delegate := compactDelegate{list.NewDefaultDelegate()}
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff79c6")).Bold(true)
	delegate.Styles.NormalTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f8f8f2"))

	height := len(items) + 4
	if height > 16 {
		height = 16
	}
	l := list.New(lItems, delegate, 48, height)
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(filter)
	l.SetShowStatusBar(filter)
	l.SetShowPagination(len(items) > height-4)

	return &menuModel{list: l}
}
