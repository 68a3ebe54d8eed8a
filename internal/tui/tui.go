package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user leaves a menu without choosing.
var ErrCancelled = errors.New("selection cancelled")

type menuModel struct {
	list      list.Model
	choice    string
	cancelled bool
}

func (m *menuModel) Init() tea.Cmd { return nil }

func (m *menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		// while typing a filter, keys belong to the filter input
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if itm, ok := m.list.SelectedItem().(menuItem); ok {
				m.choice = string(itm)
				return m, tea.Quit
			}
			return m, nil
		case "esc":
			if m.list.FilterState() == list.FilterApplied {
				m.list.ResetFilter()
				return m, nil
			}
			m.cancelled = true
			return m, tea.Quit
		case "q", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *menuModel) View() string {
	if m.choice != "" {
		return fmt.Sprintf("Selected: %s\n", m.choice)
	}
	if m.cancelled {
		return ""
	}
	return m.list.View()
}

// result reports the outcome once the program has exited.
func (m *menuModel) result() (string, error) {
	if m.cancelled || m.choice == "" {
		return "", ErrCancelled
	}
	return m.choice, nil
}

// ShowMenu blocks and returns the selected item.
func ShowMenu(items []string, title string, filter bool, opts ...tea.ProgramOption) (string, error) {
	m := NewMenu(items, title, filter)
	p := tea.NewProgram(m, opts...)
	if _, err := p.Run(); err != nil {
		return "", err
	}
	return m.result()
}

// PickHost asks the user to choose one of hosts.
func PickHost(hosts []string, opts ...tea.ProgramOption) (string, error) {
	if len(hosts) == 0 {
		return "", errors.New("no hosts to choose from")
	}
	host, err := ShowMenu(hosts, "Select host", true, opts...)
	if err != nil {
		return "", fmt.Errorf("pick host: %w", err)
	}
	return host, nil
}
