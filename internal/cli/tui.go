package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/shadergraph/pkg/decl"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorText)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorFaint)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFaint).
			Padding(0, 1).
			MarginLeft(2)
)

// =============================================================================
// TypeListModel - Interactive node type browser
// =============================================================================

// TypeListModel is the bubbletea model for browsing the node type registry.
// The highlighted type's declaration is shown next to the list.
type TypeListModel struct {
	Types    []*nodetype.Definition
	Cursor   int
	Selected *nodetype.Definition
	Height   int
	Offset   int
}

// NewTypeListModel creates a browser over the registry's types in name order.
func NewTypeListModel(reg nodetype.Registry) TypeListModel {
	names := reg.Names()
	defs := make([]*nodetype.Definition, 0, len(names))
	for _, name := range names {
		if d, ok := reg.Lookup(name); ok {
			defs = append(defs, d)
		}
	}
	return TypeListModel{Types: defs, Height: 15}
}

func (m TypeListModel) Init() tea.Cmd {
	return nil
}

func (m TypeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Types)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Types) == 0 {
				return m, nil
			}
			m.Selected = m.Types[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m TypeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Node Types"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.Types) == 0 {
		b.WriteString(listDimStyle.Render("  (registry is empty)"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Types))
	var list strings.Builder
	for i := m.Offset; i < end; i++ {
		d := m.Types[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		generic := ""
		if d.IsGeneric() {
			generic = " " + listDimStyle.Render("generic")
		}
		line := fmt.Sprintf("%s%-14s", cursor, d.Name)
		if i == m.Cursor {
			list.WriteString(listSelectedStyle.Render(line))
		} else {
			list.WriteString(listNormalStyle.Render(line))
		}
		list.WriteString(generic + "\n")
	}

	detail := detailStyle.Render(strings.TrimRight(decl.StringifyNodeDefinition(*m.Types[m.Cursor]), "\n"))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), detail))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Types))))

	return b.String()
}
