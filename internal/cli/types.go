package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/shadergraph/pkg/decl"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
	"github.com/matzehuels/shadergraph/pkg/registry"
)

// typesCommand creates the types command for inspecting the registry.
func (c *CLI) typesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "Inspect the node type registry",
	}

	cmd.AddCommand(c.typesListCommand())
	cmd.AddCommand(c.typesShowCommand())
	cmd.AddCommand(c.typesBrowseCommand())

	return cmd
}

func (c *CLI) typesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered node types",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.registry()
			if err != nil {
				return err
			}
			fmt.Println(typesTable(reg))
			printDetail("%d types · registry %s", len(reg.Names()), registry.Hash(reg)[:12])
			return nil
		},
	}
}

func (c *CLI) typesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [type]",
		Short: "Print the declaration of a node type",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: c.completeTypeNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.registry()
			if err != nil {
				return err
			}
			def, ok := reg.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown node type %q", args[0])
			}
			fmt.Print(decl.StringifyNodeDefinition(*def))
			return nil
		},
	}
}

func (c *CLI) typesBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse node types interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.registry()
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(NewTypeListModel(reg), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(TypeListModel); ok && m.Selected != nil {
				fmt.Print(decl.StringifyNodeDefinition(*m.Selected))
			}
			return nil
		},
	}
}

// typesTable renders the registry as a table of names and port signatures.
func typesTable(reg nodetype.Registry) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	var rows [][]string
	for _, name := range reg.Names() {
		def, ok := reg.Lookup(name)
		if !ok {
			continue
		}
		rows = append(rows, []string{name, signature(def.Inputs), signature(def.Outputs), defaults(def)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("Type", "Inputs", "Outputs", "Defines").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return cellStyle.Foreground(colorAccent)
			default:
				return cellStyle
			}
		})
	return t.Render()
}

// signature formats ports as "type name, ...".
func signature(ports []nodetype.Port) string {
	if len(ports) == 0 {
		return "—"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = p.Type + " " + p.Name
	}
	return strings.Join(parts, ", ")
}

func defaults(def *nodetype.Definition) string {
	if len(def.Defaults) == 0 {
		return "—"
	}
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(def.Defaults)) {
		parts = append(parts, k+"="+def.Defaults[k])
	}
	return strings.Join(parts, " ")
}
