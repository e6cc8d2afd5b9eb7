package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shadergraph/pkg/decl"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
	"github.com/matzehuels/shadergraph/pkg/registry"
)

// declCommand creates the decl command for working with declaration files.
func (c *CLI) declCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decl",
		Short: "Parse and format declaration files",
	}

	cmd.AddCommand(c.declParseCommand())
	cmd.AddCommand(c.declFmtCommand())

	return cmd
}

func (c *CLI) declParseCommand() *cobra.Command {
	var instance bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a node type (or instance) declaration and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.parseDecl(args[0], instance)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&instance, "instance", false, "parse a node instance configuration instead of a type")
	return cmd
}

func (c *CLI) declFmtCommand() *cobra.Command {
	var instance, write bool

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Print a declaration file in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.parseDecl(args[0], instance)
			if err != nil {
				return err
			}
			text := formatDecl(v)
			if !write {
				fmt.Print(text)
				return nil
			}
			if err := writeFile(args[0], []byte(text)); err != nil {
				return err
			}
			printSuccess("Formatted %s", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&instance, "instance", false, "format a node instance configuration instead of a type")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file")
	return cmd
}

// parseDecl reads path as a node type definition, named after the file, or
// as a node instance. The --strict flag selects strict parsing.
func (c *CLI) parseDecl(path string, instance bool) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	text := string(data)
	strict := c.config.Registry.Strict

	if instance {
		if !strict {
			return decl.ParseNodeInstance(text), nil
		}
		inst, err := decl.ParseNodeInstanceStrict(text)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return inst, nil
	}

	def := decl.ParseNodeDefinition(text)
	if strict {
		if def, err = decl.ParseNodeDefinitionStrict(text); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	def.Name = basePath(filepath.Base(path))
	if filepath.Ext(path) != registry.Ext {
		c.Logger.Debug("declaration file without .node extension", "file", path)
	}
	return def, nil
}

func formatDecl(v any) string {
	switch v := v.(type) {
	case decl.Instance:
		if s := decl.StringifyNodeInstance(v); s != "" {
			return s + "\n"
		}
		return ""
	case nodetype.Definition:
		return decl.StringifyNodeDefinition(v)
	}
	return ""
}
