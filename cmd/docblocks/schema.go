package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docblocks/pkg/schema"
)

var (
	schemaComponent string
	schemaFormat    string
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the OpenAPI schema of a component's stored props",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		block, ok := defs.Components.Get(schemaComponent)
		if !ok {
			return fmt.Errorf("unknown component %q", schemaComponent)
		}
		raw, err := json.Marshal(schema.ToOpenAPI(block.Schema))
		if err != nil {
			return err
		}

		switch schemaFormat {
		case "json":
			var pretty any
			if err := json.Unmarshal(raw, &pretty); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(pretty)
		case "yaml":
			var node yaml.Node
			if err := yaml.Unmarshal(raw, &node); err != nil {
				return err
			}
			plainStyle(&node)
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(&node); err != nil {
				return err
			}
			return enc.Close()
		default:
			return fmt.Errorf("unknown format %q (must be yaml or json)", schemaFormat)
		}
	},
}

func init() {
	schemaCmd.Flags().StringVar(&schemaComponent, "component", "", "component name")
	schemaCmd.Flags().StringVar(&schemaFormat, "format", "yaml", "output format (yaml or json)")
	_ = schemaCmd.MarkFlagRequired("component")
}

// plainStyle drops the flow style inherited from the JSON input so the
// document encodes as block YAML.
func plainStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		plainStyle(c)
	}
}
