package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docblocks/pkg/editor"
)

var (
	editComponent string
	editValuePath string
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a component's props interactively",
	Long: `Prompts for every field of the component schema, starting from the value in
--value (or the schema defaults), and prints the edited props as JSON. When
DOCBLOCKS_GRAPHQL_URL is set, relationship ids are resolved to their records.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		block, ok := defs.Components.Get(editComponent)
		if !ok {
			return fmt.Errorf("unknown component %q", editComponent)
		}

		var value any
		if editValuePath != "" {
			in, err := openInput(editValuePath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer in.Close()
			dec := json.NewDecoder(in)
			dec.UseNumber()
			if err := dec.Decode(&value); err != nil {
				return fmt.Errorf("decode value: %w", err)
			}
		}

		options := []editor.Option{editor.WithLogger(logger)}
		if cfg.GraphQLURL != "" {
			fetcher, err := newFetcher()
			if err != nil {
				return err
			}
			options = append(options, editor.WithRelationshipLookup(fetcher.Fetch))
		}

		edited, err := editor.New(options...).Edit(cmd.Context(), block.Schema, value)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(edited)
	},
}

func init() {
	editCmd.Flags().StringVar(&editComponent, "component", "", "component name")
	editCmd.Flags().StringVar(&editValuePath, "value", "", "initial props JSON file (- for stdin)")
	_ = editCmd.MarkFlagRequired("component")
}
