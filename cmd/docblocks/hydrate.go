package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docblocks/pkg/document"
	"github.com/goliatone/go-docblocks/pkg/orchestrator"
	"github.com/goliatone/go-docblocks/pkg/render"
)

var (
	documentPath string
	asHTML       bool
	templateDir  string
)

var hydrateCmd = &cobra.Command{
	Use:   "hydrate",
	Short: "Attach relationship data to a stored document",
	Long: `Reads a stored document (a JSON array of nodes, or an object with a
"document" array) and prints it with relationship data attached, or rendered
as HTML with --html.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := openInput(documentPath, cmd.InOrStdin())
		if err != nil {
			return err
		}
		defer in.Close()
		nodes, err := document.Decode(in)
		if err != nil {
			return err
		}

		fetcher, err := newFetcher()
		if err != nil {
			return err
		}
		o := orchestrator.New(
			orchestrator.WithRegistry(defs),
			orchestrator.WithFetcher(fetcher),
			orchestrator.WithLogger(logger),
			orchestrator.WithRenderOptions(render.WithBaseDir(templateDir)),
		)
		req := orchestrator.Request{Document: nodes}

		if asHTML {
			html, err := o.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(html))
			return err
		}

		hydrated, err := o.Hydrate(cmd.Context(), req)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(hydrated)
	},
}

func init() {
	hydrateCmd.Flags().StringVar(&documentPath, "document", "-", "document JSON file (- for stdin)")
	hydrateCmd.Flags().BoolVar(&asHTML, "html", false, "render the hydrated document as HTML")
	hydrateCmd.Flags().StringVar(&templateDir, "templates", "", "directory of templates overriding the built-in ones")
}
