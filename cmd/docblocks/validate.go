package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docblocks/pkg/document"
	"github.com/goliatone/go-docblocks/pkg/orchestrator"
)

var validateDocumentPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check stored component props against their schemas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := openInput(validateDocumentPath, cmd.InOrStdin())
		if err != nil {
			return err
		}
		defer in.Close()
		nodes, err := document.Decode(in)
		if err != nil {
			return err
		}

		o := orchestrator.New(orchestrator.WithRegistry(defs), orchestrator.WithLogger(logger))
		result, err := o.Validate(cmd.Context(), orchestrator.Request{Document: nodes})
		if err != nil {
			return err
		}
		if !result.Valid {
			for _, issue := range result.Issues {
				fmt.Fprintln(cmd.OutOrStdout(), issue.String())
			}
			return fmt.Errorf("document is invalid: %d issue(s)", len(result.Issues))
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "document is valid")
		return err
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateDocumentPath, "document", "-", "document JSON file (- for stdin)")
}
