package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/internal/patterns"
)

func newPatternsCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns [path]",
		Short: "Survey project structure, naming conventions, and test gaps",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args)
			if err != nil {
				return err
			}
			report, err := patterns.Detect(root, app.log)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	return cmd
}
