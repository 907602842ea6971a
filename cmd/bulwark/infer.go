package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/internal/infer"
	"github.com/bulwarkhq/bulwark/internal/observability"
)

func newInferCmd(app *appContext) *cobra.Command {
	var minConfidence float64

	cmd := &cobra.Command{
		Use:   "infer [path]",
		Short: "Propose boundary rules from the observed import graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args)
			if err != nil {
				return err
			}

			ctx, span := observability.StartSpan(cmd.Context(), "bulwark.infer")
			defer span.End()

			graph, err := buildGraph(ctx, app, root)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("min-confidence") && app.cfg.Infer.MinConfidence > 0 {
				minConfidence = app.cfg.Infer.MinConfidence
			}

			engine := infer.NewEngine(minConfidence, app.log)
			proposals := engine.Infer(graph)
			observability.RecordInferenceResult(span, len(proposals), len(proposals), minConfidence)

			fmt.Print(infer.RenderYAML(proposals, minConfidence))
			return nil
		},
	}
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", infer.DefaultMinConfidence,
		"Discard proposed rules below this confidence")

	return cmd
}
