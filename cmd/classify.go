package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"vision-classifier/internal/domain/entity"
)

type classifyOutput struct {
	File       string              `json:"file"`
	Label      string              `json:"label,omitempty"`
	Index      int                 `json:"index"`
	Confidence float64             `json:"confidence"`
	Top        []entity.Prediction `json:"top,omitempty"`
	Error      string              `json:"error,omitempty"`
}

func classifyCmd() *cli.Command {
	var top int

	return &cli.Command{
		Name:      "classify",
		Usage:     "Classify image files and print JSON results",
		ArgsUsage: "<image> [image...]",
		Flags: append(commonFlags(),
			&cli.IntFlag{
				Name:        "top",
				Usage:       "number of most probable classes to print",
				Value:       5,
				Destination: &top,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				return errors.New("classify: at least one image path is required")
			}

			ctx, rt, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")

			var failed int
			for _, path := range files {
				out := classifyOutput{File: path}
				res, err := classifyFile(ctx, rt, path)
				if err != nil {
					failed++
					out.Error = err.Error()
				} else {
					out.Label = res.Label
					out.Index = res.Index
					out.Confidence = res.Confidence
					out.Top = res.Distribution.Top(top)
				}
				if err := enc.Encode(out); err != nil {
					return err
				}
			}

			if failed > 0 {
				return fmt.Errorf("classify: %d of %d images failed", failed, len(files))
			}
			return nil
		},
	}
}

func classifyFile(ctx context.Context, rt *deps, path string) (*entity.ClassificationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return rt.c.ClassificationService.Classify(ctx, data)
}
