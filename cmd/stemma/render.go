package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"stemma/internal/canvas"
	"stemma/internal/codec"
	"stemma/internal/domain"
	"stemma/internal/geom"
	"stemma/internal/loader"
	"stemma/internal/logging"
	"stemma/internal/metrics"
	"stemma/internal/service"
)

func renderCmd(opts *options) *cobra.Command {
	var (
		seed       string
		layoutPath string
		out        string
		width      float64
		height     float64
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one frame of a seed or layout file",
		Long: "Render one frame of a family seed or an exported layout without starting\n" +
			"the server. Prints the frame digest, or the frame itself with --json.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadConfig()
			if err != nil {
				return err
			}
			style, err := cfg.RenderStyle()
			if err != nil {
				return err
			}
			log, err := logging.New("error", cfg.Log.Format)
			if err != nil {
				return err
			}
			defer log.Sync()

			engine := canvas.New(cfg.Params(), style)
			svc := service.NewCanvasService(engine, nil, service.NewEventBus(), metrics.NewCollector("stemma"), log.Logger, service.Options{TickInterval: -1})

			ctx, cancel := context.WithCancel(cmd.Context())
			defer func() {
				cancel()
				<-svc.Done()
			}()
			go svc.Run(ctx)

			if err := svc.Resize(ctx, geom.Rectangle{Width: width, Height: height}); err != nil {
				return err
			}
			if err := populate(ctx, svc, seed, layoutPath); err != nil {
				return err
			}

			result, err := svc.Frame(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(result.Frame)
			}

			status, err := svc.Status(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s %s\n", brand.Sprint("frame"), result.Digest)
			fmt.Fprintf(w, "  %s %d nodes, %d edges, %d primitives\n",
				subtle.Sprint("model"), status.Nodes, status.Edges, len(result.Frame.Primitives))
			return nil
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "Family YAML to import")
	cmd.Flags().StringVar(&layoutPath, "layout", "", "Layout file (.json or .yaml) to load")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	cmd.Flags().Float64Var(&width, "width", defaultBounds.Width, "Surface width")
	cmd.Flags().Float64Var(&height, "height", defaultBounds.Height, "Surface height")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the frame as JSON")
	cmd.MarkFlagsOneRequired("seed", "layout")
	cmd.MarkFlagsMutuallyExclusive("seed", "layout")

	return cmd
}

// populate fills the canvas from a family seed or a layout file
func populate(ctx context.Context, svc *service.CanvasService, seed, layoutPath string) error {
	if seed != "" {
		family, err := loader.LoadYAML(seed)
		if err != nil {
			return err
		}
		_, err = svc.ImportFamily(ctx, family)
		return err
	}

	layout, err := readLayout(layoutPath)
	if err != nil {
		return err
	}
	return svc.Load(ctx, layout)
}

func readLayout(path string) (*domain.Layout, error) {
	c, err := codec.ForFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return c.Parse(f)
}
