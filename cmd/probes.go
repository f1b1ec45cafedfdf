package cmd

import (
	"bytes"
	"fmt"

	"github.com/borealis-render/borealis/renderer"
	"github.com/borealis-render/borealis/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ProbeStats warms the probe grid over a number of frames and prints a
// per-layer summary, useful for tuning grid placement and cadence before
// committing to long renders.
func ProbeStats(ctx *cli.Context) error {
	setupLogging(ctx)

	setup, opts, err := setupFromContext(ctx)
	if err != nil {
		return err
	}
	if opts.FrameCount == 0 {
		opts.FrameCount = 32
	}

	r, err := renderer.NewDefault(setup.scene, setup.camera, setup.globals, setup.probes, pickScheduler(ctx), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(); err != nil {
		return err
	}

	grid := setup.probes
	cfg := grid.Config()
	up := types.XYZ(0, 1, 0)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Layer (y)", "Probes", "Converged", "Mean irradiance"})

	layerSize := cfg.Extent[0] * cfg.Extent[2]
	for y := 0; y < cfg.Extent[1]; y++ {
		var converged int
		var mean types.Vec3
		for z := 0; z < cfg.Extent[2]; z++ {
			for x := 0; x < cfg.Extent[0]; x++ {
				index := grid.Index(x, y, z)
				if grid.Probe(index).Coeff[0] != (types.Vec3{}) {
					converged++
				}
				mean = mean.Add(grid.Irradiance(index, up))
			}
		}
		mean = mean.Mul(1 / float32(layerSize))
		table.Append([]string{
			fmt.Sprintf("%d", y),
			fmt.Sprintf("%d", layerSize),
			fmt.Sprintf("%d %%", 100*converged/layerSize),
			fmt.Sprintf("(%.3f, %.3f, %.3f)", mean[0], mean[1], mean[2]),
		})
	}
	table.SetFooter([]string{"", fmt.Sprintf("%d", grid.Count()), "", ""})
	table.Render()

	logger.Noticef("probe grid after %d frames: origin=%v cell=%v extent=%v\n%s",
		opts.FrameCount, cfg.Origin, cfg.CellSize, cfg.Extent, buf.String())
	return nil
}
