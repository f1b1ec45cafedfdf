package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/borealis-render/borealis/renderer"
	"github.com/borealis-render/borealis/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a still frame and save it as a PNG.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	setup, opts, err := setupFromContext(ctx)
	if err != nil {
		return err
	}
	if opts.FrameCount == 0 {
		opts.FrameCount = 1
	}

	r, err := renderer.NewDefault(setup.scene, setup.camera, setup.globals, setup.probes, pickScheduler(ctx), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(); err != nil {
		return err
	}

	out := ctx.String("out")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = renderer.WritePNG(r, f, opts.FrameW, opts.FrameH); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", out)

	displayFrameStats(r.Stats())
	return nil
}

// Render an interactive view of the scene.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	setup, opts, err := setupFromContext(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewInteractive(setup.scene, setup.camera, setup.globals, setup.probes, pickScheduler(ctx), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	return r.Render()
}

// setupFromContext builds the demo scene and translates cli flags into
// renderer options and frame globals.
func setupFromContext(ctx *cli.Context) (*demoSetup, renderer.Options, error) {
	setup, err := buildDemo(ctx.String("scene"))
	if err != nil {
		return nil, renderer.Options{}, err
	}

	if spec := ctx.String("sky"); spec != "" {
		sky, err := parseSky(spec)
		if err != nil {
			return nil, renderer.Options{}, err
		}
		setup.globals.Sky = sky
	}

	setup.globals.ShadowRays = uint32(ctx.Int("shadow-rays"))
	setup.globals.ProbeRays = uint32(ctx.Int("probe-rays"))
	setup.globals.ProbeCadence = uint32(ctx.Int("probe-cadence"))
	setup.globals.ProbeBlend = float32(ctx.Float64("probe-blend"))
	setup.globals.ProbeBias = float32(ctx.Float64("probe-bias"))

	opts := renderer.Options{
		FrameW:        uint32(ctx.Int("width")),
		FrameH:        uint32(ctx.Int("height")),
		Workers:       ctx.Int("workers"),
		FrameCount:    uint32(ctx.Int("frames")),
		DenoiseDirect: ctx.Bool("denoise-direct"),
	}
	return setup, opts, nil
}

// parseSky parses an "r,g,b" radiance triple.
func parseSky(spec string) (types.Vec3, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 3 {
		return types.Vec3{}, fmt.Errorf("sky radiance must be \"r,g,b\", got %q", spec)
	}
	var out types.Vec3
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return types.Vec3{}, fmt.Errorf("bad sky component %q: %v", p, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func pickScheduler(ctx *cli.Context) renderer.BlockScheduler {
	if ctx.String("scheduler") == "naive" {
		return renderer.NaiveScheduler()
	}
	return renderer.PerfectScheduler()
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Block height", "% of frame", "Render time"})
	for idx, stat := range stats.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", idx),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%s", stat.RenderTime),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", fmt.Sprintf("%s", stats.RenderTime)})
	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())

	buf.Reset()
	table = tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Stage", "Time"})
	for _, st := range stats.Stages {
		table.Append([]string{st.Name, fmt.Sprintf("%s", st.Duration)})
	}
	table.Render()
	logger.Noticef("stage timings\n%s", buf.String())
}
