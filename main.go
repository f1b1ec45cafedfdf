package main

import (
	"os"

	"github.com/borealis-render/borealis/cmd"
	"github.com/urfave/cli"
)

func renderFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "scene",
			Value: "cornell",
			Usage: "demo scene to render (cornell, outdoor)",
		},
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "row-block workers (0 = one per logical CPU)",
		},
		cli.IntFlag{
			Name:  "shadow-rays",
			Value: 4,
			Usage: "jittered shadow rays per light per pixel",
		},
		cli.IntFlag{
			Name:  "probe-rays",
			Value: 64,
			Usage: "radiance rays per probe per update cycle",
		},
		cli.IntFlag{
			Name:  "probe-cadence",
			Value: 4,
			Usage: "update 1/N of the probe grid per frame",
		},
		cli.Float64Flag{
			Name:  "probe-blend",
			Value: 0.02,
			Usage: "temporal blend factor for probe updates",
		},
		cli.Float64Flag{
			Name:  "probe-bias",
			Value: 0.1,
			Usage: "normal-alignment bias for probe gathering",
		},
		cli.BoolFlag{
			Name:  "denoise-direct",
			Usage: "also run the edge-aware filter over direct lighting",
		},
		cli.StringFlag{
			Name:  "scheduler",
			Value: "perfect",
			Usage: "row-block scheduler (naive, perfect)",
		},
		cli.StringFlag{
			Name:  "sky",
			Usage: "override sky radiance as \"r,g,b\"",
		},
	}
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "borealis"
	app.Usage = "render scenes with probe-based global illumination"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render single frame",
					Description: `
Render one or more frames of a demo scene and save the last one as a PNG.
Rendering extra warm-up frames lets the irradiance probes converge before
the saved frame.`,
					Flags: append(renderFlags(),
						cli.IntFlag{
							Name:  "frames",
							Value: 16,
							Usage: "frames to render before saving (probe warm-up)",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					),
					Action: cmd.RenderFrame,
				},
				{
					Name:        "interactive",
					Usage:       "render interactive view of the scene",
					Description: `Open a window and re-render continuously while accumulating probe history.`,
					Flags: append(renderFlags(),
						cli.IntFlag{
							Name:  "frames",
							Value: 0,
							Usage: "stop re-rendering after this many frames (0 = unbounded)",
						},
					),
					Action: cmd.RenderInteractive,
				},
			},
		},
		{
			Name:  "probes",
			Usage: "warm the probe grid and print per-layer convergence stats",
			Flags: append(renderFlags(),
				cli.IntFlag{
					Name:  "frames",
					Value: 32,
					Usage: "warm-up frames to render",
				},
			),
			Action: cmd.ProbeStats,
		},
	}

	app.Run(os.Args)
}
