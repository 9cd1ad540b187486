package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

const (
	setKey      = "set"
	emitKey     = "emit"
	advanceKey  = "advance"
	formatKey   = "format"
	showKey     = "show"
	verboseKey  = "verbose"
	widthKey    = "width"
	heightKey   = "height"
	rowsKey     = "rows"
	itersKey    = "iters"
	profileKey  = "profile"
	formatTable = "table"
	formatTree  = "tree"
)

func main() {
	cmd := &cli.Command{
		Name:  "proptree",
		Usage: "Load, drive and benchmark reactive item trees",
		Commands: []*cli.Command{
			{
				Name:      "inspect",
				Usage:     "Instantiate a component description and print its properties",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  setKey,
						Usage: "Write a property before printing, as name=value or id.name=value",
					},
					&cli.StringSliceFlag{
						Name:  emitKey,
						Usage: "Invoke a callback, as name or id.name",
					},
					&cli.DurationFlag{
						Name:  advanceKey,
						Usage: "Advance the animation clock after writes and callbacks",
					},
					&cli.StringFlag{
						Name:  formatKey,
						Usage: "Output format: table or tree",
						Value: formatTable,
					},
					&cli.BoolFlag{
						Name:  showKey,
						Usage: "Show the window first, applying its initial focus",
					},
					&cli.BoolFlag{
						Name:  verboseKey,
						Usage: "Log binding and callback errors to stderr",
					},
				},
				Action: inspect,
			},
			{
				Name:  "bench",
				Usage: "Measure propagation through binding chains and repeaters",
				Flags: []cli.Flag{
					&cli.IntSliceFlag{
						Name:  widthKey,
						Usage: "Number of independent chains",
						Value: []int64{1, 10, 100},
					},
					&cli.IntSliceFlag{
						Name:  heightKey,
						Usage: "Bindings per chain",
						Value: []int64{1, 10, 100},
					},
					&cli.IntSliceFlag{
						Name:  rowsKey,
						Usage: "Repeater sizes",
						Value: []int64{10, 100, 1_000},
					},
					&cli.IntFlag{
						Name:  itersKey,
						Usage: "Writes per configuration",
						Value: 100,
					},
					&cli.StringFlag{
						Name:  profileKey,
						Usage: "Write a CPU profile to this file",
					},
				},
				Action: bench,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
