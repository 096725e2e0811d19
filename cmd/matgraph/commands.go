package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/soypat/matgraph"
	"github.com/soypat/matgraph/internal/log"
	"github.com/soypat/matgraph/matdoc"
	"github.com/soypat/matgraph/texpipe"
	"github.com/soypat/matgraph/texture"
	cli "github.com/urfave/cli/v3"
)

func maxDepthFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "max-depth",
		Usage:   "Maximum pin recursion depth (0 for the default)",
		Sources: cli.EnvVars("MATGRAPH_MAX_DEPTH"),
	}
}

func newReduceCommand() *cli.Command {
	return &cli.Command{
		Name:      "reduce",
		Aliases:   []string{"r"},
		Usage:     "Reduce a material document to its property record",
		ArgsUsage: "DOCUMENT",
		Flags: []cli.Flag{
			maxDepthFlag(),
			&cli.BoolFlag{
				Name:  "no-finalize",
				Usage: "Do not run deferred texture operations; texture slots reference their sources",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				return errors.New("missing document argument")
			}
			doc, err := matdoc.Load(path)
			if err != nil {
				return err
			}
			g, err := doc.Graph()
			if err != nil {
				return err
			}
			r, err := newReducer(command, "reduce")
			if err != nil {
				return err
			}
			var rec *matgraph.Record
			if command.Bool("no-finalize") {
				rec, err = r.Evaluate(ctx, g)
			} else {
				rec, err = r.Reduce(ctx, g)
			}
			if err != nil {
				return err
			}
			if rec == nil {
				log.WithModule("reduce").Warn("document has no output node, nothing to display", "document", path)
				return nil
			}
			return encode(command.Root().Writer, command.String("format"), rec)
		},
	}
}

func newApplyCommand() *cli.Command {
	return &cli.Command{
		Name:      "apply",
		Usage:     "Run a single texture compositing operation",
		ArgsUsage: "TEXTURE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "op",
				Usage:    "Operation (multiply, add, subtract, power, lerp-color, lerp-texture-alpha)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "color-a",
				Usage: "First color operand as r,g,b",
				Value: "1,1,1",
			},
			&cli.StringFlag{
				Name:  "color-b",
				Usage: "Second color operand as r,g,b",
				Value: "0,0,0",
			},
			&cli.FloatFlag{
				Name:  "amount",
				Usage: "Exponent of power or blend factor of lerp-color",
				Value: 1,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			id := command.Args().First()
			if id == "" {
				return errors.New("missing texture argument")
			}
			op, err := texpipe.ParseOp(command.String("op"))
			if err != nil {
				return err
			}
			colorA, err := parseColor(command.String("color-a"))
			if err != nil {
				return fmt.Errorf("color-a: %w", err)
			}
			colorB, err := parseColor(command.String("color-b"))
			if err != nil {
				return fmt.Errorf("color-b: %w", err)
			}
			store, err := openTextures(command)
			if err != nil {
				return err
			}
			pipe, err := texpipe.New(texpipe.Config{
				Source: texture.WithCheckerboard(store),
				Sink:   store,
				Cache:  texpipe.NewCache(),
				Logger: log.WithModule("apply"),
			})
			if err != nil {
				return err
			}
			res, err := pipe.Apply(ctx, texpipe.Request{
				Op:     op,
				Source: texture.Ref{ID: id},
				ColorA: colorA,
				ColorB: colorB,
				Amount: float32(command.Float("amount")),
			})
			if err != nil {
				return err
			}
			if res.Degraded != nil {
				return fmt.Errorf("%s on %q not applied: %w", op, id, res.Degraded)
			}
			return encode(command.Root().Writer, command.String("format"), res.Ref)
		},
	}
}

func newKindsCommand() *cli.Command {
	return &cli.Command{
		Name:  "kinds",
		Usage: "List the node kinds understood by the evaluator",
		Action: func(ctx context.Context, command *cli.Command) error {
			w := command.Root().Writer
			for _, k := range matgraph.Kinds() {
				fmt.Fprintln(w, k.String())
			}
			return nil
		},
	}
}

func parseColor(s string) (c [3]float32, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 1 && len(parts) != 3 {
		return c, fmt.Errorf("want 1 or 3 components, got %d", len(parts))
	}
	for i := range c {
		part := parts[0]
		if len(parts) == 3 {
			part = parts[i]
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return c, err
		}
		c[i] = float32(f)
	}
	return c, nil
}
