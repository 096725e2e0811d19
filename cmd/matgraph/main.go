package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/soypat/matgraph"
	"github.com/soypat/matgraph/internal/log"
	"github.com/soypat/matgraph/texture"
	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := newApp().Run(ctx, os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "matgraph:", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "matgraph",
		Usage:                 "Evaluate material graphs into physically based material records",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "textures",
				Aliases: []string{"t"},
				Usage:   "Directory resolving texture identifiers. Composited textures are written under it",
				Sources: cli.EnvVars("MATGRAPH_TEXTURES"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (yaml, json)",
				Value:   "yaml",
				Sources: cli.EnvVars("MATGRAPH_FORMAT"),
				Validator: func(s string) error {
					if s != "yaml" && s != "json" {
						return fmt.Errorf("unknown format %q", s)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			newReduceCommand(),
			newWatchCommand(),
			newApplyCommand(),
			newKindsCommand(),
		},
	}
}

// openTextures returns the texture store selected by the textures flag.
func openTextures(command *cli.Command) (texture.Store, error) {
	root := command.String("textures")
	if root == "" {
		return &texture.Memory{}, nil
	}
	return texture.NewDir(root)
}

func newReducer(command *cli.Command, module string) (*matgraph.Reducer, error) {
	store, err := openTextures(command)
	if err != nil {
		return nil, err
	}
	return matgraph.NewReducer(matgraph.Config{
		Textures: store,
		Logger:   log.WithModule(module),
		MaxDepth: int(command.Int("max-depth")),
	})
}

func encode(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}
