package main

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/soypat/matgraph"
	"github.com/soypat/matgraph/internal/log"
	"github.com/soypat/matgraph/matdoc"
	cli "github.com/urfave/cli/v3"
)

// debounce coalesces the burst of events editors emit when saving.
const debounce = 50 * time.Millisecond

func newWatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Aliases:   []string{"w"},
		Usage:     "Re-reduce a material document every time it changes",
		ArgsUsage: "DOCUMENT",
		Flags:     []cli.Flag{maxDepthFlag()},
		Action: func(ctx context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				return errors.New("missing document argument")
			}
			logger := log.WithModule("watch").With("document", path)
			r, err := newReducer(command, "watch")
			if err != nil {
				return err
			}
			w := command.Root().Writer
			format := command.String("format")
			session := matgraph.NewSession(r, func(gen uint64, rec *matgraph.Record) {
				if rec == nil {
					logger.Warn("document has no output node, nothing to display", "generation", gen)
					return
				}
				err := encode(w, format, rec)
				if err != nil {
					logger.Error("writing record", "error", err)
				}
			})
			apply := func() {
				doc, err := matdoc.Load(path)
				if err != nil {
					logger.Error("loading document", "error", err)
					return
				}
				g, err := doc.Graph()
				if err != nil {
					logger.Error("building graph", "error", err)
					return
				}
				// Passes run concurrently; the session publishes only the newest.
				go func() {
					_, err := session.Apply(ctx, g)
					if err != nil && ctx.Err() == nil {
						logger.Error("reducing document", "error", err)
					}
				}()
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()
			// Editors often replace files on save so the directory is watched.
			err = watcher.Add(filepath.Dir(path))
			if err != nil {
				return err
			}
			target := filepath.Clean(path)
			apply()
			logger.Info("watching for changes")

			timer := time.NewTimer(debounce)
			timer.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
						continue
					}
					timer.Reset(debounce)
				case <-timer.C:
					logger.Debug("document changed", "generation", session.Generation()+1)
					apply()
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					logger.Error("watcher error", "error", err)
				}
			}
		},
	}
}
