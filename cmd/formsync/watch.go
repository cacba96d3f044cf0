package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formsync"
	"github.com/goliatone/go-formsync/pkg/render"
	"github.com/goliatone/go-formsync/pkg/schema"
	"github.com/goliatone/go-formsync/pkg/session"
	"github.com/goliatone/go-formsync/pkg/surface"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		textPath string
		output   string
		renderer string
		debounce time.Duration
		themes   themeFlags
	)
	cmd := &cobra.Command{
		Use:   "watch SCHEMA",
		Short: "Mirror SCHEMA into an editable text file and re-render on every save",
		Long: `watch writes the serialized SCHEMA to --text, renders it to --output, and
re-renders whenever the text file is saved. Malformed edits are reported and
leave the last good output in place. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := schema.LoadFile(args[0])
			if err != nil {
				return err
			}
			pageOptions, err := themes.options()
			if err != nil {
				return err
			}
			registry, err := formsync.NewRegistry(pageOptions...)
			if err != nil {
				return err
			}
			out, err := registry.Get(renderer)
			if err != nil {
				return err
			}

			file, err := surface.NewFile(textPath, surface.WithLogger(a.logger), surface.WithDebounce(debounce))
			if err != nil {
				return err
			}
			s := session.New(doc, session.WithSurface(file), session.WithLogger(a.logger))
			if err := s.Init(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := writeSnapshot(ctx, s, out, output); err != nil {
				return err
			}
			a.logger.Info("watching", zap.String("text", file.Path()), zap.String("output", output))

			dispatcher := session.NewDispatcher(s)
			group, ctx := errgroup.WithContext(ctx)
			group.Go(func() error {
				return dispatcher.Run(ctx)
			})

			watch, err := file.Watch(ctx, func() {
				err := dispatcher.Dispatch(ctx, session.InspectFunc(func(s *session.Session) error {
					if err := s.TextEdited(); err != nil {
						return err
					}
					return writeSnapshot(ctx, s, out, output)
				}))
				var parseErr *schema.ParseError
				switch {
				case err == nil:
					a.logger.Info("re-rendered", zap.String("output", output))
				case errors.As(err, &parseErr):
					a.logger.Warn("edit rejected, keeping the previous form",
						zap.Int("line", parseErr.Line), zap.Int("column", parseErr.Column), zap.Error(parseErr.Err))
				case errors.Is(err, context.Canceled):
				default:
					a.logger.Error("re-render failed", zap.Error(err))
				}
			})
			if err != nil {
				stop()
				_ = group.Wait()
				return err
			}
			group.Go(func() error {
				<-watch.Done()
				return nil
			})
			return group.Wait()
		},
	}
	cmd.Flags().StringVar(&textPath, "text", "", "Editable text file (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Rendered output file (required)")
	cmd.Flags().StringVarP(&renderer, "renderer", "r", "vanilla", "Output: vanilla, fragment or json")
	cmd.Flags().DurationVar(&debounce, "debounce", surface.DefaultDebounce, "Quiet period before a save is picked up")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("output")
	themes.register(cmd)
	return cmd
}

func writeSnapshot(ctx context.Context, s *session.Session, out render.Output, path string) error {
	snapshot, err := s.Snapshot()
	if err != nil {
		return err
	}
	data, err := out.Render(ctx, snapshot)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
