package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formsync/pkg/preview"
	"github.com/goliatone/go-formsync/pkg/renderers/vanilla"
	"github.com/goliatone/go-formsync/pkg/schema"
	"github.com/goliatone/go-formsync/pkg/session"
	"github.com/goliatone/go-formsync/pkg/surface"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr     string
		textPath string
		assets   string
		grace    time.Duration
		themes   themeFlags
	)
	cmd := &cobra.Command{
		Use:   "serve SCHEMA",
		Short: "Serve a live editor: text edits re-render the form, radio answers reveal dependents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := schema.LoadFile(args[0])
			if err != nil {
				return err
			}

			var file *surface.File
			sessionOptions := []session.Option{session.WithLogger(a.logger)}
			if textPath != "" {
				file, err = surface.NewFile(textPath, surface.WithLogger(a.logger))
				if err != nil {
					return err
				}
				sessionOptions = append(sessionOptions, session.WithSurface(file))
			}
			s := session.New(doc, sessionOptions...)
			if err := s.Init(); err != nil {
				return err
			}

			pageOptions, err := themes.options()
			if err != nil {
				return err
			}
			page, err := vanilla.New(append(pageOptions, vanilla.WithLiveEndpoint(preview.APIPrefix))...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dispatcher := session.NewDispatcher(s)
			serverOptions := []preview.Option{preview.WithPage(page), preview.WithLogger(a.logger)}
			if assets != "" {
				serverOptions = append(serverOptions, preview.WithAssets(os.DirFS(assets)))
			}
			handler, err := preview.New(dispatcher, serverOptions...)
			if err != nil {
				return err
			}
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			group, ctx := errgroup.WithContext(ctx)
			group.Go(func() error {
				return dispatcher.Run(ctx)
			})
			group.Go(func() error {
				a.logger.Info("listening", zap.String("addr", addr), zap.String("schema", args[0]))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			group.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			})
			if file != nil {
				watch, err := dispatcher.WatchFile(ctx, file)
				if err != nil {
					stop()
					_ = group.Wait()
					return err
				}
				group.Go(func() error {
					<-watch.Done()
					return nil
				})
			}
			return group.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&textPath, "text", "", "Also mirror the text surface to this file and re-render when it is saved")
	cmd.Flags().StringVar(&assets, "assets", "", "Directory served under /assets/ (theme stylesheets)")
	cmd.Flags().DurationVar(&grace, "grace", 5*time.Second, "Shutdown grace period")
	themes.register(cmd)
	return cmd
}
