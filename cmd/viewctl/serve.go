package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	dataview "github.com/goliatone/go-dataview/components/dataview"
	"github.com/goliatone/go-dataview/components/dataview/httpapi"
	"github.com/goliatone/go-dataview/pkg/logger"
	"github.com/goliatone/go-dataview/pkg/rest"
)

type serveCmd struct {
	Addr string `help:"Listen address (defaults to server.addr)."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	hub := dataview.NewBroadcastNotifier()
	s, err := g.newSession(hub)
	if err != nil {
		return err
	}
	addr := cmd.Addr
	if addr == "" {
		addr = s.cfg.Server.Addr
	}
	if s.manifest != "" && s.cfg.Manifest.Watch {
		go func() {
			_ = s.service.WatchManifest(ctx, s.manifest, func(doc *dataview.ManifestDocument, err error) {
				if err != nil {
					s.log.Warn("manifest reload failed", "error", err)
					return
				}
				s.log.Info("manifest reloaded", "resources", len(doc.Resources))
			})
		}()
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           apiHandler(s, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info("serving data api", "addr", addr, "base", s.cfg.Server.BasePath+"/api/data")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// apiHandler mounts the JSON API and notification streams. Callers' token cookies
// are forwarded to the REST backend.
func apiHandler(s *session, hub *dataview.BroadcastNotifier) http.Handler {
	handlers := &httpapi.Handlers{
		API:           httpapi.NewCommandExecutor(s.service, logger.Telemetry{Logger: s.log}),
		Viewer:        httpapi.HeaderViewer,
		Notifications: hub,
	}
	mux := http.NewServeMux()
	handlers.Mount(mux, s.cfg.Server.BasePath+"/api/data")
	return rest.CookieMiddleware(mux)
}
