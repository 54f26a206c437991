package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	dataview "github.com/goliatone/go-dataview/components/dataview"
	"github.com/goliatone/go-dataview/pkg/config"
	"github.com/goliatone/go-dataview/pkg/logger"
	"github.com/goliatone/go-dataview/pkg/rest"
)

// Globals are shared by every subcommand.
type Globals struct {
	Config   string   `type:"path" env:"DATAVIEW_CONFIG" help:"Path to a YAML config file."`
	Manifest string   `type:"path" help:"Resource manifest registered on top of the built-in resources."`
	Offline  bool     `help:"Use built-in demo data instead of the REST backend."`
	User     string   `default:"cli" help:"Viewer user id."`
	Roles    []string `default:"admin" help:"Viewer roles."`
	Locale   string   `help:"Viewer locale (e.g. es-MX)."`
}

type cli struct {
	Globals

	List     listCmd     `cmd:"" help:"List the current page of a resource."`
	Show     showCmd     `cmd:"" help:"Show one record from the detail endpoint."`
	Action   actionCmd   `cmd:"" help:"Run a configured row action against a record."`
	Delete   deleteCmd   `cmd:"" help:"Delete a record after confirmation."`
	Overview overviewCmd `cmd:"" help:"Load resources concurrently and print their record counts."`
	Scaffold scaffoldCmd `cmd:"" help:"Add a resource entry to a manifest."`
	Serve    serveCmd    `cmd:"" help:"Serve the JSON API and notification streams over HTTP."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var c cli
	kctx := kong.Parse(&c,
		kong.Name("viewctl"),
		kong.Description("Browse and manage marketplace admin resources."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run(&c.Globals)
	kctx.FatalIfErrorf(err)
}

// session bundles everything a data command needs.
type session struct {
	cfg      config.Config
	manifest string
	log      *logger.Logger
	service  *dataview.Service
	viewer   dataview.ViewerContext
}

func (g *Globals) session() (*session, error) {
	return g.newSession(nil)
}

func (g *Globals) newSession(notifier dataview.Notifier) (*session, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: logger.Format(cfg.Log.Format),
		Prefix: "viewctl",
	})

	registry := dataview.NewRegistry()
	manifest := g.Manifest
	if manifest == "" {
		manifest = cfg.Manifest.Path
	}
	if manifest != "" {
		if _, err := registry.LoadManifestFile(manifest); err != nil {
			return nil, err
		}
	}

	backend, err := g.backend(cfg, log)
	if err != nil {
		return nil, err
	}
	service := dataview.NewService(dataview.Options{
		Registry:  registry,
		Backend:   backend,
		Notifier:  notifier,
		Telemetry: logger.Telemetry{Logger: log},
		Logger:    log,
	})
	return &session{
		cfg:      cfg,
		manifest: manifest,
		log:      log,
		service:  service,
		viewer:   dataview.ViewerContext{UserID: g.User, Roles: g.Roles, Locale: g.Locale},
	}, nil
}

func (g *Globals) backend(cfg config.Config, log *logger.Logger) (dataview.Backend, error) {
	if g.Offline {
		return rest.NewMemoryBackend(rest.MarketplaceSeed()), nil
	}
	if cfg.REST.BaseURL == "" {
		return nil, fmt.Errorf("viewctl: rest.base_url is not configured (set DATAVIEW_REST_BASE_URL or use --offline)")
	}
	var fallback rest.TokenSource
	if cfg.REST.AccessToken != "" {
		fallback = rest.StaticTokens{Access: cfg.REST.AccessToken}
	}
	return rest.NewClient(rest.Config{
		BaseURL:    cfg.REST.BaseURL,
		Timeout:    cfg.REST.Timeout,
		RetryCount: cfg.REST.RetryCount,
		CacheSize:  cfg.REST.CacheSize,
		CacheTTL:   cfg.REST.CacheTTL,
		Tokens:     rest.ContextTokens{Fallback: fallback},
		Logger:     log,
	})
}
