package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"afisha/internal/config"
	"afisha/internal/facet"
	"afisha/internal/feed"
	"afisha/internal/ics"
	appLog "afisha/internal/log"
	"afisha/internal/pipeline"
	"afisha/internal/session"
	"afisha/internal/view"
	"afisha/internal/web"
)

const version = "0.1.0"

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "afisha",
		Usage:   "Concert listings from an upstream JSON feed, served as list, calendar and map views.",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "/etc/afisha/config.yaml",
				Usage:   "path to config file",
				EnvVars: []string{"AFISHA_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			dumpCommand(),
		},
	}

	err := app.Run(os.Args)
	appLog.Sync()
	if err != nil {
		appLog.Error("afisha failed", err)
		os.Exit(1)
	}
}

// app bundles the components both commands need.
type app struct {
	cfg       *config.Config
	session   *session.Session
	projector *view.Projector
}

func setup(c *cli.Context) (*app, error) {
	path := c.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.Normalize()
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	appLog.Info("effective config",
		"config_path", path,
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"refresh", cfg.RefreshCron,
		"request_timeout_sec", cfg.RequestTimeoutSec,
		"price_policy", cfg.PricePolicy,
		"map_today_only", cfg.MapTodayOnly,
		"gazetteer_size", len(cfg.Gazetteer),
	)

	fetcher := feed.NewFetcher(cfg.FeedURL, feed.Options{
		Timeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
	})
	projector := view.NewProjector(facet.NewResolver(cfg), view.Options{MapTodayOnly: cfg.MapTodayOnly})
	sess := session.New(fetcher, projector, session.Options{Location: cfg.Location()})

	return &app{cfg: cfg, session: sess, projector: projector}, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Load the feed and serve the HTTP API.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Usage: "HTTP listen address (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			a, err := setup(c)
			if err != nil {
				return err
			}
			if l := c.String("listen"); l != "" {
				a.cfg.Listen = l
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			appLog.Info("afisha starting", "version", version)

			// The server starts right away; /api/map waits for this load.
			go func() {
				if err := a.session.Load(ctx); err != nil && !errors.Is(err, session.ErrEmptyResult) {
					appLog.Warn("initial feed load failed", "error", err.Error())
				}
			}()

			sched, err := a.session.Schedule(ctx, a.cfg.RefreshCron)
			if err != nil {
				return err
			}
			if sched != nil {
				defer func() { <-sched.Stop().Done() }()
			}

			if err := web.NewServer(a.cfg, a.session).ListenAndServe(ctx); err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			appLog.Info("afisha exiting")
			return nil
		},
	}
}

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Fetch once and print the working set as JSON (or iCalendar with --ics).",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "q", Usage: "search query"},
			&cli.StringFlag{Name: "date", Usage: "only events on this date (YYYY-MM-DD)"},
			&cli.BoolFlag{Name: "ics", Usage: "print iCalendar instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			a, err := setup(c)
			if err != nil {
				return err
			}

			if err := a.session.Load(c.Context); err != nil && !errors.Is(err, session.ErrEmptyResult) {
				return err
			}
			ui := a.session.UIState().WithSearch(c.String("q")).ToggleDate(c.String("date"))

			if c.Bool("ics") {
				events := pipeline.SelectState(a.session.Events(), ui)
				_, err := os.Stdout.Write(ics.Export(events, ics.Options{
					Resolver: a.projector.Resolver(),
					Location: a.session.Location(),
					Now:      a.session.Now(),
				}))
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(a.session.SnapshotFor(ui))
		},
	}
}
