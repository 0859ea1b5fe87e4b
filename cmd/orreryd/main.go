package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/papo1011/orrery"
	"github.com/papo1011/orrery/feeds"
	"github.com/papo1011/orrery/view"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Orrery server: streams frames over a websocket and serves the HTTP API.

var (
	confPath string
	addr     string
)

func init() {
	flag.StringVar(&confPath, "config", "", "TOML configuration file")
	flag.StringVar(&addr, "addr", "", "listen address, overrides server.addr")
}

func main() {
	flag.Parse()
	conf, err := orrery.LoadConfig(confPath)
	if err != nil {
		log.Fatal(err)
	}
	if addr != "" {
		conf.ServerAddr = addr
	}
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "view", "server")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := orrery.NewMetrics(registry)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var board *feeds.Board
	if conf.Feeds.Enabled {
		board = feeds.NewBoard(feeds.NewClient(conf.Feeds, logger, metrics))
		if conf.Feeds.SeedAsteroids {
			fetchCtx, fetchCancel := context.WithTimeout(ctx, 15*time.Second)
			board.Refresh(fetchCtx)
			fetchCancel()
			conf.Asteroids = feeds.SeedBelt(conf.Asteroids, board.Snapshot())
		}
		go board.Poll(ctx, conf.Feeds.Interval)
	}

	hub := view.NewHub(logger)
	ec := conf.Engine()
	ec.Logger = logger
	ec.Metrics = metrics
	ec.Renderers = []orrery.Renderer{hub}
	engine, err := orrery.NewEngine(conf.Table, ec)
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{Addr: conf.ServerAddr, Handler: view.NewRouter(hub, engine.Table, board, registry)}
	go func() {
		logger.Log("level", "info", "subsys", "http", "addr", conf.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log("level", "critical", "subsys", "http", "err", err)
			engine.Stop()
		}
	}()

	if err := engine.Run(ctx, orrery.NewFrameLimiter(conf.FPS)); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log("level", "critical", "subsys", "engine", "err", err)
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	logger.Log("level", "notice", "status", "finished", "ticks", engine.Ticks(), "dropped", hub.Dropped())
}
