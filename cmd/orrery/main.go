package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	kitlog "github.com/go-kit/kit/log"
	"github.com/papo1011/orrery"
	"github.com/papo1011/orrery/feeds"
	"github.com/papo1011/orrery/view"
)

// Terminal orrery: one engine, drawn with tcell until q or Esc.

var (
	confPath string
	table    string
	seed     string
	logPath  string
)

func init() {
	flag.StringVar(&confPath, "config", "", "TOML configuration file")
	flag.StringVar(&table, "table", "", "built-in table (inner, solar, earthmoon), overrides the configuration")
	flag.StringVar(&seed, "seed", "", "phase seeding (zero, random, epoch), overrides the configuration")
	flag.StringVar(&logPath, "log", "orrery.log", "log file (the terminal is busy)")
}

func main() {
	flag.Parse()
	conf, err := orrery.LoadConfig(confPath)
	if err != nil {
		log.Fatal(err)
	}
	if table != "" {
		if conf.Table, err = orrery.TableFromString(table); err != nil {
			log.Fatal(err)
		}
	}
	if seed != "" {
		if conf.Seed, err = orrery.ParseSeedMode(seed); err != nil {
			log.Fatal(err)
		}
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("could not open log file: %s", err)
	}
	defer logFile.Close()
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(logFile))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "view", "terminal")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var board *feeds.Board
	if conf.Feeds.Enabled {
		board = feeds.NewBoard(feeds.NewClient(conf.Feeds, logger, nil))
		if conf.Feeds.SeedAsteroids {
			// A failed fetch only means no seeded asteroids.
			fetchCtx, fetchCancel := context.WithTimeout(ctx, 15*time.Second)
			board.Refresh(fetchCtx)
			fetchCancel()
			conf.Asteroids = feeds.SeedBelt(conf.Asteroids, board.Snapshot())
		}
		go board.Poll(ctx, conf.Feeds.Interval)
	}

	ec := conf.Engine()
	ec.Logger = logger
	engine, err := orrery.NewEngine(conf.Table, ec)
	if err != nil {
		log.Fatal(err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("could not create screen: %s", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("could not initialize screen: %s", err)
	}
	term := view.NewTerminal(screen, engine, board)
	engine.AddRenderer(term)
	go term.HandleEvents()

	err = engine.Run(ctx, orrery.NewFrameLimiter(conf.FPS))
	screen.Fini()
	if err != nil && err != context.Canceled {
		log.Fatal(err)
	}
	fmt.Printf("%s: stopped after %d ticks\n", conf.Table.Name, engine.Ticks())
}
