package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"github.com/papo1011/orrery"
)

// Headless run: ticks as fast as possible and records the frames.

var (
	confPath string
	table    string
	ticks    uint64
	outDir   string
)

func init() {
	flag.StringVar(&confPath, "config", "", "TOML configuration file")
	flag.StringVar(&table, "table", "", "built-in table (inner, solar, earthmoon), overrides the configuration")
	flag.Uint64Var(&ticks, "ticks", orrery.TicksPerYear, "number of ticks to record")
	flag.StringVar(&outDir, "out", "", "output directory, overrides export.output_dir")
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
	if outDir != "" {
		conf.Export.OutputDir = outDir
	}
	if conf.Export.IsUseless() {
		conf.Export.AsCSV = true
	}
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "view", "record")

	ec := conf.Engine()
	ec.Logger = logger
	rec, err := orrery.NewRecorder(conf.Export, logger)
	if err != nil {
		log.Fatal(err)
	}
	ec.Renderers = []orrery.Renderer{rec}
	engine, err := orrery.NewEngine(conf.Table, ec)
	if err != nil {
		log.Fatal(err)
	}
	if err := engine.Start(); err != nil {
		log.Fatal(err)
	}
	for engine.Ticks() < ticks {
		engine.Frame()
	}
	engine.Stop()
	if err := rec.Close(); err != nil {
		log.Fatalf("recording failed: %s", err)
	}
	for _, f := range rec.Files() {
		fmt.Println(f)
	}
}
