package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "net/http/pprof"

	"stickler/engine"
	"stickler/internal/config"
	"stickler/internal/fileio"
	"stickler/schema"
	serverhttp "stickler/server/http"
	"stickler/similarity"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "compare" {
		runCompareCmd(os.Args[2:])
		return
	}
	runServe()
}

func runServe() {
	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	cfgPath := flag.String("config", "", "path to a TOML config file")
	flag.CommandLine.Parse(os.Args[1:])

	cfg := config.Load(*cfgPath)
	logger := config.SetupLogger(cfg)

	r := serverhttp.NewRouter(cfg, logger)

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
}

// runCompareCmd is the batch entry point: compare two flat tabular
// fixtures (CSV/XLS/XLSX) row-by-row against a JSON schema, without
// standing up the HTTP server. Useful for CI gates over a corpus of
// ground-truth/prediction pairs.
func runCompareCmd(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "path to the JSON schema document")
	gtPath := fs.String("gt", "", "path to the ground-truth CSV/XLS/XLSX fixture")
	predPath := fs.String("pred", "", "path to the predicted CSV/XLS/XLSX fixture")
	headerRow := fs.Int("header-row", 1, "1-based header row for tabular fixtures")
	evaluatorFormat := fs.Bool("evaluator-format", false, "emit the evaluator-only output shape")
	fs.Parse(args)

	if *schemaPath == "" || *gtPath == "" || *predPath == "" {
		fmt.Fprintln(os.Stderr, "compare requires -schema, -gt, and -pred")
		os.Exit(2)
	}

	schemaBytes, err := os.ReadFile(*schemaPath)
	if err != nil {
		fatal(err)
	}
	sch, err := schema.Decode(schemaBytes)
	if err != nil {
		fatal(err)
	}

	reg := similarity.NewDefaultRegistry()
	if err := schema.Validate(sch, reg); err != nil {
		fatal(err)
	}

	gtRows, err := readFixture(*gtPath, *headerRow)
	if err != nil {
		fatal(err)
	}
	predRows, err := readFixture(*predPath, *headerRow)
	if err != nil {
		fatal(err)
	}

	gtRecs := fileio.RowsToRecords(gtRows, sch)
	predRecs := fileio.RowsToRecords(predRows, sch)

	n := len(gtRecs)
	if len(predRecs) > n {
		n = len(predRecs)
	}

	opts := config.Load("").EngineOptions()
	opts.EvaluatorFormat = *evaluatorFormat

	results := make([]*engine.Result, 0, n)
	for i := 0; i < n; i++ {
		var gt, pred schema.Record
		if i < len(gtRecs) {
			gt = gtRecs[i]
		}
		if i < len(predRecs) {
			pred = predRecs[i]
		}
		res, err := engine.Compare(context.Background(), gt, pred, sch, reg, opts)
		if err != nil {
			fatal(err)
		}
		results = append(results, res)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		fatal(err)
	}
}

func readFixture(path string, headerRow int) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return fileio.ReadAnyMaps(f, path, headerRow)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "stickler: "+err.Error())
	os.Exit(1)
}
