package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/thefledgedhurricane/journal-quality-analyzer/config"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/app"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/infrastructure/export"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/logging"
)

// API keys are read from the environment (or .env), never from flags.
const (
	envScopusKey = "JQA_SCOPUS_API_KEY"
	envGeminiKey = "JQA_GEMINI_API_KEY"
)

type options struct {
	query          string
	category       string
	topK           int
	format         string
	output         string
	matchOnly      bool
	listCategories bool
}

func main() {
	var opts options
	flag.StringVar(&opts.query, "q", "", "Journal name (or ISSN) to resolve; extra queries may follow as arguments")
	flag.StringVar(&opts.category, "category", "", "Resolve every journal of this SCImago category")
	flag.IntVar(&opts.topK, "k", 5, "Number of candidates to print with -match")
	flag.StringVar(&opts.format, "format", "json", "Output format: json or csv")
	flag.StringVar(&opts.output, "o", "", "Write output to this file instead of stdout")
	flag.BoolVar(&opts.matchOnly, "match", false, "Only rank catalog candidates for -q; no external sources")
	flag.BoolVar(&opts.listCategories, "categories", false, "List catalog categories and exit")
	flag.Parse()

	if err := run(opts, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "jqa: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, args []string) error {
	if opts.format != "json" && opts.format != "csv" {
		return fmt.Errorf("unknown format %q (want json or csv)", opts.format)
	}

	queries := args
	if opts.query != "" {
		queries = append([]string{opts.query}, args...)
	}
	if !opts.listCategories && opts.category == "" && len(queries) == 0 {
		return errors.New("nothing to do: pass -q, -category or -categories")
	}
	if opts.category != "" && len(queries) > 0 {
		return errors.New("-category cannot be combined with queries")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
		return err
	}
	log := logging.WithComponent("cli")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	out := io.Writer(os.Stdout)
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch {
	case opts.listCategories:
		return writeJSON(out, engine.Index.Categories())

	case opts.matchOnly:
		if len(queries) != 1 {
			return errors.New("-match takes exactly one query")
		}
		candidates, err := engine.Matcher.Match(ctx, queries[0], opts.topK)
		if err != nil {
			return err
		}
		return writeJSON(out, candidates)
	}

	creds := domain.Credentials{
		IndexingKey:   strings.TrimSpace(os.Getenv(envScopusKey)),
		ExtractionKey: strings.TrimSpace(os.Getenv(envGeminiKey)),
	}
	log.Info("resolving", "queries", len(queries), "category", opts.category, "credentials", creds)

	var verdicts []domain.Verdict
	if opts.category != "" {
		verdicts, err = engine.Aggregator.ResolveCategory(ctx, opts.category, creds)
	} else {
		verdicts, err = engine.Aggregator.ResolveBatch(ctx, queries, creds)
	}
	if err != nil {
		return err
	}

	rs := engine.Builder.Build(verdicts)
	log.Info("done",
		"total", rs.Summary.Total,
		"matched", rs.Summary.Matched,
		"predatory_journals", rs.Summary.PredatoryJournals,
		"failed_sources", rs.Summary.FailedSources,
	)

	if opts.format == "csv" {
		return export.WriteCSV(out, rs)
	}
	return writeJSON(out, rs)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
