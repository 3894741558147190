// Package main provides the single-run announcement watcher. One
// invocation fetches the listing page, decides whether anything new
// happened, and sends at most one mail.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"renjiwatch/internal/checkpoint"
	"renjiwatch/internal/config"
	"renjiwatch/internal/crawler"
	"renjiwatch/internal/evaluator"
	"renjiwatch/internal/formatter"
	"renjiwatch/internal/logger"
	"renjiwatch/internal/notifier"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	flag.Parse()

	// Take environment variables from .env when present.
	_ = godotenv.Load()

	path := *configFile
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigFile); err == nil {
			path = config.DefaultConfigFile
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg := logger.NewLogger(cfg.Logging.Level)
	logg.Info("starting run", "config", cfg.String())

	feed, err := crawler.NewFetcher(cfg, logg).Fetch()
	if err != nil {
		// The one error class allowed to escape the run.
		log.Fatalf("failed to fetch feed: %v", err)
	}

	logg.Debug("scraped feed\n" + formatter.RenderTable(feed))

	store := checkpoint.NewStore(cfg.Watcher.CheckpointFile, logg)
	last, _ := store.Read()

	decision, err := evaluator.New(cfg.Watcher.CheckIntervalHours, logg).Evaluate(feed, last)
	if err != nil {
		log.Fatalf("failed to evaluate feed: %v", err)
	}

	logg.Info("evaluation complete", "outcome", decision.Outcome.String())

	if decision.Outcome == evaluator.OutcomeSkip {
		return
	}

	body, err := formatter.RenderHTML(feed)
	if err != nil {
		log.Fatalf("failed to render mail body: %v", err)
	}

	mailer := notifier.NewMailer(cfg.Mail, cfg.Watcher.Debug, logg)

	switch decision.Outcome {
	case evaluator.OutcomeNotifyFailure:
		mailer.Send(cfg.Mail.SubjectOr(notifier.SubjectFailure), body, true)
		logg.Error("failed to parse message list")
	case evaluator.OutcomeNotifyUpdate:
		logg.Info("update detected, trying to send mail")

		if mailer.Send(cfg.Mail.SubjectOr(notifier.SubjectUpdate), body, false) {
			if err := store.Write(decision.Digest); err != nil {
				logg.Warn("failed to persist checkpoint", "error", err)
			}
		}
	}
}
