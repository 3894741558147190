// Package crawler fetches and parses the announcement listing page.
package crawler

import (
	"fmt"

	"renjiwatch/internal/config"
	"renjiwatch/internal/logger"
	"renjiwatch/internal/models"
)

// Fetcher composes the scraper and parser into the single fetch pass.
type Fetcher struct {
	scraper *Scraper
	parser  *Parser
	url     string
	log     *logger.Logger
}

// NewFetcher creates a fetcher with default dependencies from config.
func NewFetcher(cfg *config.Config, log *logger.Logger) *Fetcher {
	return &Fetcher{
		scraper: NewScraper(cfg.Watcher.Timeout()),
		parser:  NewParser(cfg, log),
		url:     cfg.Watcher.SourceURL,
		log:     log,
	}
}

// NewFetcherWithDeps creates a fetcher with injected dependencies.
func NewFetcherWithDeps(scraper *Scraper, parser *Parser, url string, log *logger.Logger) *Fetcher {
	return &Fetcher{
		scraper: scraper,
		parser:  parser,
		url:     url,
		log:     log,
	}
}

// Fetch retrieves the listing page and parses it into a feed. A
// transport failure propagates; a structure miss yields an empty feed.
func (f *Fetcher) Fetch() (models.Feed, error) {
	f.log.Info("fetching announcement page", "url", f.url)

	page, err := f.scraper.Scrape(f.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch announcement page: %w", err)
	}

	f.log.Info("page fetched, parsing")

	feed, err := f.parser.Parse(page)
	if err != nil {
		return nil, err
	}

	f.log.Info("page parsed", "records", len(feed))

	return feed, nil
}
