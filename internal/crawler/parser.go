package crawler

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"renjiwatch/internal/config"
	"renjiwatch/internal/logger"
	"renjiwatch/internal/models"
)

// Parser extracts announcement records from the listing page markup.
type Parser struct {
	selectors config.SelectorConfig
	baseURL   string
	log       *logger.Logger
}

// NewParser creates a parser for the configured page structure.
func NewParser(cfg *config.Config, log *logger.Logger) *Parser {
	return &Parser{
		selectors: cfg.Watcher.Selectors,
		baseURL:   cfg.Watcher.BaseURL,
		log:       log,
	}
}

// Parse turns the page body into a feed. A missing container element
// means the page structure changed (or holds no data) and yields an
// empty feed, not an error. Every row cell produces a record, even
// when both of its sub-elements are absent.
func (p *Parser) Parse(page string) (models.Feed, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page markup: %w", err)
	}

	container := doc.Find(p.selectors.Container).First()
	if container.Length() == 0 {
		p.log.Warn("announcement container not found", "selector", p.selectors.Container)

		return models.Feed{}, nil
	}

	feed := models.Feed{}

	container.Find(p.selectors.Row).Each(func(_ int, row *goquery.Selection) {
		var rec models.Record

		if label := row.Find(p.selectors.DateLabel).First(); label.Length() > 0 {
			if ts, ok := p.parseDateLabel(label.Text()); ok {
				rec.Date = &ts
			}
		}

		if anchor := row.Find(p.selectors.Anchor).First(); anchor.Length() > 0 {
			if href, ok := anchor.Attr("href"); ok {
				// Plain concatenation with the site origin, exactly as
				// the page links are addressed.
				link := p.baseURL + href
				rec.Link = &link
			}

			title := strings.TrimSpace(anchor.Text())
			rec.Title = &title
		}

		feed = append(feed, rec)
	})

	return feed, nil
}

// parseDateLabel strips the bracket pair around the label text and
// parses the remainder as a calendar date. The brackets are fullwidth
// CJK characters, so the slice is by rune. Unparseable labels are
// dropped silently.
func (p *Parser) parseDateLabel(text string) (time.Time, bool) {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) < 2 {
		return time.Time{}, false
	}

	inner := string(runes[1 : len(runes)-1])

	ts, err := dateparse.ParseAny(inner)
	if err != nil {
		p.log.Debug("skipping unparseable date label", "label", inner)

		return time.Time{}, false
	}

	return ts, true
}
