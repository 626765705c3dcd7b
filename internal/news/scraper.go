// Package news fetches recent headlines for a stock and scores them with a
// finance-tuned sentiment lexicon. Results are cached per symbol so a full
// sector scan does not hammer the feed.
package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"equity-scanner-bot/internal/logger"
)

// Scraper pulls headlines from the Google News RSS feed.
type Scraper struct {
	timeout time.Duration
}

// NewScraper creates a scraper with the given request timeout.
func NewScraper(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{timeout: timeout}
}

// FetchHeadlines returns up to maxHeadlines recent headlines for the symbol,
// newest first as the feed serves them.
func (s *Scraper) FetchHeadlines(ctx context.Context, symbol string, maxHeadlines int) ([]string, error) {
	headlines := []string{}

	c := colly.NewCollector(
		colly.AllowedDomains("news.google.com"),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})

	c.OnXML("//item/title", func(e *colly.XMLElement) {
		if len(headlines) >= maxHeadlines {
			return
		}
		title := strings.TrimSpace(e.Text)
		if title != "" {
			headlines = append(headlines, title)
		}
	})

	query := url.QueryEscape(symbol + " stock news India")
	feedURL := fmt.Sprintf("https://news.google.com/rss/search?q=%s&hl=en-IN&gl=IN&ceid=IN:en", query)

	if err := c.Visit(feedURL); err != nil {
		return nil, fmt.Errorf("failed to fetch news feed: %w", err)
	}
	c.Wait()

	logger.Debug(ctx, "Headlines fetched", "symbol", symbol, "count", len(headlines))
	return headlines, nil
}
