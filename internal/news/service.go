package news

import (
	"context"
	"fmt"
	"sync"
	"time"

	"equity-scanner-bot/internal/logger"
)

// Sentiment is the scored news snapshot for one symbol.
type Sentiment struct {
	Symbol    string   `json:"symbol"`
	Score     float64  `json:"score"`
	Headlines []string `json:"headlines"`
	Timestamp int64    `json:"timestamp"`
}

// Provider serves sentiment snapshots for symbols.
type Provider interface {
	GetSentiment(ctx context.Context, symbol string) (Sentiment, error)
}

// ServiceConfig configures the sentiment service.
type ServiceConfig struct {
	MaxHeadlines   int
	CacheDuration  time.Duration
	ScraperTimeout time.Duration
	Enabled        bool
}

// DefaultServiceConfig returns 5 headlines cached for an hour.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxHeadlines:   5,
		CacheDuration:  1 * time.Hour,
		ScraperTimeout: 30 * time.Second,
		Enabled:        true,
	}
}

type cacheEntry struct {
	sentiment Sentiment
	timestamp time.Time
}

type sentimentCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

func newSentimentCache(ttl time.Duration) *sentimentCache {
	cache := &sentimentCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}
	go cache.cleanupLoop()
	return cache
}

func (c *sentimentCache) get(symbol string) (Sentiment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[symbol]
	if !exists || time.Since(entry.timestamp) > c.ttl {
		return Sentiment{}, false
	}
	return entry.sentiment, true
}

func (c *sentimentCache) set(symbol string, sentiment Sentiment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[symbol] = &cacheEntry{
		sentiment: sentiment,
		timestamp: time.Now(),
	}
}

func (c *sentimentCache) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *sentimentCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for symbol, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, symbol)
		}
	}
}

type headlineFetcher interface {
	FetchHeadlines(ctx context.Context, symbol string, maxHeadlines int) ([]string, error)
}

// Service scrapes, scores and caches news sentiment per symbol.
type Service struct {
	scraper  headlineFetcher
	analyzer *Analyzer
	cache    *sentimentCache
	cfg      *ServiceConfig
}

// NewService creates a sentiment service.
func NewService(cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	return &Service{
		scraper:  NewScraper(cfg.ScraperTimeout),
		analyzer: NewAnalyzer(),
		cache:    newSentimentCache(cfg.CacheDuration),
		cfg:      cfg,
	}
}

// GetSentiment returns the cached snapshot when fresh, otherwise scrapes and
// scores new headlines. Fetch failures return an error; callers score the
// symbol without sentiment so a dead feed never blocks a scan.
func (s *Service) GetSentiment(ctx context.Context, symbol string) (Sentiment, error) {
	if !s.cfg.Enabled {
		return Sentiment{Symbol: symbol, Timestamp: time.Now().Unix()}, nil
	}

	if cached, ok := s.cache.get(symbol); ok {
		logger.Debug(ctx, "Using cached sentiment", "symbol", symbol, "score", cached.Score)
		return cached, nil
	}

	headlines, err := s.scraper.FetchHeadlines(ctx, symbol, s.cfg.MaxHeadlines)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch headlines", err, "symbol", symbol)
		return Sentiment{Symbol: symbol, Timestamp: time.Now().Unix()}, fmt.Errorf("fetch headlines for %s: %w", symbol, err)
	}

	sentiment := Sentiment{
		Symbol:    symbol,
		Score:     s.analyzer.ScoreHeadlines(headlines),
		Headlines: headlines,
		Timestamp: time.Now().Unix(),
	}
	s.cache.set(symbol, sentiment)

	logger.Info(ctx, "Sentiment computed", "symbol", symbol, "score", sentiment.Score, "headlines", len(headlines))
	return sentiment, nil
}

// Noop always reports neutral sentiment.
type Noop struct{}

func (Noop) GetSentiment(_ context.Context, symbol string) (Sentiment, error) {
	return Sentiment{Symbol: symbol, Timestamp: time.Now().Unix()}, nil
}
