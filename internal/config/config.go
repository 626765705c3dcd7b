package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Config is the full bot configuration loaded from config.yaml. Secrets
// (API keys, tokens) stay in the environment and are read in cmd/bot.
type Config struct {
	Mode       string `yaml:"mode"`        // "PAPER" or "LIVE"
	DataSource string `yaml:"data_source"` // "STATIC" or "YAHOO"

	Server struct {
		ListenAddr string `yaml:"listen_addr"`
		APIKeyEnv  string `yaml:"api_key_env"`
	} `yaml:"server"`

	Paper struct {
		InitialBalance  float64 `yaml:"initial_balance"`
		RequireApproval bool    `yaml:"require_approval"`
	} `yaml:"paper"`

	Storage struct {
		Backend string `yaml:"backend"` // "file" or "sqlite"
		Dir     string `yaml:"dir"`     // file backend root
		DSN     string `yaml:"dsn"`     // sqlite path
	} `yaml:"storage"`

	Scanner struct {
		MinScore    int `yaml:"min_score"`
		DefaultQty  int `yaml:"default_qty"`
		HistoryDays int `yaml:"history_days"`
	} `yaml:"scanner"`

	Risk struct {
		StopATR   float64 `yaml:"stop_atr"`   // stop distance in ATR multiples
		TargetATR float64 `yaml:"target_atr"` // target distance in ATR multiples
	} `yaml:"risk"`

	Exits struct {
		TargetPct       float64 `yaml:"target_pct"`    // take profit at >= this P&L%
		StopLossPct     float64 `yaml:"stop_loss_pct"` // cut at <= -this P&L%
		IntervalMinutes int     `yaml:"interval_minutes"`
	} `yaml:"exits"`

	Predictor struct {
		Provider string `yaml:"provider"` // "HTTP" or "NONE"
		URL      string `yaml:"url"`
	} `yaml:"predictor"`

	News struct {
		Enabled      bool `yaml:"enabled"`
		MaxHeadlines int  `yaml:"max_headlines"`
		CacheMinutes int  `yaml:"cache_minutes"`
	} `yaml:"news"`

	Schedule struct {
		ScanIntervalMinutes int    `yaml:"scan_interval_minutes"`
		ScanSector          string `yaml:"scan_sector"`
	} `yaml:"schedule"`

	Sectors map[string][]string `yaml:"sectors"`
}

func (c *Config) Validate() error {
	if c.Mode != "PAPER" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'PAPER' or 'LIVE'", c.Mode)
	}
	if c.DataSource != "STATIC" && c.DataSource != "YAHOO" {
		return fmt.Errorf("invalid data_source '%s': must be 'STATIC' or 'YAHOO'", c.DataSource)
	}
	if c.Storage.Backend != "file" && c.Storage.Backend != "sqlite" {
		return fmt.Errorf("storage.backend must be 'file' or 'sqlite', got '%s'", c.Storage.Backend)
	}
	if c.Paper.InitialBalance <= 0 {
		return fmt.Errorf("paper.initial_balance must be positive, got %.2f", c.Paper.InitialBalance)
	}
	if c.Scanner.MinScore < 0 || c.Scanner.MinScore > 100 {
		return fmt.Errorf("scanner.min_score must be between 0-100, got %d", c.Scanner.MinScore)
	}
	if c.Exits.TargetPct <= 0 || c.Exits.StopLossPct <= 0 {
		return errors.New("exits.target_pct and exits.stop_loss_pct must be positive")
	}
	if len(c.Sectors) == 0 {
		return errors.New("sectors cannot be empty")
	}
	return nil
}

// LoadConfig reads, defaults, and validates the config at path.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "PAPER"
	}
	if c.DataSource == "" {
		c.DataSource = "STATIC"
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8000"
	}
	if c.Server.APIKeyEnv == "" {
		c.Server.APIKeyEnv = "MOBILE_API_KEY"
	}
	if c.Paper.InitialBalance == 0 {
		c.Paper.InitialBalance = 100000
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data"
	}
	if c.Storage.DSN == "" {
		c.Storage.DSN = "data/scanner.db"
	}
	if c.Scanner.MinScore == 0 {
		c.Scanner.MinScore = 60
	}
	if c.Scanner.DefaultQty == 0 {
		c.Scanner.DefaultQty = 10
	}
	if c.Scanner.HistoryDays == 0 {
		c.Scanner.HistoryDays = 365
	}
	if c.Risk.StopATR == 0 {
		c.Risk.StopATR = 1.5
	}
	if c.Risk.TargetATR == 0 {
		c.Risk.TargetATR = 3
	}
	if c.Exits.TargetPct == 0 {
		c.Exits.TargetPct = 2.0
	}
	if c.Exits.StopLossPct == 0 {
		c.Exits.StopLossPct = 1.0
	}
	if c.Exits.IntervalMinutes == 0 {
		c.Exits.IntervalMinutes = 30
	}
	if c.Predictor.Provider == "" {
		c.Predictor.Provider = "NONE"
	}
	if c.News.MaxHeadlines == 0 {
		c.News.MaxHeadlines = 5
	}
	if c.News.CacheMinutes == 0 {
		c.News.CacheMinutes = 60
	}
	if c.Schedule.ScanSector == "" {
		c.Schedule.ScanSector = "All"
	}
	if len(c.Sectors) == 0 {
		c.Sectors = DefaultSectors()
	}
}

// DefaultSectors is the built-in NSE sector watchlist, used when the config
// file does not override it.
func DefaultSectors() map[string][]string {
	return map[string][]string{
		"NIFTY_BANK": {
			"HDFCBANK.NS", "ICICIBANK.NS", "SBIN.NS", "AXISBANK.NS", "KOTAKBANK.NS",
			"INDUSINDBK.NS", "BANKBARODA.NS", "PNB.NS", "IDFCFIRSTB.NS", "AUBANK.NS",
		},
		"NIFTY_IT": {
			"TCS.NS", "INFY.NS", "HCLTECH.NS", "WIPRO.NS", "TECHM.NS",
			"LTIM.NS", "PERSISTENT.NS", "COFORGE.NS", "MPHASIS.NS", "LTTS.NS",
		},
		"NIFTY_AUTO": {
			"TATAMOTORS.NS", "M&M.NS", "MARUTI.NS", "BAJAJ-AUTO.NS", "EICHERMOT.NS",
			"HEROMOTOCO.NS", "TVSMOTOR.NS", "ASHOKLEY.NS", "BHARATFORG.NS", "MOTHERSON.NS",
		},
		"NIFTY_ENERGY": {
			"RELIANCE.NS", "NTPC.NS", "ONGC.NS", "POWERGRID.NS", "BPCL.NS",
			"COALINDIA.NS", "IOC.NS", "GAIL.NS", "ADANIGREEN.NS", "TATAPOWER.NS",
		},
		"NIFTY_FMCG": {
			"ITC.NS", "HINDUNILVR.NS", "NESTLEIND.NS", "BRITANNIA.NS", "TATACONSUM.NS",
			"DABUR.NS", "GODREJCP.NS", "MARICO.NS", "VARUN.NS", "COLPAL.NS",
		},
		"NIFTY_PHARMA": {
			"SUNPHARMA.NS", "DRREDDY.NS", "CIPLA.NS", "DIVISLAB.NS", "APOLLOHOSP.NS",
			"LUPIN.NS", "AUROPHARMA.NS", "ALKEM.NS", "TORNTPHARM.NS", "ZYDUSLIFE.NS",
		},
		"NIFTY_METAL": {
			"TATASTEEL.NS", "HINDALCO.NS", "JSWSTEEL.NS", "VEDL.NS", "SAIL.NS",
			"JINDALSTEL.NS", "NMDC.NS", "NATIONALUM.NS", "ADANIENT.NS",
		},
		"NIFTY_REALTY": {
			"DLF.NS", "GODREJPROP.NS", "OBEROIRLTY.NS", "PHOENIXLTD.NS", "PRESTIGE.NS",
		},
	}
}

// StocksBySector resolves a sector name to its watchlist. "All" returns the
// deduplicated union of every sector.
func (c *Config) StocksBySector(sector string) []string {
	if sector == "All" || sector == "" {
		seen := make(map[string]bool)
		var all []string
		for _, name := range sortedKeys(c.Sectors) {
			for _, s := range c.Sectors[name] {
				if !seen[s] {
					seen[s] = true
					all = append(all, s)
				}
			}
		}
		return all
	}
	return c.Sectors[sector]
}

// SectorNames returns the configured sector names in stable order.
func (c *Config) SectorNames() []string {
	return sortedKeys(c.Sectors)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
