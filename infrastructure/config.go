package infrastructure

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/reed-scraper/internal/models"
	"github.com/reed-scraper/internal/pipeline"
)

const (
	DefaultSiteBaseURL = "https://www.reed.co.uk"
	DefaultRatesURL    = "https://api.exchangerate-api.com/v4/latest/"
	DefaultBase        = "GBP"
)

// Config is the whole run configuration, built once at start-up and passed
// down explicitly.
type Config struct {
	Locations      []string         `yaml:"locations"`
	Filters        models.FilterSet `yaml:"filters"`
	TargetCurrency string           `yaml:"target_currency"`
	BaseCurrency   string           `yaml:"base_currency"`
	PagesToScrape  int              `yaml:"pages_to_scrape"`
	OutputDir      string           `yaml:"output_dir"`

	SiteBaseURL        string                      `yaml:"site_base_url"`
	RatesURL           string                      `yaml:"rates_url"`
	RequestTimeout     time.Duration               `yaml:"request_timeout"`
	UserAgent          string                      `yaml:"user_agent"`
	MissingFieldPolicy pipeline.MissingFieldPolicy `yaml:"missing_field_policy"`
	Selectors          pipeline.Selectors          `yaml:"selectors"`
}

func intPtr(n int) *int { return &n }

// DefaultConfig mirrors the stock search: two UK cities, two data roles,
// easy-apply only, salaries between 10k and 80k, converted to dirhams.
func DefaultConfig() Config {
	return Config{
		Locations: []string{"London", "Manchester"},
		Filters: models.FilterSet{
			SalaryFrom:        intPtr(10000),
			SalaryTo:          intPtr(80000),
			DateCreatedOffset: models.RecencyLastTwoWeeks,
			EasyApply:         true,
			Keywords:          []string{"ETL developer", "Data engineer"},
		},
		TargetCurrency:     "MAD",
		BaseCurrency:       DefaultBase,
		PagesToScrape:      3,
		OutputDir:          ".",
		SiteBaseURL:        DefaultSiteBaseURL,
		RatesURL:           DefaultRatesURL,
		RequestTimeout:     30 * time.Second,
		MissingFieldPolicy: pipeline.PolicyPlaceholder,
		Selectors:          pipeline.DefaultSelectors(),
	}
}

// LoadConfig reads .env, then the YAML file at path (if present) over the
// defaults, then SCRAPER_* environment overrides, and validates the result.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, using system environment variables")
	}

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Printf("[config] %s not found, using built-in defaults", path)
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("SCRAPER_TARGET_CURRENCY"); ok {
		cfg.TargetCurrency = v
	}
	if v := os.Getenv("SCRAPER_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCRAPER_PAGES %q: %w", v, err)
		}
		cfg.PagesToScrape = n
	}
	if v := os.Getenv("SCRAPER_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("SCRAPER_MISSING_FIELD_POLICY"); v != "" {
		cfg.MissingFieldPolicy = pipeline.MissingFieldPolicy(v)
	}
	return nil
}

func (c *Config) normalize() {
	c.TargetCurrency = strings.ToUpper(strings.TrimSpace(c.TargetCurrency))
	if c.TargetCurrency == "NONE" {
		c.TargetCurrency = ""
	}
	c.BaseCurrency = strings.ToUpper(strings.TrimSpace(c.BaseCurrency))
	if c.BaseCurrency == "" {
		c.BaseCurrency = DefaultBase
	}
	if c.MissingFieldPolicy == "" {
		c.MissingFieldPolicy = pipeline.PolicyPlaceholder
	}
	c.Selectors = c.Selectors.WithDefaults()
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []string

	if len(c.Locations) == 0 {
		errs = append(errs, "locations must have at least 1 entry")
	}
	for i, loc := range c.Locations {
		if strings.TrimSpace(loc) == "" {
			errs = append(errs, fmt.Sprintf("locations[%d] cannot be empty", i))
		}
	}
	if len(c.Filters.Keywords) == 0 {
		errs = append(errs, "filters.keywords must have at least 1 term")
	}
	for i, kw := range c.Filters.Keywords {
		if strings.TrimSpace(kw) == "" {
			errs = append(errs, fmt.Sprintf("filters.keywords[%d] cannot be empty", i))
		}
	}

	f := c.Filters
	if f.SalaryFrom != nil && *f.SalaryFrom < 0 {
		errs = append(errs, "filters.salary_from must be >= 0")
	}
	if f.SalaryTo != nil && *f.SalaryTo < 0 {
		errs = append(errs, "filters.salary_to must be >= 0")
	}
	if f.SalaryFrom != nil && f.SalaryTo != nil && *f.SalaryFrom > *f.SalaryTo {
		errs = append(errs, "filters.salary_from must not exceed filters.salary_to")
	}
	if !f.DateCreatedOffset.Valid() {
		errs = append(errs, fmt.Sprintf("filters.date_created_offset %q must be one of today, lastthreedays, lastweek, lasttwoweeks or empty", f.DateCreatedOffset))
	}
	if f.Proximity != nil && *f.Proximity < 0 {
		errs = append(errs, "filters.proximity must be >= 0")
	}
	if f.MaxApplicants != nil && *f.MaxApplicants < 0 {
		errs = append(errs, "filters.max_applicants must be >= 0")
	}

	if c.PagesToScrape < 1 {
		errs = append(errs, "pages_to_scrape must be >= 1")
	}
	if c.TargetCurrency != "" && !isCurrencyCode(c.TargetCurrency) {
		errs = append(errs, fmt.Sprintf("target_currency %q is not a 3-letter currency code", c.TargetCurrency))
	}
	if !isCurrencyCode(c.BaseCurrency) {
		errs = append(errs, fmt.Sprintf("base_currency %q is not a 3-letter currency code", c.BaseCurrency))
	}
	if !c.MissingFieldPolicy.Valid() {
		errs = append(errs, fmt.Sprintf("missing_field_policy %q must be placeholder or fail", c.MissingFieldPolicy))
	}
	if strings.TrimSpace(c.SiteBaseURL) == "" {
		errs = append(errs, "site_base_url is required")
	}
	if strings.TrimSpace(c.RatesURL) == "" {
		errs = append(errs, "rates_url is required")
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, "request_timeout must be >= 0")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// ScraperConfig is the slice of the configuration the listing fetcher needs.
func (c Config) ScraperConfig() pipeline.Config {
	return pipeline.Config{
		SiteBaseURL:        c.SiteBaseURL,
		RequestTimeout:     c.RequestTimeout,
		UserAgent:          c.UserAgent,
		MissingFieldPolicy: c.MissingFieldPolicy,
		Selectors:          c.Selectors,
	}
}
