package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/reed-scraper/internal/models"
	"github.com/reed-scraper/internal/repo"
	"github.com/reed-scraper/internal/services"
	"github.com/reed-scraper/internal/utils"
)

// RateFetcher returns the rate table for a base currency.
type RateFetcher interface {
	FetchRates(ctx context.Context, base string) (models.RateTable, error)
}

// URLRecorder keeps a trace of every search URL the run generates.
type URLRecorder interface {
	Append(url string) error
}

// Search is what one run looks for.
type Search struct {
	Locations      []string
	Filters        models.FilterSet
	PagesToScrape  int
	BaseCurrency   string
	TargetCurrency string
}

// RunSummary describes a finished run.
type RunSummary struct {
	RunID    string
	Listings int
	URLs     int
	Files    []string
	Rates    bool
}

// JobPipeline drives one scrape: rates once, then every location, page and
// keyword in turn, then all exports.
type JobPipeline struct {
	scraperService *Scraper
	rates          RateFetcher
	urlLog         URLRecorder
	writers        []repo.JobWriter
	logger         *utils.Logger
}

// NewJobPipeline creates a pipeline. Writers run in the order given.
func NewJobPipeline(scraperService *Scraper, rates RateFetcher, urlLog URLRecorder, logger *utils.Logger, writers ...repo.JobWriter) *JobPipeline {
	return &JobPipeline{
		scraperService: scraperService,
		rates:          rates,
		urlLog:         urlLog,
		writers:        writers,
		logger:         logger,
	}
}

// LoadRates fetches the rate table when a conversion is wanted. A failed fetch
// is logged and yields nil, which turns conversion off for the whole run.
func (p *JobPipeline) LoadRates(ctx context.Context, search Search) models.RateTable {
	if search.TargetCurrency == "" || search.TargetCurrency == search.BaseCurrency {
		p.logger.Debug("[rates] No conversion requested, skipping rate lookup")
		return nil
	}

	rates, err := p.rates.FetchRates(ctx, search.BaseCurrency)
	if err != nil {
		p.logger.Error("[rates] Error fetching exchange rates: %v", err)
		p.logger.Warn("[rates] Salaries stay in %s for this run", search.BaseCurrency)
		return nil
	}
	if _, ok := rates[search.TargetCurrency]; !ok {
		p.logger.Warn("[rates] No rate for %s, salaries stay in %s for this run", search.TargetCurrency, search.BaseCurrency)
	}

	p.logger.Info("[rates] Loaded %d exchange rates against %s", len(rates), search.BaseCurrency)
	return rates
}

// Run executes the whole scrape. Nothing is exported until every page has
// been fetched; an error on the way aborts the run.
func (p *JobPipeline) Run(ctx context.Context, search Search) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.New().String()}
	p.logger.Info("[pipeline] Run %s started", summary.RunID)

	rates := p.LoadRates(ctx, search)
	summary.Rates = rates != nil
	normalizer := services.NewSalaryNormalizer(search.BaseCurrency, search.TargetCurrency, rates, p.logger)

	bundle := &models.ExportBundle{}

	for _, location := range search.Locations {
		p.logger.Info("[pipeline] Scraping jobs for location: %s", location)

		for page := 1; page <= search.PagesToScrape; page++ {
			p.logger.Info("[pipeline] Scraping page %d for location %s...", page, location)

			for _, keyword := range search.Filters.Keywords {
				if err := ctx.Err(); err != nil {
					return summary, err
				}

				listings, err := p.scrapeOne(ctx, search.Filters, keyword, location, page, normalizer)
				summary.URLs++
				if err != nil {
					return summary, fmt.Errorf("error scraping %q in %s page %d: %w", keyword, location, page, err)
				}

				bundle.Add(listings...)
				p.logger.Info("[pipeline] %q in %s page %d: %d listings (%d total)",
					keyword, location, page, len(listings), bundle.Len())
			}
		}
	}

	for _, w := range p.writers {
		if err := w.SaveJobs(bundle.Listings); err != nil {
			return summary, fmt.Errorf("failed to save jobs: %w", err)
		}
		summary.Files = append(summary.Files, w.Path())
		p.logger.Info("[pipeline] Wrote %d listings to %s", bundle.Len(), w.Path())
	}

	summary.Listings = bundle.Len()
	return summary, nil
}

func (p *JobPipeline) scrapeOne(ctx context.Context, filters models.FilterSet, keyword, location string, page int, normalizer *services.SalaryNormalizer) ([]models.JobListing, error) {
	searchURL := p.scraperService.BuildSearchURL(filters, keyword, location, page)
	if err := p.urlLog.Append(searchURL); err != nil {
		return nil, err
	}
	p.logger.Debug("[pipeline] GET %s", searchURL)

	listings, err := p.scraperService.ScrapePage(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	for i := range listings {
		listings[i].Salary = normalizer.Normalize(listings[i].Salary.Raw)
	}
	return listings, nil
}
