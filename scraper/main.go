package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reed-scraper/infrastructure"
	"github.com/reed-scraper/internal/pipeline"
	"github.com/reed-scraper/internal/repo"
	"github.com/reed-scraper/internal/services"
	"github.com/reed-scraper/internal/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML search configuration")
	flag.Parse()

	logger := utils.NewLogger()

	cfg, err := infrastructure.LoadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	logger.Info("=== Reed scraper starting ===")
	logger.Info("Locations: %v | keywords: %v | pages: %d | currency: %s→%s",
		cfg.Locations, cfg.Filters.Keywords, cfg.PagesToScrape, cfg.BaseCurrency, displayCurrency(cfg.TargetCurrency, cfg.BaseCurrency))

	files := repo.NewOutputFiles(cfg.OutputDir, time.Now())
	if err := files.EnsureDir(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	httpClient := utils.NewHTTPClient(utils.HTTPConfig{
		Timeout:   cfg.RequestTimeout,
		UserAgent: cfg.UserAgent,
	})
	rateService := services.NewExchangeRateService(cfg.RatesURL, httpClient)
	scraper := pipeline.NewScraper(cfg.ScraperConfig(), logger)

	jobPipeline := pipeline.NewJobPipeline(scraper, &rateService, repo.NewURLLog(files), logger,
		repo.NewJobCSVRepository(files),
		repo.NewJobXMLRepository(files),
		repo.NewJobJSONRepository(files),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := jobPipeline.Run(ctx, pipeline.Search{
		Locations:      cfg.Locations,
		Filters:        cfg.Filters,
		PagesToScrape:  cfg.PagesToScrape,
		BaseCurrency:   cfg.BaseCurrency,
		TargetCurrency: cfg.TargetCurrency,
	})
	if err != nil {
		logger.Error("Pipeline processing failed: %v", err)
		os.Exit(1)
	}

	logger.Info("Run %s completed: %d listings from %d searches saved to %v", summary.RunID, summary.Listings, summary.URLs, summary.Files)
}

func displayCurrency(code, base string) string {
	if code == "" {
		return base + " (unconverted)"
	}
	return code
}
