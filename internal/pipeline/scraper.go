package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/reed-scraper/internal/models"
	"github.com/reed-scraper/internal/utils"
)

// MissingFieldPolicy decides what happens when a listing card lacks a field.
type MissingFieldPolicy string

const (
	PolicyPlaceholder MissingFieldPolicy = "placeholder" // write models.NotFound
	PolicyFail        MissingFieldPolicy = "fail"        // fail the whole page
)

func (p MissingFieldPolicy) Valid() bool {
	return p == PolicyPlaceholder || p == PolicyFail
}

// Selectors are CSS selectors for one listing card and its fields. Field
// selectors are evaluated inside the card only.
type Selectors struct {
	Card         string `yaml:"card"`
	Title        string `yaml:"title"`
	Salary       string `yaml:"salary"`
	Location     string `yaml:"location"`
	Company      string `yaml:"company"`
	Description  string `yaml:"description"`
	ContractType string `yaml:"contract_type"`
	EasyApply    string `yaml:"easy_apply"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		Card:         `article[data-qa="job-card"]`,
		Title:        `[class*="jobTitleBtn"], h2[data-qa="job-card-title"]`,
		Salary:       `li:contains("per annum"), li[data-qa="job-metadata-salary"]`,
		Location:     `li[data-qa*="job-card-location"]`,
		Company:      `a[class*="gtmJobListingPostedBy"]`,
		Description:  `div[class*="jobResultDescription"] p`,
		ContractType: `li:contains("Permanent"), li:contains("Contract")`,
		EasyApply:    `label[class*="label__easyApply"]`,
	}
}

// WithDefaults fills any empty selector from DefaultSelectors.
func (s Selectors) WithDefaults() Selectors {
	d := DefaultSelectors()
	fill := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	fill(&s.Card, d.Card)
	fill(&s.Title, d.Title)
	fill(&s.Salary, d.Salary)
	fill(&s.Location, d.Location)
	fill(&s.Company, d.Company)
	fill(&s.Description, d.Description)
	fill(&s.ContractType, d.ContractType)
	fill(&s.EasyApply, d.EasyApply)
	return s
}

type Config struct {
	SiteBaseURL        string             // e.g. https://www.reed.co.uk
	RequestTimeout     time.Duration      // Timeout for individual HTTP requests
	UserAgent          string             // User-Agent header sent with every request
	MissingFieldPolicy MissingFieldPolicy // What to do when a card lacks a field
	Selectors          Selectors          // Card and field selectors
}

type Scraper struct {
	config Config
	client *utils.HTTPClient
	logger *utils.Logger
}

func NewScraper(config Config, logger *utils.Logger) *Scraper {
	if config.SiteBaseURL == "" {
		config.SiteBaseURL = "https://www.reed.co.uk"
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 30 * time.Second
	}
	if config.MissingFieldPolicy == "" {
		config.MissingFieldPolicy = PolicyPlaceholder
	}
	config.Selectors = config.Selectors.WithDefaults()
	config.SiteBaseURL = strings.TrimRight(config.SiteBaseURL, "/")

	return &Scraper{
		config: config,
		client: utils.NewHTTPClient(utils.HTTPConfig{
			Timeout:   config.RequestTimeout,
			UserAgent: config.UserAgent,
		}),
		logger: logger,
	}
}

// BuildSearchURL returns the results URL for one keyword, location and page.
// Only filters that are switched on add a query parameter.
func (s *Scraper) BuildSearchURL(filters models.FilterSet, keyword, location string, page int) string {
	baseURL := fmt.Sprintf("%s/jobs/%s-jobs-in-%s", s.config.SiteBaseURL, utils.Slugify(keyword), utils.Slugify(location))
	params := url.Values{}

	if filters.SalaryFrom != nil {
		params.Set("salaryFrom", strconv.Itoa(*filters.SalaryFrom))
	}
	if filters.SalaryTo != nil {
		params.Set("salaryTo", strconv.Itoa(*filters.SalaryTo))
	}
	if filters.DateCreatedOffset != models.RecencyAny {
		params.Set("dateCreatedOffSet", string(filters.DateCreatedOffset))
	}
	if filters.Proximity != nil {
		params.Set("proximity", strconv.Itoa(*filters.Proximity))
	}
	if filters.EasyApply {
		params.Set("isEasyApply", "true")
	}
	if filters.MaxApplicants != nil {
		params.Set("maxApplicants", strconv.Itoa(*filters.MaxApplicants))
	}

	searchURL := fmt.Sprintf("%s?pageno=%d", baseURL, page)
	if encoded := params.Encode(); encoded != "" {
		searchURL += "&" + encoded
	}
	return searchURL
}

// ScrapePage fetches one results page and extracts its listings. The body is
// parsed whatever the status code; only transport errors fail the call.
func (s *Scraper) ScrapePage(ctx context.Context, searchURL string) ([]models.JobListing, error) {
	res, err := s.client.Get(ctx, searchURL, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		s.logger.Warn("[scraper] %s answered %d, parsing body anyway", searchURL, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html of %s: %w", searchURL, err)
	}

	return s.ParseListings(doc)
}

// ParseListings reads every listing card in doc. Each field comes from the
// card's own subtree, so a card missing a field cannot shift the others.
func (s *Scraper) ParseListings(doc *goquery.Document) ([]models.JobListing, error) {
	sel := s.config.Selectors
	jobs := make([]models.JobListing, 0, 25)
	var parseErr error

	doc.Find(sel.Card).EachWithBreak(func(i int, card *goquery.Selection) bool {
		title := firstText(card, sel.Title)
		if title == "" {
			s.logger.Debug("[scraper] card %d has no title, skipped", i)
			return true
		}

		job := models.JobListing{
			Title:     title,
			EasyApply: card.Find(sel.EasyApply).Length() > 0,
		}

		fields := []struct {
			name string
			sel  string
			dst  *string
		}{
			{"salary", sel.Salary, &job.Salary.Raw},
			{"location", sel.Location, &job.Location},
			{"company", sel.Company, &job.Company},
			{"description", sel.Description, &job.Description},
			{"contract type", sel.ContractType, &job.ContractType},
		}
		for _, f := range fields {
			text := firstText(card, f.sel)
			if text == "" {
				if s.config.MissingFieldPolicy == PolicyFail {
					parseErr = fmt.Errorf("card %d (%q): %s not found", i, title, f.name)
					return false
				}
				text = models.NotFound
			}
			*f.dst = text
		}

		jobs = append(jobs, job)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return jobs, nil
}

func firstText(card *goquery.Selection, selector string) string {
	return utils.CleanText(card.Find(selector).First().Text())
}
