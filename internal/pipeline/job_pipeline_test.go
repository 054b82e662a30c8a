package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reed-scraper/internal/models"
	"github.com/reed-scraper/internal/repo"
	"github.com/reed-scraper/internal/services"
	"github.com/reed-scraper/internal/utils"
)

const singleListingPage = `<html><body>
<article data-qa="job-card">
  <button class="job-card_jobTitleBtn__block__ZeEY5 btn btn-link">Data Engineer</button>
  <a class="gtmJobListingPostedBy">Acme Analytics</a>
  <ul>
    <li>£65,000 - £74,000 per annum</li>
    <li data-qa="job-card-location">London</li>
    <li>Permanent</li>
  </ul>
  <div class="job-card_jobResultDescription__GaA48"><p>Own the warehouse.</p></div>
  <label class="index-module_label__easyApply__RxLXy">Easy Apply</label>
</article>
</body></html>`

// fakeSite serves the same results page for every search and a fixed rate
// table, and records the search URLs it was asked for.
type fakeSite struct {
	mu       sync.Mutex
	searches []string
	rateHits int
	srv      *httptest.Server
}

func newFakeSite(t *testing.T, page string, ratesStatus int) *fakeSite {
	t.Helper()
	f := &fakeSite{}
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.searches = append(f.searches, r.URL.RequestURI())
		f.mu.Unlock()
		_, _ = w.Write([]byte(page))
	})
	mux.HandleFunc("/rates/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.rateHits++
		f.mu.Unlock()
		w.WriteHeader(ratesStatus)
		_, _ = w.Write([]byte(`{"base":"GBP","rates":{"GBP":1.0,"EUR":1.15}}`))
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeSite) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

type testRun struct {
	pipeline *JobPipeline
	files    repo.OutputFiles
}

func newTestRun(t *testing.T, site *fakeSite, dir string) testRun {
	t.Helper()
	logger := utils.NewNopLogger()
	files := repo.NewOutputFiles(dir, time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC))

	client := utils.NewHTTPClient(utils.HTTPConfig{Timeout: 5 * time.Second})
	rates := services.NewExchangeRateService(site.srv.URL+"/rates/", client)
	scraper := NewScraper(Config{SiteBaseURL: site.srv.URL}, logger)

	p := NewJobPipeline(scraper, &rates, repo.NewURLLog(files), logger,
		repo.NewJobCSVRepository(files),
		repo.NewJobXMLRepository(files),
		repo.NewJobJSONRepository(files),
	)
	return testRun{pipeline: p, files: files}
}

func dataEngineerSearch() Search {
	return Search{
		Locations: []string{"London"},
		Filters: models.FilterSet{
			SalaryFrom: intPtr(10000),
			SalaryTo:   intPtr(80000),
			EasyApply:  true,
			Keywords:   []string{"Data engineer"},
		},
		PagesToScrape:  1,
		BaseCurrency:   "GBP",
		TargetCurrency: "EUR",
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func readJSON(t *testing.T, path string) []map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []map[string]string
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func TestRunEndToEnd(t *testing.T) {
	site := newFakeSite(t, singleListingPage, http.StatusOK)
	run := newTestRun(t, site, t.TempDir())

	summary, err := run.pipeline.Run(context.Background(), dataEngineerSearch())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Listings)
	assert.Equal(t, 1, summary.URLs)
	assert.True(t, summary.Rates)
	_, err = uuid.Parse(summary.RunID)
	assert.NoError(t, err)
	assert.Equal(t, []string{run.files.CSVPath(), run.files.XMLPath(), run.files.JSONPath()}, summary.Files)

	searches := site.requested()
	require.Len(t, searches, 1)
	assert.Contains(t, searches[0], "/jobs/data-engineer-jobs-in-london?pageno=1")
	assert.Contains(t, searches[0], "isEasyApply=true&salaryFrom=10000&salaryTo=80000")

	urlLog, err := os.ReadFile(run.files.URLLogPath())
	require.NoError(t, err)
	assert.Equal(t, site.srv.URL+searches[0]+"\n", string(urlLog))

	rows := readCSV(t, run.files.CSVPath())
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Job Title", "Salary", "Location", "Company", "Description", "Contract", "Easy Apply"}, rows[0])
	assert.Equal(t, []string{"Data Engineer", "EUR 74750.0 - EUR 85100.0", "London", "Acme Analytics", "Own the warehouse.", "Permanent", "Yes"}, rows[1])

	records := readJSON(t, run.files.JSONPath())
	require.Len(t, records, 1)
	assert.Equal(t, "EUR 74750.0 - EUR 85100.0", records[0]["Salary"])
	assert.Equal(t, "Permanent", records[0]["Contract Type"])

	xmlData, err := os.ReadFile(run.files.XMLPath())
	require.NoError(t, err)
	assert.Contains(t, string(xmlData), "<salary>EUR 74750.0 - EUR 85100.0</salary>")
}

func TestRunRepeatedAppendsCSVAndOverwritesOthers(t *testing.T) {
	site := newFakeSite(t, singleListingPage, http.StatusOK)
	dir := t.TempDir()

	for i := 0; i < 3; i++ {
		_, err := newTestRun(t, site, dir).pipeline.Run(context.Background(), dataEngineerSearch())
		require.NoError(t, err)
	}

	files := newTestRun(t, site, dir).files
	rows := readCSV(t, files.CSVPath())
	assert.Len(t, rows, 4, "one header plus one row per run")
	headers := 0
	for _, row := range rows {
		if row[0] == "Job Title" {
			headers++
		}
	}
	assert.Equal(t, 1, headers)

	assert.Len(t, readJSON(t, files.JSONPath()), 1)
}

func TestRunWithoutRatesKeepsPounds(t *testing.T) {
	site := newFakeSite(t, singleListingPage, http.StatusInternalServerError)
	run := newTestRun(t, site, t.TempDir())

	summary, err := run.pipeline.Run(context.Background(), dataEngineerSearch())
	require.NoError(t, err)
	assert.False(t, summary.Rates)

	records := readJSON(t, run.files.JSONPath())
	require.Len(t, records, 1)
	assert.Equal(t, "£65000.0 - £74000.0", records[0]["Salary"])
}

func TestRunSkipsRateLookupWithoutTarget(t *testing.T) {
	site := newFakeSite(t, singleListingPage, http.StatusOK)
	run := newTestRun(t, site, t.TempDir())

	search := dataEngineerSearch()
	search.TargetCurrency = ""
	_, err := run.pipeline.Run(context.Background(), search)
	require.NoError(t, err)

	site.mu.Lock()
	assert.Equal(t, 0, site.rateHits)
	site.mu.Unlock()
	assert.Equal(t, "£65000.0 - £74000.0", readJSON(t, run.files.JSONPath())[0]["Salary"])
}

func TestRunTraversalOrder(t *testing.T) {
	site := newFakeSite(t, singleListingPage, http.StatusOK)
	run := newTestRun(t, site, t.TempDir())

	search := dataEngineerSearch()
	search.Locations = []string{"London", "Leeds"}
	search.PagesToScrape = 2
	search.Filters = models.FilterSet{Keywords: []string{"ETL developer", "Data engineer"}}

	summary, err := run.pipeline.Run(context.Background(), search)
	require.NoError(t, err)
	assert.Equal(t, 8, summary.URLs)
	assert.Equal(t, 8, summary.Listings)

	want := []string{
		"/jobs/etl-developer-jobs-in-london?pageno=1",
		"/jobs/data-engineer-jobs-in-london?pageno=1",
		"/jobs/etl-developer-jobs-in-london?pageno=2",
		"/jobs/data-engineer-jobs-in-london?pageno=2",
		"/jobs/etl-developer-jobs-in-leeds?pageno=1",
		"/jobs/data-engineer-jobs-in-leeds?pageno=1",
		"/jobs/etl-developer-jobs-in-leeds?pageno=2",
		"/jobs/data-engineer-jobs-in-leeds?pageno=2",
	}
	assert.Equal(t, want, site.requested())

	rows := readCSV(t, run.files.CSVPath())
	assert.Len(t, rows, summary.Listings+1)

	urlLog, err := os.ReadFile(run.files.URLLogPath())
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(urlLog)), "\n"), 8)
}

func TestRunAbortsBeforeExportOnFetchError(t *testing.T) {
	site := newFakeSite(t, singleListingPage, http.StatusOK)
	run := newTestRun(t, site, t.TempDir())
	site.srv.Close()

	_, err := run.pipeline.Run(context.Background(), dataEngineerSearch())
	require.Error(t, err)

	_, statErr := os.Stat(run.files.CSVPath())
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "nothing is exported when a page fails")

	_, statErr = os.Stat(run.files.URLLogPath())
	assert.NoError(t, statErr, "the URL was logged before the failed fetch")
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	site := newFakeSite(t, singleListingPage, http.StatusOK)
	run := newTestRun(t, site, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	search := dataEngineerSearch()
	search.TargetCurrency = ""
	_, err := run.pipeline.Run(ctx, search)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, site.requested())
}
