package repo

import "github.com/reed-scraper/internal/models"

// JobWriter is satisfied by every export sink.
type JobWriter interface {
	SaveJobs(jobs []models.JobListing) error
	Path() string
}

var (
	_ JobWriter = (*JobCSVRepository)(nil)
	_ JobWriter = (*JobXMLRepository)(nil)
	_ JobWriter = (*JobJSONRepository)(nil)
)
