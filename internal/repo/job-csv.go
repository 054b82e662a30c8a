package repo

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"github.com/reed-scraper/internal/models"
)

var csvHeader = []string{"Job Title", "Salary", "Location", "Company", "Description", "Contract", "Easy Apply"}

// JobCSVRepository appends listings to the day's CSV file. The header is only
// written into an empty file, so repeated runs share one header.
type JobCSVRepository struct {
	path string
}

func NewJobCSVRepository(files OutputFiles) *JobCSVRepository {
	return &JobCSVRepository{path: files.CSVPath()}
}

func (r *JobCSVRepository) Path() string {
	return r.path
}

func (r *JobCSVRepository) SaveJobs(jobs []models.JobListing) error {
	// The lock spans the emptiness check and the append so two runs on the
	// same day cannot both write a header.
	lock := flock.New(r.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("csv: lock %s: %w", r.path, err)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("csv: open %s: %w", r.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("csv: stat %s: %w", r.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("csv: write header: %w", err)
		}
	}

	for _, job := range jobs {
		row := []string{
			job.Title,
			job.Salary.Text,
			job.Location,
			job.Company,
			job.Description,
			job.ContractType,
			job.EasyApplyText(),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush %s: %w", r.path, err)
	}
	return f.Close()
}
