package repo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/reed-scraper/internal/models"
)

type jsonJob struct {
	Title        string `json:"Job Title"`
	Salary       string `json:"Salary"`
	Location     string `json:"Location"`
	Company      string `json:"Company"`
	Description  string `json:"Description"`
	ContractType string `json:"Contract Type"`
	EasyApply    string `json:"Easy Apply"`
}

// JobJSONRepository overwrites the day's JSON file with the run's listings.
type JobJSONRepository struct {
	path string
}

func NewJobJSONRepository(files OutputFiles) *JobJSONRepository {
	return &JobJSONRepository{path: files.JSONPath()}
}

func (r *JobJSONRepository) Path() string {
	return r.path
}

func (r *JobJSONRepository) SaveJobs(jobs []models.JobListing) error {
	records := make([]jsonJob, 0, len(jobs))
	for _, job := range jobs {
		records = append(records, jsonJob{
			Title:        job.Title,
			Salary:       job.Salary.Text,
			Location:     job.Location,
			Company:      job.Company,
			Description:  job.Description,
			ContractType: job.ContractType,
			EasyApply:    job.EasyApplyText(),
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("json: encode %d jobs: %w", len(jobs), err)
	}

	if err := os.WriteFile(r.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("json: write %s: %w", r.path, err)
	}
	return nil
}
