package repo

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/reed-scraper/internal/models"
)

type xmlJobs struct {
	XMLName xml.Name `xml:"jobs"`
	Jobs    []xmlJob `xml:"job"`
}

type xmlJob struct {
	Title        string `xml:"title"`
	Salary       string `xml:"salary"`
	Location     string `xml:"location"`
	Company      string `xml:"company"`
	Description  string `xml:"description"`
	ContractType string `xml:"contract_type"`
	EasyApply    string `xml:"easy_apply"`
}

// JobXMLRepository overwrites the day's XML file with the run's listings.
type JobXMLRepository struct {
	path string
}

func NewJobXMLRepository(files OutputFiles) *JobXMLRepository {
	return &JobXMLRepository{path: files.XMLPath()}
}

func (r *JobXMLRepository) Path() string {
	return r.path
}

func (r *JobXMLRepository) SaveJobs(jobs []models.JobListing) error {
	doc := xmlJobs{Jobs: make([]xmlJob, 0, len(jobs))}
	for _, job := range jobs {
		doc.Jobs = append(doc.Jobs, xmlJob{
			Title:        job.Title,
			Salary:       job.Salary.Text,
			Location:     job.Location,
			Company:      job.Company,
			Description:  job.Description,
			ContractType: job.ContractType,
			EasyApply:    job.EasyApplyText(),
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("xml: marshal %d jobs: %w", len(jobs), err)
	}

	data := append([]byte(xml.Header), body...)
	data = append(data, '\n')
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("xml: write %s: %w", r.path, err)
	}
	return nil
}
