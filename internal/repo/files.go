package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const dateLayout = "2006-01-02"

// OutputFiles names every file a run writes. All names carry the run date so
// runs on the same day share files.
type OutputFiles struct {
	Dir  string
	Date string
}

func NewOutputFiles(dir string, now time.Time) OutputFiles {
	if dir == "" {
		dir = "."
	}
	return OutputFiles{Dir: dir, Date: now.Format(dateLayout)}
}

func (o OutputFiles) URLLogPath() string {
	return filepath.Join(o.Dir, fmt.Sprintf("generated_urls_%s.txt", o.Date))
}

func (o OutputFiles) CSVPath() string {
	return filepath.Join(o.Dir, fmt.Sprintf("job_listings_%s.csv", o.Date))
}

func (o OutputFiles) XMLPath() string {
	return filepath.Join(o.Dir, fmt.Sprintf("job_listings_%s.xml", o.Date))
}

func (o OutputFiles) JSONPath() string {
	return filepath.Join(o.Dir, fmt.Sprintf("job_listings_%s.json", o.Date))
}

// EnsureDir creates the output directory if needed.
func (o OutputFiles) EnsureDir() error {
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", o.Dir, err)
	}
	return nil
}
