package repo

import (
	"fmt"
	"os"
)

// URLLog appends every generated search URL to a text file, one per line.
type URLLog struct {
	path string
}

func NewURLLog(files OutputFiles) *URLLog {
	return &URLLog{path: files.URLLogPath()}
}

func (l *URLLog) Path() string {
	return l.path
}

func (l *URLLog) Append(url string) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open url log %s: %w", l.path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, url); err != nil {
		return fmt.Errorf("write url log %s: %w", l.path, err)
	}
	return nil
}
