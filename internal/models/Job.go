package models

import (
	"fmt"
	"math"
)

// NotFound is written in place of a field the listing card did not carry.
const NotFound = "Not Found"

type JobListing struct {
	Title        string
	Salary       Salary
	Location     string
	Company      string
	Description  string
	ContractType string
	EasyApply    bool
}

// EasyApplyText renders the easy-apply flag the way the exports show it.
func (j JobListing) EasyApplyText() string {
	if j.EasyApply {
		return "Yes"
	}
	return "No"
}

type SalaryStatus int

const (
	SalaryNotAnnual   SalaryStatus = iota // not an annual figure, passed through
	SalaryConverted                       // converted to the target currency
	SalaryUnconverted                     // parsed but rendered in the base currency
	SalaryUnparsed                        // annual figure that failed to parse
)

func (s SalaryStatus) String() string {
	switch s {
	case SalaryConverted:
		return "converted"
	case SalaryUnconverted:
		return "unconverted"
	case SalaryUnparsed:
		return "unparsed"
	default:
		return "not_annual"
	}
}

// Salary keeps the scraped text next to its normalized rendering.
type Salary struct {
	Raw    string
	Text   string
	Status SalaryStatus
}

type RecencyBucket string

const (
	RecencyAny           RecencyBucket = ""
	RecencyToday         RecencyBucket = "today"
	RecencyLastThreeDays RecencyBucket = "lastthreedays"
	RecencyLastWeek      RecencyBucket = "lastweek"
	RecencyLastTwoWeeks  RecencyBucket = "lasttwoweeks"
)

func (r RecencyBucket) Valid() bool {
	switch r {
	case RecencyAny, RecencyToday, RecencyLastThreeDays, RecencyLastWeek, RecencyLastTwoWeeks:
		return true
	}
	return false
}

// FilterSet holds the search filters. A nil pointer, an empty bucket or a false
// flag means the filter is off and adds nothing to the query.
type FilterSet struct {
	SalaryFrom        *int          `yaml:"salary_from"`
	SalaryTo          *int          `yaml:"salary_to"`
	DateCreatedOffset RecencyBucket `yaml:"date_created_offset"`
	Proximity         *int          `yaml:"proximity"`
	EasyApply         bool          `yaml:"easy_apply"`
	MaxApplicants     *int          `yaml:"max_applicants"`
	Keywords          []string      `yaml:"keywords"`
}

// RateTable maps currency codes to their factor against the base currency.
// A nil table means rates could not be fetched.
type RateTable map[string]float64

// Convert moves amount from one currency to another via the base currency and
// rounds to two decimals. ok is false when either code has no usable rate.
func (r RateTable) Convert(amount float64, from, to string) (float64, bool) {
	fromRate, ok := r[from]
	if !ok || fromRate == 0 {
		return 0, false
	}
	toRate, ok := r[to]
	if !ok {
		return 0, false
	}
	return Round2(amount / fromRate * toRate), true
}

func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// ExportBundle is everything one run collected, in scrape order.
type ExportBundle struct {
	Listings []JobListing
}

func (b *ExportBundle) Add(listings ...JobListing) {
	b.Listings = append(b.Listings, listings...)
}

func (b *ExportBundle) Len() int {
	return len(b.Listings)
}

func (b *ExportBundle) String() string {
	return fmt.Sprintf("ExportBundle(%d listings)", len(b.Listings))
}
