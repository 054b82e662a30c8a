package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reed-scraper/internal/models"
	"github.com/reed-scraper/internal/utils"
)

const (
	annualMarker   = "per annum"
	rangeSeparator = " - "
	poundSymbol    = "£"
)

// SalaryNormalizer parses annual salary text and converts it to the target
// currency. The same settings and rate table apply to every listing in a run.
type SalaryNormalizer struct {
	base   string
	target string
	rates  models.RateTable
	logger *utils.Logger
}

// NewSalaryNormalizer: an empty target keeps figures in pounds; a nil rate
// table disables conversion.
func NewSalaryNormalizer(base, target string, rates models.RateTable, logger *utils.Logger) *SalaryNormalizer {
	return &SalaryNormalizer{
		base:   base,
		target: target,
		rates:  rates,
		logger: logger,
	}
}

// ConversionEnabled reports whether figures will actually be converted.
func (n *SalaryNormalizer) ConversionEnabled() bool {
	if n.target == "" || n.rates == nil {
		return false
	}
	_, okBase := n.rates[n.base]
	_, okTarget := n.rates[n.target]
	return okBase && okTarget
}

// Normalize never fails: text it cannot handle comes back unchanged with a
// status saying why.
func (n *SalaryNormalizer) Normalize(raw string) models.Salary {
	out := models.Salary{Raw: raw, Text: raw, Status: models.SalaryNotAnnual}
	if !strings.Contains(raw, annualMarker) {
		return out
	}

	values, err := parseAnnual(raw)
	if err != nil {
		n.logger.Warn("[salary] Skipping salary conversion for: %s (%v)", raw, err)
		out.Status = models.SalaryUnparsed
		return out
	}

	if n.target == "" {
		out.Text = render(poundSymbol, values)
		out.Status = models.SalaryUnconverted
		return out
	}

	converted := make([]float64, len(values))
	for i, v := range values {
		c, ok := n.convert(v)
		if !ok {
			n.logger.Debug("[salary] No rate for %s→%s, keeping %s", n.base, n.target, raw)
			out.Text = render(poundSymbol, values)
			out.Status = models.SalaryUnconverted
			return out
		}
		converted[i] = c
	}

	out.Text = render(n.target+" ", converted)
	out.Status = models.SalaryConverted
	return out
}

func (n *SalaryNormalizer) convert(amount float64) (float64, bool) {
	if n.target == n.base {
		return amount, true
	}
	if n.rates == nil {
		return 0, false
	}
	return n.rates.Convert(amount, n.base, n.target)
}

// parseAnnual turns "£65,000 - £74,000 per annum" into [65000 74000].
func parseAnnual(raw string) ([]float64, error) {
	text := strings.ReplaceAll(raw, poundSymbol, "")
	text = strings.ReplaceAll(text, ",", "")
	text = strings.ReplaceAll(text, " "+annualMarker, "")

	parts := []string{text}
	if strings.Contains(text, rangeSeparator) {
		parts = strings.Split(text, rangeSeparator)[:2]
	}

	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", strings.TrimSpace(p))
		}
		values = append(values, v)
	}
	return values, nil
}

func render(prefix string, values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = prefix + FormatAmount(v)
	}
	return strings.Join(parts, rangeSeparator)
}

// FormatAmount prints the shortest exact decimal and always keeps a fractional
// part: 74750 → "74750.0", 1234.5 → "1234.5".
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
