package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reed-scraper/internal/models"
	"github.com/reed-scraper/internal/utils"
)

var testRates = models.RateTable{"GBP": 1.0, "EUR": 1.15, "USD": 1.27, "CHF": 1.1234}

func TestNormalizeWithoutTargetCurrency(t *testing.T) {
	n := NewSalaryNormalizer("GBP", "", testRates, utils.NewNopLogger())

	tests := []struct {
		raw  string
		want string
	}{
		{"£65,000 per annum", "£65000.0"},
		{"£65,000 - £74,000 per annum", "£65000.0 - £74000.0"},
		{"£32,500.50 per annum", "£32500.5"},
	}

	for _, tt := range tests {
		got := n.Normalize(tt.raw)
		assert.Equal(t, tt.want, got.Text, "Normalize(%q)", tt.raw)
		assert.Equal(t, models.SalaryUnconverted, got.Status)
		assert.Equal(t, tt.raw, got.Raw)
	}
}

func TestNormalizeConverts(t *testing.T) {
	tests := []struct {
		name   string
		target string
		raw    string
		want   string
	}{
		{"range", "EUR", "£65,000 - £74,000 per annum", "EUR 74750.0 - EUR 85100.0"},
		{"single", "EUR", "£50,000 per annum", "EUR 57500.0"},
		{"rounded to two decimals", "CHF", "£33,333 per annum", "CHF 37446.29"},
		{"range order kept", "EUR", "£74,000 - £65,000 per annum", "EUR 85100.0 - EUR 74750.0"},
		{"target equals base", "GBP", "£42,000 per annum", "GBP 42000.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewSalaryNormalizer("GBP", tt.target, testRates, utils.NewNopLogger())
			got := n.Normalize(tt.raw)
			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, models.SalaryConverted, got.Status)
			assert.Equal(t, tt.raw, got.Raw)
		})
	}
}

func TestNormalizeWithoutRatesKeepsBaseCurrency(t *testing.T) {
	n := NewSalaryNormalizer("GBP", "EUR", nil, utils.NewNopLogger())
	assert.False(t, n.ConversionEnabled())

	got := n.Normalize("£65,000 - £74,000 per annum")
	assert.Equal(t, "£65000.0 - £74000.0", got.Text)
	assert.Equal(t, models.SalaryUnconverted, got.Status)
}

func TestNormalizeUnknownTargetCode(t *testing.T) {
	n := NewSalaryNormalizer("GBP", "MAD", testRates, utils.NewNopLogger())
	assert.False(t, n.ConversionEnabled())

	got := n.Normalize("£40,000 per annum")
	assert.Equal(t, "£40000.0", got.Text)
	assert.Equal(t, models.SalaryUnconverted, got.Status)
}

func TestNormalizePassesThroughNonAnnual(t *testing.T) {
	n := NewSalaryNormalizer("GBP", "EUR", testRates, utils.NewNopLogger())

	for _, raw := range []string{"£400 per day", "Competitive", models.NotFound, ""} {
		got := n.Normalize(raw)
		assert.Equal(t, raw, got.Text, "Normalize(%q)", raw)
		assert.Equal(t, models.SalaryNotAnnual, got.Status)
	}
}

func TestNormalizeUnparsableKeepsOriginal(t *testing.T) {
	n := NewSalaryNormalizer("GBP", "EUR", testRates, utils.NewNopLogger())

	for _, raw := range []string{
		"Competitive per annum",
		"£65,000 - per annum",
		"Up to £50,000 per annum",
		"£65,000 - £74,000 per annum + bonus",
	} {
		got := n.Normalize(raw)
		assert.Equal(t, raw, got.Text, "Normalize(%q)", raw)
		assert.Equal(t, models.SalaryUnparsed, got.Status, "Normalize(%q)", raw)
	}
}

func TestNormalizeAppliesSameRulesToEveryListing(t *testing.T) {
	n := NewSalaryNormalizer("GBP", "EUR", testRates, utils.NewNopLogger())

	first := n.Normalize("£10,000 per annum")
	second := n.Normalize("£10,000 per annum")
	assert.Equal(t, first, second)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "74750.0", FormatAmount(74750))
	assert.Equal(t, "1234.5", FormatAmount(1234.5))
	assert.Equal(t, "37446.29", FormatAmount(37446.29))
	assert.Equal(t, "0.0", FormatAmount(0))
}
