package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Data engineer", "data-engineer"},
		{"ETL developer", "etl-developer"},
		{"London", "london"},
		{"  Milton   Keynes ", "milton-keynes"},
		{"Zürich", "zurich"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Senior Data Engineer", CleanText("\n  Senior Data \t Engineer  "))
	assert.Equal(t, "", CleanText("   "))
}
