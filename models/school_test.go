package models

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	suffixPattern := regexp.MustCompile(`^[a-z0-9]{4}$`)

	tests := []struct {
		name     string
		input    string
		expected string // base without the random suffix
	}{
		{"simple name", "State University", "state-university"},
		{"punctuation stripped", "St. Mary's College!", "st-marys-college"},
		{"runs collapsed", "A  B__C--D", "a-b-c-d"},
		{"edge hyphens trimmed", "-Hyphen U-", "hyphen-u"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug := GenerateSlug(tt.input)

			idx := strings.LastIndex(slug, "-")
			assert.Greater(t, idx, 0)
			base, suffix := slug[:idx], slug[idx+1:]

			assert.Equal(t, tt.expected, base)
			assert.Regexp(t, suffixPattern, suffix)
		})
	}
}

func TestGenerateSlug_EmptyBase(t *testing.T) {
	// a name of pure punctuation still yields a non-empty slug
	slug := GenerateSlug("!!!")
	assert.Regexp(t, `^[a-z0-9]{4}$`, slug)
}

func TestGenerateSlug_Unique(t *testing.T) {
	a := GenerateSlug("State University")
	b := GenerateSlug("State University")
	assert.NotEqual(t, a, b)
}

func TestCityFromAddress(t *testing.T) {
	tests := []struct {
		address  string
		expected string
	}{
		{"123 Main St, Springfield, IL", "Springfield"},
		{"1 University Dr, Cleveland, OH 44106", "Cleveland"},
		{"No commas here", ""},
		{"OneSegment, Two", "OneSegment"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CityFromAddress(tt.address))
	}
}

func TestValidAdoptionType(t *testing.T) {
	assert.True(t, ValidAdoptionType(AdoptionTypePrayer))
	assert.True(t, ValidAdoptionType(AdoptionTypeRevival))
	assert.True(t, ValidAdoptionType(AdoptionTypeBoth))
	assert.False(t, ValidAdoptionType("fasting"))
	assert.False(t, ValidAdoptionType(""))
}

func TestValidSchoolStatus(t *testing.T) {
	assert.True(t, ValidSchoolStatus(SchoolStatusActive))
	assert.True(t, ValidSchoolStatus(SchoolStatusArchived))
	assert.False(t, ValidSchoolStatus("deleted"))
}
