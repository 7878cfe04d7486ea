package models

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"time"
)

type School struct {
	School_ID               int        `json:"schoolId" goqu:"skipinsert"`
	School_Name             string     `json:"schoolName"`
	Slug                    string     `json:"slug"`
	Latitude                float64    `json:"latitude"`
	Longitude               float64    `json:"longitude"`
	Address                 string     `json:"address"`
	City                    string     `json:"city"`
	Status                  string     `json:"status"`
	Is_Featured             bool       `json:"isFeatured"`
	Adoption_Count          int        `json:"adoptionCount" goqu:"skipinsert"`
	Total_Prayer_Adoptions  int        `json:"totalPrayerAdoptions" goqu:"skipinsert"`
	Total_Revival_Adoptions int        `json:"totalRevivalAdoptions" goqu:"skipinsert"`
	Datetime_Last_Adopted   *time.Time `json:"datetimeLastAdopted" goqu:"skipinsert"`
	Created_By              int        `json:"createdBy"`
	Datetime_Create         time.Time  `json:"datetimeCreate" goqu:"skipinsert"`
	Updated_By              int        `json:"updatedBy"`
	Datetime_Update         time.Time  `json:"datetimeUpdate" goqu:"skipinsert"`
}

const (
	SchoolStatusActive        = "active"
	SchoolStatusInactive      = "inactive"
	SchoolStatusPendingReview = "pending_review"
	SchoolStatusArchived      = "archived"
)

// MaxSchoolAdopters bounds the adopter list per campus.
const MaxSchoolAdopters = 500

func ValidSchoolStatus(status string) bool {
	switch status {
	case SchoolStatusActive, SchoolStatusInactive, SchoolStatusPendingReview, SchoolStatusArchived:
		return true
	}
	return false
}

type SchoolCreate struct {
	School_Name string  `json:"schoolName"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Is_Featured *bool   `json:"isFeatured"`
}

type SchoolUpdate struct {
	School_Name *string  `json:"schoolName"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	Is_Featured *bool    `json:"isFeatured"`
}

// SchoolSummary is the trimmed shape embedded in adoption listings and
// the public adopters endpoint.
type SchoolSummary struct {
	School_ID   int    `json:"schoolId" goqu:"skipinsert"`
	School_Name string `json:"schoolName"`
	Slug        string `json:"slug"`
	Address     string `json:"address"`
	City        string `json:"city"`
}

type SchoolAdopter struct {
	School_Adopter_ID int       `json:"schoolAdopterId" goqu:"skipinsert"`
	School_ID         int       `json:"schoolId"`
	User_Profile_ID   int       `json:"userProfileId"`
	Adoption_Type     string    `json:"adoptionType"`
	Datetime_Adopted  time.Time `json:"datetimeAdopted" goqu:"skipinsert"`
}

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
)

const slugSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateSlug derives a URL-safe slug from a school name and appends a
// random 4-character suffix so two schools with the same name never collide.
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugCollapse.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(slugSuffixAlphabet))))
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			n = big.NewInt(int64(i))
		}
		suffix[i] = slugSuffixAlphabet[n.Int64()]
	}

	if slug == "" {
		return string(suffix)
	}
	return slug + "-" + string(suffix)
}

// CityFromAddress guesses a city from a comma-separated address, taking the
// second-to-last segment ("123 Main St, Springfield, IL" -> "Springfield").
// Best effort only; returns "" when the address has fewer than two segments.
func CityFromAddress(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-2])
}
