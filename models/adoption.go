package models

import "time"

type Adoption struct {
	Adoption_ID      int       `json:"adoptionId" goqu:"skipinsert"`
	User_Profile_ID  int       `json:"userProfileId"`
	School_ID        int       `json:"schoolId"`
	Adoption_Type    string    `json:"adoptionType"`
	Datetime_Adopted time.Time `json:"datetimeAdopted" goqu:"skipinsert"`
	Prayer_Count     int       `json:"prayerCount" goqu:"skipinsert"`
}

const (
	AdoptionTypePrayer  = "prayer"
	AdoptionTypeRevival = "revival"
	AdoptionTypeBoth    = "both"
)

func ValidAdoptionType(adoptionType string) bool {
	switch adoptionType {
	case AdoptionTypePrayer, AdoptionTypeRevival, AdoptionTypeBoth:
		return true
	}
	return false
}

type AdoptionCreate struct {
	School_ID     int    `json:"schoolId"`
	Adoption_Type string `json:"adoptionType"`
}

// AdoptionWithSchool is the join row returned by the "my adoptions" listing.
type AdoptionWithSchool struct {
	Adoption_ID      int       `json:"adoptionId" goqu:"skipinsert"`
	School_ID        int       `json:"schoolId"`
	Adoption_Type    string    `json:"adoptionType"`
	Datetime_Adopted time.Time `json:"datetimeAdopted" goqu:"skipinsert"`
	Prayer_Count     int       `json:"prayerCount" goqu:"skipinsert"`
	School_Name      string    `json:"schoolName"`
	Slug             string    `json:"slug"`
	City             string    `json:"city"`
	School_Status    string    `json:"schoolStatus"`
}
