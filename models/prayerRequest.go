package models

import "time"

type PrayerRequest struct {
	Prayer_Request_ID int        `json:"prayerRequestId" goqu:"skipinsert"`
	User_Profile_ID   int        `json:"userProfileId"`
	School_ID         int        `json:"schoolId"`
	Content           string     `json:"content"`
	Category          string     `json:"category"`
	Is_Urgent         bool       `json:"isUrgent"`
	Is_Answered       bool       `json:"isAnswered" goqu:"skipinsert"`
	Datetime_Answered *time.Time `json:"datetimeAnswered" goqu:"skipinsert"`
	Answer_Note       *string    `json:"answerNote" goqu:"skipinsert"`
	Datetime_Create   time.Time  `json:"datetimeCreate" goqu:"skipinsert"`
	Datetime_Update   time.Time  `json:"datetimeUpdate" goqu:"skipinsert"`
}

const (
	MaxPrayerRequestLength = 1000
	MaxAnswerNoteLength    = 500
)

var prayerRequestCategories = map[string]bool{
	"academics": true,
	"athletics": true,
	"faculty":   true,
	"students":  true,
	"ministry":  true,
	"revival":   true,
	"other":     true,
}

func ValidPrayerRequestCategory(category string) bool {
	return prayerRequestCategories[category]
}

type PrayerRequestCreate struct {
	School_ID int    `json:"schoolId"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	Is_Urgent *bool  `json:"isUrgent"`
}

type PrayerRequestAnswer struct {
	Prayer_Request_ID int     `json:"requestId"`
	Answer_Note       *string `json:"answerNote"`
}
