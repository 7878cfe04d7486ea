package models

import "time"

type JournalEntry struct {
	Journal_ID      int       `json:"journalId" goqu:"skipinsert"`
	User_Profile_ID int       `json:"userProfileId"`
	School_ID       *int      `json:"schoolId"`
	Entry_Text      string    `json:"entryText"`
	Entry_Date      time.Time `json:"entryDate"`
	Datetime_Create time.Time `json:"datetimeCreate" goqu:"skipinsert"`
	Datetime_Update time.Time `json:"datetimeUpdate" goqu:"skipinsert"`
}

const MaxJournalEntryLength = 5000

type JournalEntryCreate struct {
	School_ID  *int   `json:"schoolId"`
	Entry_Text string `json:"entryText"`
}
