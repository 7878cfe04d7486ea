package controllers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/CampusPrayer/initializers"
	"github.com/CampusPrayer/models"
	"github.com/CampusPrayer/services"
	"github.com/doug-martin/goqu/v9"
)

func CreateJournalEntry(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	var create models.JournalEntryCreate
	if err := c.ShouldBindJSON(&create); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	text := strings.TrimSpace(create.Entry_Text)
	if text == "" {
		respondError(c, http.StatusBadRequest, CodeValidation, "Entry text is required")
		return
	}
	if len(text) > models.MaxJournalEntryLength {
		respondError(c, http.StatusBadRequest, CodeValidation, "Entry text exceeds 5000 characters")
		return
	}

	if create.School_ID != nil {
		count, err := schoolQuery(false).
			Where(goqu.C("school_id").Eq(*create.School_ID)).
			Count()
		if err != nil {
			respondServerError(c, err, "Failed to check school")
			return
		}
		if count == 0 {
			respondError(c, http.StatusNotFound, CodeSchoolNotFound, "School not found")
			return
		}
	}

	var entry models.JournalEntry
	err := initializers.DB.QueryRow(
		`INSERT INTO journal_entry (user_profile_id, school_id, entry_text, entry_date, datetime_create, datetime_update)
		 VALUES ($1, $2, $3, NOW(), NOW(), NOW())
		 RETURNING journal_id, entry_date`,
		user.User_Profile_ID, create.School_ID, text,
	).Scan(&entry.Journal_ID, &entry.Entry_Date)
	if err != nil {
		respondServerError(c, err, "Failed to create journal entry")
		return
	}

	entry.User_Profile_ID = user.User_Profile_ID
	entry.School_ID = create.School_ID
	entry.Entry_Text = text

	// A reflection tied to a campus counts as a prayer action for the streak.
	if create.School_ID != nil {
		if err := services.UpdatePrayerStreak(user.User_Profile_ID); err != nil {
			log.Printf("Streak update failed for user %d: %v", user.User_Profile_ID, err)
		}
	}

	respondSuccess(c, http.StatusCreated, gin.H{"entry": entry})
}

func GetUserJournalEntries(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	var entries []models.JournalEntry
	err := initializers.DB.From("journal_entry").Select("*").
		Where(goqu.C("user_profile_id").Eq(user.User_Profile_ID)).
		Order(goqu.I("entry_date").Desc()).
		ScanStructs(&entries)
	if err != nil {
		respondServerError(c, err, "Failed to fetch journal entries")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"entries": entries})
}

// DeleteJournalEntry removes an entry; only its owner may do so.
func DeleteJournalEntry(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	journalID, err := strconv.Atoi(c.Param("journal_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid journal entry ID")
		return
	}

	var entry models.JournalEntry
	found, err := initializers.DB.From("journal_entry").Select("*").
		Where(goqu.C("journal_id").Eq(journalID)).
		ScanStruct(&entry)
	if err != nil {
		respondServerError(c, err, "Failed to fetch journal entry")
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, CodeNotFound, "Journal entry not found")
		return
	}

	if entry.User_Profile_ID != user.User_Profile_ID {
		respondError(c, http.StatusForbidden, CodeForbidden, "You can only delete your own journal entries")
		return
	}

	if _, err := initializers.DB.Delete("journal_entry").
		Where(goqu.C("journal_id").Eq(journalID)).
		Executor().Exec(); err != nil {
		respondServerError(c, err, "Failed to delete journal entry")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "Journal entry deleted."})
}
