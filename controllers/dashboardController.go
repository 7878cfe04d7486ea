package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CampusPrayer/initializers"
	"github.com/CampusPrayer/models"
	"github.com/doug-martin/goqu/v9"
)

// GetUserDashboard aggregates the caller's activity: streak, adoptions,
// journal volume, and request outcomes.
func GetUserDashboard(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	adoptionCount, err := initializers.DB.From("adoption").
		Where(goqu.C("user_profile_id").Eq(user.User_Profile_ID)).
		Count()
	if err != nil {
		respondServerError(c, err, "Failed to count adoptions")
		return
	}

	journalCount, err := initializers.DB.From("journal_entry").
		Where(goqu.C("user_profile_id").Eq(user.User_Profile_ID)).
		Count()
	if err != nil {
		respondServerError(c, err, "Failed to count journal entries")
		return
	}

	openRequests, err := initializers.DB.From("prayer_request").
		Where(
			goqu.C("user_profile_id").Eq(user.User_Profile_ID),
			goqu.C("is_answered").IsFalse(),
		).
		Count()
	if err != nil {
		respondServerError(c, err, "Failed to count open prayer requests")
		return
	}

	answeredRequests, err := initializers.DB.From("prayer_request").
		Where(
			goqu.C("user_profile_id").Eq(user.User_Profile_ID),
			goqu.C("is_answered").IsTrue(),
		).
		Count()
	if err != nil {
		respondServerError(c, err, "Failed to count answered prayer requests")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"prayerStreak":     user.Prayer_Streak,
		"lastPrayerDate":   user.Last_Prayer_Date,
		"adoptionCount":    adoptionCount,
		"journalCount":     journalCount,
		"openRequests":     openRequests,
		"answeredRequests": answeredRequests,
	})
}

// GetSchoolDashboard is the public per-campus view: adopter breakdown and
// prayer request totals.
func GetSchoolDashboard(c *gin.Context) {
	schoolID, err := strconv.Atoi(c.Param("school_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidSchoolID, "Invalid school ID")
		return
	}

	var school models.School
	found, err := schoolQuery(false).
		Where(goqu.C("school_id").Eq(schoolID)).
		ScanStruct(&school)
	if err != nil {
		respondServerError(c, err, "Failed to fetch school")
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, CodeSchoolNotFound, "School not found")
		return
	}

	openRequests, err := initializers.DB.From("prayer_request").
		Where(goqu.C("school_id").Eq(schoolID), goqu.C("is_answered").IsFalse()).
		Count()
	if err != nil {
		respondServerError(c, err, "Failed to count prayer requests")
		return
	}

	answeredRequests, err := initializers.DB.From("prayer_request").
		Where(goqu.C("school_id").Eq(schoolID), goqu.C("is_answered").IsTrue()).
		Count()
	if err != nil {
		respondServerError(c, err, "Failed to count answered requests")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"school":                school,
		"isAdopted":             school.Adoption_Count > 0,
		"totalPrayerAdoptions":  school.Total_Prayer_Adoptions,
		"totalRevivalAdoptions": school.Total_Revival_Adoptions,
		"lastAdoptedAt":         school.Datetime_Last_Adopted,
		"openRequests":          openRequests,
		"answeredRequests":      answeredRequests,
	})
}

// GetGlobalStats is the public landing-page aggregate.
func GetGlobalStats(c *gin.Context) {
	totalSchools, err := schoolQuery(false).
		Where(goqu.C("status").Eq(models.SchoolStatusActive)).
		Count()
	if err != nil {
		respondServerError(c, err, "Failed to count schools")
		return
	}

	adoptedSchools, err := schoolQuery(false).
		Where(
			goqu.C("status").Eq(models.SchoolStatusActive),
			goqu.C("adoption_count").Gt(0),
		).
		Count()
	if err != nil {
		respondServerError(c, err, "Failed to count adopted schools")
		return
	}

	totalAdoptions, err := initializers.DB.From("adoption").Count()
	if err != nil {
		respondServerError(c, err, "Failed to count adoptions")
		return
	}

	answeredRequests, err := initializers.DB.From("prayer_request").
		Where(goqu.C("is_answered").IsTrue()).
		Count()
	if err != nil {
		respondServerError(c, err, "Failed to count answered requests")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"totalSchools":     totalSchools,
		"adoptedSchools":   adoptedSchools,
		"totalAdoptions":   totalAdoptions,
		"answeredRequests": answeredRequests,
	})
}
