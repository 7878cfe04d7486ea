package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/CampusPrayer/initializers"
	"github.com/CampusPrayer/models"
	"github.com/CampusPrayer/services"
	"github.com/doug-martin/goqu/v9"
)

func CreatePrayerRequest(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	var create models.PrayerRequestCreate
	if err := c.ShouldBindJSON(&create); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	content := strings.TrimSpace(create.Content)
	if content == "" {
		respondError(c, http.StatusBadRequest, CodeValidation, "Content is required")
		return
	}
	if len(content) > models.MaxPrayerRequestLength {
		respondError(c, http.StatusBadRequest, CodeValidation, "Content exceeds 1000 characters")
		return
	}
	if !models.ValidPrayerRequestCategory(create.Category) {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid prayer request category")
		return
	}

	var school models.School
	found, err := schoolQuery(false).
		Where(goqu.C("school_id").Eq(create.School_ID)).
		ScanStruct(&school)
	if err != nil {
		respondServerError(c, err, "Failed to fetch school")
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, CodeSchoolNotFound, "School not found")
		return
	}

	isUrgent := create.Is_Urgent != nil && *create.Is_Urgent

	var request models.PrayerRequest
	err = initializers.DB.QueryRow(
		`INSERT INTO prayer_request (user_profile_id, school_id, content, category, is_urgent, is_answered, datetime_create, datetime_update)
		 VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
		 RETURNING prayer_request_id, datetime_create`,
		user.User_Profile_ID, create.School_ID, content, create.Category, isUrgent,
	).Scan(&request.Prayer_Request_ID, &request.Datetime_Create)
	if err != nil {
		respondServerError(c, err, "Failed to create prayer request")
		return
	}

	request.User_Profile_ID = user.User_Profile_ID
	request.School_ID = create.School_ID
	request.Content = content
	request.Category = create.Category
	request.Is_Urgent = isUrgent

	if isUrgent {
		go services.NotifyAdoptersOfUrgentRequest(school.School_ID, request.Prayer_Request_ID, user.User_Profile_ID, school.School_Name)
	}

	respondSuccess(c, http.StatusCreated, gin.H{"request": request})
}

// GetSchoolPrayerRequests lists a campus's requests, urgent and unanswered
// first, then newest.
func GetSchoolPrayerRequests(c *gin.Context) {
	schoolID, err := strconv.Atoi(c.Param("school_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidSchoolID, "Invalid school ID")
		return
	}

	count, err := schoolQuery(false).
		Where(goqu.C("school_id").Eq(schoolID)).
		Count()
	if err != nil {
		respondServerError(c, err, "Failed to check school")
		return
	}
	if count == 0 {
		respondError(c, http.StatusNotFound, CodeSchoolNotFound, "School not found")
		return
	}

	var requests []models.PrayerRequest
	err = initializers.DB.From("prayer_request").Select("*").
		Where(goqu.C("school_id").Eq(schoolID)).
		Order(
			goqu.I("is_answered").Asc(),
			goqu.I("is_urgent").Desc(),
			goqu.I("datetime_create").Desc(),
		).
		ScanStructs(&requests)
	if err != nil {
		respondServerError(c, err, "Failed to fetch prayer requests")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"requests": requests})
}

func GetUserPrayerRequests(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	var requests []models.PrayerRequest
	err := initializers.DB.From("prayer_request").Select("*").
		Where(goqu.C("user_profile_id").Eq(user.User_Profile_ID)).
		Order(goqu.I("datetime_create").Desc()).
		ScanStructs(&requests)
	if err != nil {
		respondServerError(c, err, "Failed to fetch prayer requests")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"requests": requests})
}

// AnswerPrayerRequest flips a request to answered. Only the creator or a
// verified campus leader may do it. Answering an already-answered request
// is a no-op: 200 with the unchanged row, the original note and timestamp
// are never overwritten.
func AnswerPrayerRequest(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)
	isLeader := c.MustGet("leader").(bool)

	var answer models.PrayerRequestAnswer
	if err := c.ShouldBindJSON(&answer); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if answer.Prayer_Request_ID <= 0 {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid prayer request ID")
		return
	}

	var note *string
	if answer.Answer_Note != nil {
		trimmed := strings.TrimSpace(*answer.Answer_Note)
		if len(trimmed) > models.MaxAnswerNoteLength {
			trimmed = trimmed[:models.MaxAnswerNoteLength]
		}
		if trimmed != "" {
			note = &trimmed
		}
	}

	var request models.PrayerRequest
	found, err := initializers.DB.From("prayer_request").Select("*").
		Where(goqu.C("prayer_request_id").Eq(answer.Prayer_Request_ID)).
		ScanStruct(&request)
	if err != nil {
		respondServerError(c, err, "Failed to fetch prayer request")
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, CodeNotFound, "Prayer request not found")
		return
	}

	if request.User_Profile_ID != user.User_Profile_ID && !isLeader {
		respondError(c, http.StatusForbidden, CodeForbidden, "Only the request creator or a verified leader can mark it answered")
		return
	}

	if request.Is_Answered {
		respondSuccess(c, http.StatusOK, gin.H{"request": request})
		return
	}

	// Conditional update so two concurrent answers commit exactly one
	// note/timestamp pair.
	err = initializers.DB.QueryRow(
		`UPDATE prayer_request SET
			is_answered = TRUE,
			datetime_answered = NOW(),
			answer_note = $2,
			datetime_update = NOW()
		 WHERE prayer_request_id = $1 AND is_answered = FALSE
		 RETURNING datetime_answered`,
		answer.Prayer_Request_ID, note,
	).Scan(&request.Datetime_Answered)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			// lost the race; reload and echo whatever committed
			_, _ = initializers.DB.From("prayer_request").Select("*").
				Where(goqu.C("prayer_request_id").Eq(answer.Prayer_Request_ID)).
				ScanStruct(&request)
			respondSuccess(c, http.StatusOK, gin.H{"request": request})
			return
		}
		respondServerError(c, err, "Failed to answer prayer request")
		return
	}

	request.Is_Answered = true
	request.Answer_Note = note

	go services.NotifyRequestAnswered(request.User_Profile_ID, user.User_Profile_ID, request.Prayer_Request_ID)

	respondSuccess(c, http.StatusOK, gin.H{"request": request})
}
