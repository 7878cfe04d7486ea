package controllers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/CampusPrayer/initializers"
	"github.com/CampusPrayer/models"
	"github.com/CampusPrayer/services"
	"github.com/doug-martin/goqu/v9"
)

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}

// CreateAdoption runs the adoption workflow: validate, load school,
// pre-check membership, insert the ledger row, then mutate the registry.
// The ledger's unique (user, school) constraint is the authoritative
// duplicate guard, so it commits first; the registry mutation carries its
// own idempotency check. The two writes are not transactional as a whole:
// a registry failure after the ledger commit is surfaced as PARTIAL_FAILURE
// with enough logged context for an admin recount, never rolled back
// silently.
func CreateAdoption(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	var create models.AdoptionCreate
	if err := c.ShouldBindJSON(&create); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if create.School_ID <= 0 {
		respondError(c, http.StatusBadRequest, CodeInvalidSchoolID, "Invalid school ID")
		return
	}

	if create.Adoption_Type == "" {
		create.Adoption_Type = models.AdoptionTypePrayer
	}
	if !models.ValidAdoptionType(create.Adoption_Type) {
		respondError(c, http.StatusBadRequest, CodeInvalidAdoption, "Adoption type must be prayer, revival, or both")
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

	// Pre-check spares the ledger an insert attempt on the common repeat
	// case; a race slipping past lands on the unique constraint below.
	adopterCount, err := initializers.DB.From("school_adopter").
		Where(
			goqu.C("school_id").Eq(create.School_ID),
			goqu.C("user_profile_id").Eq(user.User_Profile_ID),
		).
		Count()
	if err != nil {
		respondServerError(c, err, "Failed to check adoption status")
		return
	}
	if adopterCount > 0 {
		respondError(c, http.StatusConflict, CodeAlreadyAdopted, "You have already adopted this school")
		return
	}

	var adoption models.Adoption
	adoption.User_Profile_ID = user.User_Profile_ID
	adoption.School_ID = create.School_ID
	adoption.Adoption_Type = create.Adoption_Type

	err = initializers.DB.QueryRow(
		`INSERT INTO adoption (user_profile_id, school_id, adoption_type, datetime_adopted, prayer_count)
		 VALUES ($1, $2, $3, NOW(), 0)
		 RETURNING adoption_id, datetime_adopted`,
		user.User_Profile_ID, create.School_ID, create.Adoption_Type,
	).Scan(&adoption.Adoption_ID, &adoption.Datetime_Adopted)
	if err != nil {
		if isUniqueViolation(err) {
			// lost a race against an identical concurrent request
			respondError(c, http.StatusConflict, CodeAlreadyAdopted, "You have already adopted this school")
			return
		}
		respondServerError(c, err, "Failed to record adoption")
		return
	}

	outcome, err := services.AddSchoolAdopter(create.School_ID, user.User_Profile_ID, create.Adoption_Type)
	if err != nil || outcome == services.AdopterLimitExceeded || outcome == services.AdopterSchoolMissing {
		// Ledger row is committed but the registry was not updated. No
		// automatic rollback; an operator reconciles via the recount
		// endpoint.
		log.Printf(
			"PARTIAL FAILURE: adoption ledger committed but registry mutation failed (user=%d school=%d outcome=%d err=%v)",
			user.User_Profile_ID, create.School_ID, outcome, err,
		)
		respondError(c, http.StatusInternalServerError, CodePartialFailure,
			"Adoption was recorded but campus counters could not be updated; an administrator will reconcile")
		return
	}
	if outcome == services.AdopterAlreadyPresent {
		// Registry already listed the user (leftover from an earlier
		// partial failure); both layers now agree, so continue.
		log.Printf("Registry already listed adopter (user=%d school=%d), continuing", user.User_Profile_ID, create.School_ID)
	}

	// Streak is best-effort; its failure never fails the adoption.
	if err := services.UpdatePrayerStreak(user.User_Profile_ID); err != nil {
		log.Printf("Streak update failed for user %d: %v", user.User_Profile_ID, err)
	}

	var stats struct {
		Adoption_Count int
	}
	if _, err := initializers.DB.From("school").
		Select("adoption_count").
		Where(goqu.C("school_id").Eq(create.School_ID)).
		ScanStruct(&stats); err != nil {
		log.Printf("Failed to read post-adoption counter for school %d: %v", create.School_ID, err)
	}

	totalAdopters, err := initializers.DB.From("school_adopter").
		Where(goqu.C("school_id").Eq(create.School_ID)).
		Count()
	if err != nil {
		log.Printf("Failed to count adopters for school %d: %v", create.School_ID, err)
	}

	respondSuccess(c, http.StatusCreated, gin.H{
		"adoption": adoption,
		"schoolStats": gin.H{
			"totalAdopters": totalAdopters,
			"adoptionCount": stats.Adoption_Count,
		},
	})
}

// GetUserAdoptions lists the caller's ledger rows with school summaries,
// newest first.
func GetUserAdoptions(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	var adoptions []models.AdoptionWithSchool
	err := initializers.DB.From("adoption").
		Select(
			goqu.I("adoption.adoption_id"),
			goqu.I("adoption.school_id"),
			goqu.I("adoption.adoption_type"),
			goqu.I("adoption.datetime_adopted"),
			goqu.I("adoption.prayer_count"),
			goqu.I("school.school_name"),
			goqu.I("school.slug"),
			goqu.I("school.city"),
			goqu.I("school.status").As("school_status"),
		).
		InnerJoin(
			goqu.T("school"),
			goqu.On(goqu.Ex{"adoption.school_id": goqu.I("school.school_id")}),
		).
		Where(goqu.I("adoption.user_profile_id").Eq(user.User_Profile_ID)).
		Order(goqu.I("adoption.datetime_adopted").Desc()).
		ScanStructs(&adoptions)
	if err != nil {
		respondServerError(c, err, "Failed to fetch adoptions")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"adoptions": adoptions})
}

// DeleteAdoption unadopts a school: registry entry first, ledger row
// second, so an interrupted removal leaves the ledger authoritative for the
// recount. Repeat calls are a no-op.
func DeleteAdoption(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	schoolID, err := strconv.Atoi(c.Param("school_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidSchoolID, "Invalid school ID")
		return
	}

	removed, err := services.RemoveSchoolAdopter(schoolID, user.User_Profile_ID)
	if err != nil {
		respondServerError(c, err, "Failed to remove adopter entry")
		return
	}

	result, err := initializers.DB.Delete("adoption").
		Where(
			goqu.C("school_id").Eq(schoolID),
			goqu.C("user_profile_id").Eq(user.User_Profile_ID),
		).
		Executor().Exec()
	if err != nil {
		log.Printf(
			"PARTIAL FAILURE: registry adopter removed but ledger delete failed (user=%d school=%d err=%v)",
			user.User_Profile_ID, schoolID, err,
		)
		respondError(c, http.StatusInternalServerError, CodePartialFailure,
			"Adoption was removed but the ledger could not be updated; an administrator will reconcile")
		return
	}

	ledgerRemoved, _ := result.RowsAffected()

	respondSuccess(c, http.StatusOK, gin.H{
		"removed": removed || ledgerRemoved > 0,
	})
}

// RecountSchoolAdoptions is the admin reconciliation path after a partial
// failure: counters are reset from the ledger.
func RecountSchoolAdoptions(c *gin.Context) {
	schoolID, err := strconv.Atoi(c.Param("school_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidSchoolID, "Invalid school ID")
		return
	}

	adoptionCount, err := services.RecountSchoolAdoptions(schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, CodeSchoolNotFound, "School not found")
			return
		}
		respondServerError(c, err, "Failed to recount adoptions")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"message":       "Adoption counters reconciled from ledger.",
		"schoolId":      schoolID,
		"adoptionCount": adoptionCount,
		"recountedAt":   time.Now().UTC(),
	})
}
