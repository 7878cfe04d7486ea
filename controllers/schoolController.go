package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/CampusPrayer/initializers"
	"github.com/CampusPrayer/models"
	"github.com/doug-martin/goqu/v9"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// schoolQuery is the base dataset for every school read. Archived campuses
// are filtered out unless the caller explicitly opts in, so no listing ever
// leaks them by accident.
func schoolQuery(includeArchived bool) *goqu.SelectDataset {
	ds := initializers.DB.From("school")
	if !includeArchived {
		ds = ds.Where(goqu.C("status").Neq(models.SchoolStatusArchived))
	}
	return ds
}

// escapeLikeTerm escapes LIKE/ILIKE wildcards so a search term is matched
// literally. "100%" must not match everything.
func escapeLikeTerm(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, `%`, `\%`)
	term = strings.ReplaceAll(term, `_`, `\_`)
	return term
}

func parsePaging(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func GetSchools(c *gin.Context) {
	page, limit := parsePaging(c)

	query := schoolQuery(false)
	if status := c.Query("status"); status != "" {
		if !models.ValidSchoolStatus(status) || status == models.SchoolStatusArchived {
			respondError(c, http.StatusBadRequest, CodeValidation, "Invalid status filter")
			return
		}
		query = query.Where(goqu.C("status").Eq(status))
	}

	var schools []models.School
	err := query.Select("*").
		Order(goqu.I("adoption_count").Desc(), goqu.I("school_name").Asc()).
		Limit(uint(limit)).
		Offset(uint((page - 1) * limit)).
		ScanStructs(&schools)
	if err != nil {
		respondServerError(c, err, "Failed to fetch schools")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"schools": schools,
		"page":    page,
		"limit":   limit,
	})
}

func GetSchool(c *gin.Context) {
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

	respondSuccess(c, http.StatusOK, gin.H{
		"school":    school,
		"isAdopted": school.Adoption_Count > 0,
	})
}

func GetSchoolBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, http.StatusBadRequest, CodeValidation, "Slug is required")
		return
	}

	var school models.School
	found, err := schoolQuery(false).
		Where(goqu.C("slug").Eq(slug)).
		ScanStruct(&school)
	if err != nil {
		respondServerError(c, err, "Failed to fetch school")
		return
	}

	if !found {
		respondError(c, http.StatusNotFound, CodeSchoolNotFound, "School not found")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"school":    school,
		"isAdopted": school.Adoption_Count > 0,
	})
}

func GetFeaturedSchools(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var schools []models.School
	err = schoolQuery(false).
		Where(goqu.C("status").Eq(models.SchoolStatusActive), goqu.C("is_featured").IsTrue()).
		Order(goqu.I("adoption_count").Desc()).
		Limit(uint(limit)).
		ScanStructs(&schools)
	if err != nil {
		respondServerError(c, err, "Failed to fetch featured schools")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"schools": schools})
}

func GetMostAdoptedSchools(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var schools []models.School
	err = schoolQuery(false).
		Where(goqu.C("status").Eq(models.SchoolStatusActive)).
		Order(goqu.I("adoption_count").Desc(), goqu.I("datetime_create").Desc()).
		Limit(uint(limit)).
		ScanStructs(&schools)
	if err != nil {
		respondServerError(c, err, "Failed to fetch most adopted schools")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"schools": schools})
}

func SearchSchools(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		respondError(c, http.StatusBadRequest, CodeValidation, "Search term is required")
		return
	}

	page, limit := parsePaging(c)
	pattern := "%" + escapeLikeTerm(term) + "%"

	query := schoolQuery(false).Where(
		goqu.Or(
			goqu.C("school_name").ILike(pattern),
			goqu.C("city").ILike(pattern),
			goqu.C("address").ILike(pattern),
		),
	)

	if status := c.Query("status"); status != "" {
		if !models.ValidSchoolStatus(status) {
			respondError(c, http.StatusBadRequest, CodeValidation, "Invalid status filter")
			return
		}
		query = query.Where(goqu.C("status").Eq(status))
	}

	var schools []models.School
	err := query.Select("*").
		Order(goqu.I("adoption_count").Desc(), goqu.I("school_name").Asc()).
		Limit(uint(limit)).
		Offset(uint((page - 1) * limit)).
		ScanStructs(&schools)
	if err != nil {
		respondServerError(c, err, "Failed to search schools")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"schools": schools,
		"page":    page,
		"limit":   limit,
	})
}

// GetSchoolAdopters returns the school summary plus its adopter list.
// totalAdopters is the live length of the list; adoptionCount echoes the
// stored counter so drift is visible to callers.
func GetSchoolAdopters(c *gin.Context) {
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

	var adopters []models.SchoolAdopter
	err = initializers.DB.From("school_adopter").
		Where(goqu.C("school_id").Eq(schoolID)).
		Order(goqu.I("datetime_adopted").Asc()).
		ScanStructs(&adopters)
	if err != nil {
		respondServerError(c, err, "Failed to fetch adopters")
		return
	}

	prayerCount := 0
	revivalCount := 0
	for _, adopter := range adopters {
		if adopter.Adoption_Type == models.AdoptionTypePrayer || adopter.Adoption_Type == models.AdoptionTypeBoth {
			prayerCount++
		}
		if adopter.Adoption_Type == models.AdoptionTypeRevival || adopter.Adoption_Type == models.AdoptionTypeBoth {
			revivalCount++
		}
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"school": models.SchoolSummary{
			School_ID:   school.School_ID,
			School_Name: school.School_Name,
			Slug:        school.Slug,
			Address:     school.Address,
			City:        school.City,
		},
		"adopters":            adopters,
		"totalAdopters":       len(adopters),
		"adoptionCount":       school.Adoption_Count,
		"prayerAdopterCount":  prayerCount,
		"revivalAdopterCount": revivalCount,
	})
}

func validateCoordinates(lat float64, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func insertSchool(c *gin.Context, create models.SchoolCreate, status string, createdBy int) {
	name := strings.TrimSpace(create.School_Name)
	if name == "" {
		respondError(c, http.StatusBadRequest, CodeValidation, "School name is required")
		return
	}
	if !validateCoordinates(create.Latitude, create.Longitude) {
		respondError(c, http.StatusBadRequest, CodeValidation, "Coordinates out of range")
		return
	}

	nameCount, err := initializers.DB.From("school").
		Where(goqu.C("school_name").Eq(name)).
		Count()
	if err != nil {
		respondServerError(c, err, "Failed to check school name")
		return
	}
	if nameCount > 0 {
		respondError(c, http.StatusConflict, CodeConflict, "A school with that name already exists")
		return
	}

	city := strings.TrimSpace(create.City)
	if city == "" {
		city = models.CityFromAddress(create.Address)
	}

	newSchool := models.School{
		School_Name: name,
		Slug:        models.GenerateSlug(name),
		Latitude:    create.Latitude,
		Longitude:   create.Longitude,
		Address:     strings.TrimSpace(create.Address),
		City:        city,
		Status:      status,
		Is_Featured: create.Is_Featured != nil && *create.Is_Featured,
		Created_By:  createdBy,
		Updated_By:  createdBy,
	}

	insert := initializers.DB.Insert("school").Rows(newSchool).Executor()
	if _, err := insert.Exec(); err != nil {
		respondServerError(c, err, "Failed to create school")
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{
		"message": "School created successfully.",
		"school":  newSchool,
	})
}

// CreateSchool is the admin path; campuses go live immediately.
func CreateSchool(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	var create models.SchoolCreate
	if err := c.ShouldBindJSON(&create); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	insertSchool(c, create, models.SchoolStatusActive, user.User_Profile_ID)
}

// SubmitSchool lets any authenticated user propose a campus; it sits in
// pending_review until an admin approves it via the status endpoint.
func SubmitSchool(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	var create models.SchoolCreate
	if err := c.ShouldBindJSON(&create); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	create.Is_Featured = nil

	insertSchool(c, create, models.SchoolStatusPendingReview, user.User_Profile_ID)
}

func UpdateSchool(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	schoolID, err := strconv.Atoi(c.Param("school_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidSchoolID, "Invalid school ID")
		return
	}

	var update models.SchoolUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	var school models.School
	found, err := schoolQuery(true).
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

	record := goqu.Record{
		"updated_by":      user.User_Profile_ID,
		"datetime_update": goqu.L("NOW()"),
	}

	if update.School_Name != nil {
		name := strings.TrimSpace(*update.School_Name)
		if name == "" {
			respondError(c, http.StatusBadRequest, CodeValidation, "School name cannot be blank")
			return
		}
		if name != school.School_Name {
			record["school_name"] = name
			// slug is immutable except on rename
			record["slug"] = models.GenerateSlug(name)
		}
	}

	lat, lng := school.Latitude, school.Longitude
	if update.Latitude != nil {
		lat = *update.Latitude
	}
	if update.Longitude != nil {
		lng = *update.Longitude
	}
	if !validateCoordinates(lat, lng) {
		respondError(c, http.StatusBadRequest, CodeValidation, "Coordinates out of range")
		return
	}
	if update.Latitude != nil {
		record["latitude"] = lat
	}
	if update.Longitude != nil {
		record["longitude"] = lng
	}

	if update.Address != nil {
		record["address"] = strings.TrimSpace(*update.Address)
	}
	if update.City != nil {
		record["city"] = strings.TrimSpace(*update.City)
	} else if update.Address != nil && school.City == "" {
		record["city"] = models.CityFromAddress(*update.Address)
	}
	if update.Is_Featured != nil {
		record["is_featured"] = *update.Is_Featured
	}

	updateExec := initializers.DB.Update("school").
		Set(record).
		Where(goqu.C("school_id").Eq(schoolID)).
		Executor()
	if _, err := updateExec.Exec(); err != nil {
		respondServerError(c, err, "Failed to update school")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "School updated successfully."})
}

// UpdateSchoolStatus handles approval (pending_review -> active) and
// archiving. Archiving is a status flip, never a delete.
func UpdateSchoolStatus(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	schoolID, err := strconv.Atoi(c.Param("school_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidSchoolID, "Invalid school ID")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if !models.ValidSchoolStatus(body.Status) {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid school status")
		return
	}

	result, err := initializers.DB.Update("school").
		Set(goqu.Record{
			"status":          body.Status,
			"updated_by":      user.User_Profile_ID,
			"datetime_update": goqu.L("NOW()"),
		}).
		Where(goqu.C("school_id").Eq(schoolID)).
		Executor().Exec()
	if err != nil {
		respondServerError(c, err, "Failed to update school status")
		return
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		respondError(c, http.StatusNotFound, CodeSchoolNotFound, "School not found")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "School status updated."})
}
