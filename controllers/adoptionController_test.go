package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func postJSON(c *gin.Context, path string, body interface{}) {
	payload, _ := json.Marshal(body)
	c.Request = httptest.NewRequest("POST", path, bytes.NewBuffer(payload))
	c.Request.Header.Set("Content-Type", "application/json")
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response envelope: %v", err)
	}
	return response
}

func errorCode(response map[string]interface{}) string {
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestCreateAdoption_Success(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	school := MockSchool()
	now := time.Now()

	// load school
	mock.ExpectQuery("SELECT").WillReturnRows(schoolRows(school))
	// idempotency pre-check
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// ledger insert
	mock.ExpectQuery("INSERT INTO adoption").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_id", "datetime_adopted"}).AddRow(10, now))

	// registry mutation transaction
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT adoption_count FROM school").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_count"}).AddRow(3))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO school_adopter").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE school").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// best-effort streak update
	mock.ExpectExec("UPDATE user_profile").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// post-mutation stats
	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_count"}).AddRow(4))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	c, w := SetupTestContext()
	SetAuthenticatedUser(c, MockUser(), false)
	postJSON(c, "/adoptions", gin.H{"schoolId": 1, "adoptionType": "both"})

	CreateAdoption(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	response := parseEnvelope(t, w)
	assert.Equal(t, true, response["success"])

	data := response["data"].(map[string]interface{})
	adoption := data["adoption"].(map[string]interface{})
	assert.Equal(t, float64(10), adoption["adoptionId"])
	assert.Equal(t, "both", adoption["adoptionType"])

	stats := data["schoolStats"].(map[string]interface{})
	assert.Equal(t, float64(4), stats["adoptionCount"])
	assert.Equal(t, float64(4), stats["totalAdopters"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAdoption_DefaultsToPrayerType(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	now := time.Now()

	mock.ExpectQuery("SELECT").WillReturnRows(schoolRows(MockSchool()))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("INSERT INTO adoption").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_id", "datetime_adopted"}).AddRow(11, now))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT adoption_count FROM school").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_count"}).AddRow(3))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO school_adopter").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE school").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE user_profile").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_count"}).AddRow(4))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	c, w := SetupTestContext()
	SetAuthenticatedUser(c, MockUser(), false)
	postJSON(c, "/adoptions", gin.H{"schoolId": 1})

	CreateAdoption(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	response := parseEnvelope(t, w)
	data := response["data"].(map[string]interface{})
	adoption := data["adoption"].(map[string]interface{})
	assert.Equal(t, "prayer", adoption["adoptionType"])
}

func TestCreateAdoption_ValidationFailures(t *testing.T) {
	tests := []struct {
		name         string
		body         gin.H
		expectedCode string
	}{
		{
			name:         "missing school id",
			body:         gin.H{"adoptionType": "prayer"},
			expectedCode: CodeInvalidSchoolID,
		},
		{
			name:         "negative school id",
			body:         gin.H{"schoolId": -5},
			expectedCode: CodeInvalidSchoolID,
		},
		{
			name:         "unknown adoption type",
			body:         gin.H{"schoolId": 1, "adoptionType": "fasting"},
			expectedCode: CodeInvalidAdoption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, cleanup := SetupTestDB(t)
			defer cleanup()

			c, w := SetupTestContext()
			SetAuthenticatedUser(c, MockUser(), false)
			postJSON(c, "/adoptions", tt.body)

			CreateAdoption(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.expectedCode, errorCode(parseEnvelope(t, w)))
		})
	}
}

func TestCreateAdoption_SchoolNotFound(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(schoolColumns()))

	c, w := SetupTestContext()
	SetAuthenticatedUser(c, MockUser(), false)
	postJSON(c, "/adoptions", gin.H{"schoolId": 999, "adoptionType": "prayer"})

	CreateAdoption(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeSchoolNotFound, errorCode(parseEnvelope(t, w)))
}

func TestCreateAdoption_AlreadyAdopted(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT").WillReturnRows(schoolRows(MockSchool()))
	// pre-check finds an existing adopter entry
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	c, w := SetupTestContext()
	SetAuthenticatedUser(c, MockUser(), false)
	postJSON(c, "/adoptions", gin.H{"schoolId": 1, "adoptionType": "prayer"})

	CreateAdoption(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeAlreadyAdopted, errorCode(parseEnvelope(t, w)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAdoption_LedgerDuplicateRace(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT").WillReturnRows(schoolRows(MockSchool()))
	// pre-check passes, but a concurrent identical request won the insert
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("INSERT INTO adoption").
		WillReturnError(&pq.Error{Code: "23505"})

	c, w := SetupTestContext()
	SetAuthenticatedUser(c, MockUser(), false)
	postJSON(c, "/adoptions", gin.H{"schoolId": 1, "adoptionType": "prayer"})

	CreateAdoption(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeAlreadyAdopted, errorCode(parseEnvelope(t, w)))
}

func TestCreateAdoption_PartialFailureOnAdopterLimit(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	school := MockSchool()
	school.Adoption_Count = 500
	now := time.Now()

	mock.ExpectQuery("SELECT").WillReturnRows(schoolRows(school))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// ledger commits first
	mock.ExpectQuery("INSERT INTO adoption").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_id", "datetime_adopted"}).AddRow(12, now))
	// registry mutation refuses: campus is full
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT adoption_count FROM school").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_count"}).AddRow(500))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	c, w := SetupTestContext()
	SetAuthenticatedUser(c, MockUser(), false)
	postJSON(c, "/adoptions", gin.H{"schoolId": 1, "adoptionType": "prayer"})

	CreateAdoption(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, CodePartialFailure, errorCode(parseEnvelope(t, w)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserAdoptions(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"adoption_id", "school_id", "adoption_type", "datetime_adopted",
		"prayer_count", "school_name", "slug", "city", "school_status",
	}).
		AddRow(2, 5, "both", now, 12, "State University", "state-university-a1b2", "Springfield", "active").
		AddRow(1, 3, "prayer", now.Add(-24*time.Hour), 4, "Tech College", "tech-college-9z8y", "Shelbyville", "active")
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	c, w := SetupTestContext()
	SetAuthenticatedUser(c, MockUser(), false)
	c.Request = httptest.NewRequest("GET", "/adoptions", nil)

	GetUserAdoptions(c)

	assert.Equal(t, http.StatusOK, w.Code)

	response := parseEnvelope(t, w)
	data := response["data"].(map[string]interface{})
	adoptions := data["adoptions"].([]interface{})
	assert.Len(t, adoptions, 2)

	first := adoptions[0].(map[string]interface{})
	assert.Equal(t, "State University", first["schoolName"])
}

func TestDeleteAdoption_Idempotent(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	// registry: user not on the list, no-op
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT school_id FROM school").
		WillReturnRows(sqlmock.NewRows([]string{"school_id"}).AddRow(1))
	mock.ExpectQuery("DELETE FROM school_adopter").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_type"}))
	mock.ExpectRollback()
	// ledger: nothing to delete either
	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 0))

	c, w := SetupTestContext()
	SetAuthenticatedUser(c, MockUser(), false)
	c.Params = []gin.Param{{Key: "school_id", Value: "1"}}
	c.Request = httptest.NewRequest("DELETE", "/adoptions/1", nil)

	DeleteAdoption(c)

	assert.Equal(t, http.StatusOK, w.Code)

	response := parseEnvelope(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, false, data["removed"])
}

func TestRecountSchoolAdoptions(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("UPDATE school").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_count"}).AddRow(7))

	c, w := SetupTestContext()
	SetAuthenticatedUser(c, MockAdminUser(), true)
	c.Params = []gin.Param{{Key: "school_id", Value: "1"}}
	c.Request = httptest.NewRequest("POST", "/admin/schools/1/recount", nil)

	RecountSchoolAdoptions(c)

	assert.Equal(t, http.StatusOK, w.Code)

	response := parseEnvelope(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["adoptionCount"])
}
