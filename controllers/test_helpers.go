package controllers

import (
	"database/sql"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/CampusPrayer/initializers"
	"github.com/CampusPrayer/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
)

// SetupTestDB creates a mock database and sets it as the global DB for testing
func SetupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	goquDB := goqu.New("postgres", db)

	originalDB := initializers.DB
	initializers.DB = goquDB

	cleanup := func() {
		// Small delay to allow goroutines (like push notifications) to complete
		time.Sleep(10 * time.Millisecond)
		db.Close()
		initializers.DB = originalDB
	}

	return db, mock, cleanup
}

// SetupTestContext creates a test Gin context with a response recorder
func SetupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

// SetAuthenticatedUser sets the currentUser, admin and leader values in the
// Gin context, simulating what the CheckAuth middleware does
func SetAuthenticatedUser(c *gin.Context, user models.UserProfile, isAdmin bool) {
	c.Set("currentUser", user)
	c.Set("rawToken", "test-token")
	c.Set("admin", isAdmin)
	c.Set("leader", user.Verified_Leader)
}

// schoolColumns matches the column order ScanStruct expects for School rows
func schoolColumns() []string {
	return []string{
		"school_id", "school_name", "slug", "latitude", "longitude", "address",
		"city", "status", "is_featured", "adoption_count", "total_prayer_adoptions",
		"total_revival_adoptions", "datetime_last_adopted", "created_by",
		"datetime_create", "updated_by", "datetime_update",
	}
}

// schoolRows builds a one-row result set for a School query
func schoolRows(school models.School) *sqlmock.Rows {
	var lastAdopted interface{}
	if school.Datetime_Last_Adopted != nil {
		lastAdopted = *school.Datetime_Last_Adopted
	}
	return sqlmock.NewRows(schoolColumns()).AddRow(
		school.School_ID, school.School_Name, school.Slug, school.Latitude,
		school.Longitude, school.Address, school.City, school.Status,
		school.Is_Featured, school.Adoption_Count, school.Total_Prayer_Adoptions,
		school.Total_Revival_Adoptions, lastAdopted, school.Created_By,
		school.Datetime_Create, school.Updated_By, school.Datetime_Update,
	)
}
