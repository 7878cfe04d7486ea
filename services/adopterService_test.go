package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/CampusPrayer/initializers"
	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
)

func setupTestDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	originalDB := initializers.DB
	initializers.DB = goqu.New("postgres", db)

	cleanup := func() {
		db.Close()
		initializers.DB = originalDB
	}

	return mock, cleanup
}

func TestAddSchoolAdopter_Success(t *testing.T) {
	mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT adoption_count FROM school").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"adoption_count"}).AddRow(3))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(1, 10).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO school_adopter").
		WithArgs(1, 10, "both").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE school").
		WithArgs(1, "both").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	outcome, err := AddSchoolAdopter(1, 10, "both")

	assert.NoError(t, err)
	assert.Equal(t, AdopterAdded, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddSchoolAdopter_AlreadyPresent(t *testing.T) {
	mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT adoption_count FROM school").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_count"}).AddRow(3))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	outcome, err := AddSchoolAdopter(1, 10, "prayer")

	assert.NoError(t, err)
	assert.Equal(t, AdopterAlreadyPresent, outcome)
	// no INSERT, no counter bump
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddSchoolAdopter_LimitExceeded(t *testing.T) {
	mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT adoption_count FROM school").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_count"}).AddRow(500))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	outcome, err := AddSchoolAdopter(1, 10, "prayer")

	assert.NoError(t, err)
	assert.Equal(t, AdopterLimitExceeded, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddSchoolAdopter_SchoolMissing(t *testing.T) {
	mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT adoption_count FROM school").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_count"}))
	mock.ExpectRollback()

	outcome, err := AddSchoolAdopter(999, 10, "prayer")

	assert.NoError(t, err)
	assert.Equal(t, AdopterSchoolMissing, outcome)
}

func TestRemoveSchoolAdopter_Removes(t *testing.T) {
	mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT school_id FROM school").
		WillReturnRows(sqlmock.NewRows([]string{"school_id"}).AddRow(1))
	mock.ExpectQuery("DELETE FROM school_adopter").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_type"}).AddRow("revival"))
	mock.ExpectExec("UPDATE school").
		WithArgs(1, "revival").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	removed, err := RemoveSchoolAdopter(1, 10)

	assert.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Removing a user who is not on the list reports no removal, no error, and
// never touches the counters.
func TestRemoveSchoolAdopter_NoOpWhenAbsent(t *testing.T) {
	mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT school_id FROM school").
		WillReturnRows(sqlmock.NewRows([]string{"school_id"}).AddRow(1))
	mock.ExpectQuery("DELETE FROM school_adopter").
		WillReturnRows(sqlmock.NewRows([]string{"adoption_type"}))
	mock.ExpectRollback()

	removed, err := RemoveSchoolAdopter(1, 10)

	assert.NoError(t, err)
	assert.False(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveSchoolAdopter_SchoolMissing(t *testing.T) {
	mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT school_id FROM school").
		WillReturnRows(sqlmock.NewRows([]string{"school_id"}))
	mock.ExpectRollback()

	removed, err := RemoveSchoolAdopter(999, 10)

	assert.NoError(t, err)
	assert.False(t, removed)
}

func TestRecountSchoolAdoptions(t *testing.T) {
	mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("UPDATE school").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"adoption_count"}).AddRow(42))

	count, err := RecountSchoolAdoptions(1)

	assert.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestUpdatePrayerStreak(t *testing.T) {
	mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("UPDATE user_profile").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, UpdatePrayerStreak(1))
	assert.NoError(t, mock.ExpectationsWereMet())
}
