package controllers

import (
	"time"

	"github.com/CampusPrayer/models"
	"golang.org/x/crypto/bcrypt"
)

// Test fixture data for use in tests

// MockUser creates a sample adopter for testing
func MockUser() models.UserProfile {
	return models.UserProfile{
		User_Profile_ID: 1,
		Email:           "test@example.com",
		Display_Name:    "Test User",
		Role:            models.RoleAdopter,
		Prayer_Streak:   3,
		Datetime_Create: time.Now(),
		Datetime_Update: time.Now(),
	}
}

// MockUserWithPassword creates a sample user with a bcrypt hashed password
// Password is "password123" - use this in tests
func MockUserWithPassword() models.UserProfile {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := MockUser()
	user.Password = string(hashedPassword)
	return user
}

// MockAdminUser creates a sample admin user for testing
func MockAdminUser() models.UserProfile {
	return models.UserProfile{
		User_Profile_ID: 2,
		Email:           "admin@example.com",
		Display_Name:    "Admin User",
		Role:            models.RoleAdmin,
		Datetime_Create: time.Now(),
		Datetime_Update: time.Now(),
	}
}

// MockLeaderUser creates a verified campus leader for testing
func MockLeaderUser() models.UserProfile {
	instEmail := "leader@university.edu"
	return models.UserProfile{
		User_Profile_ID:     3,
		Email:               "leader@example.com",
		Display_Name:        "Leader User",
		Role:                models.RoleAdopter,
		Verified_Leader:     true,
		Institutional_Email: &instEmail,
		Datetime_Create:     time.Now(),
		Datetime_Update:     time.Now(),
	}
}

// MockSchool creates a sample active school for testing
func MockSchool() models.School {
	return models.School{
		School_ID:       1,
		School_Name:     "State University",
		Slug:            "state-university-a1b2",
		Latitude:        40.0,
		Longitude:       -75.0,
		Address:         "1 University Dr, Springfield, IL",
		City:            "Springfield",
		Status:          models.SchoolStatusActive,
		Adoption_Count:  3,
		Created_By:      2,
		Updated_By:      2,
		Datetime_Create: time.Now(),
		Datetime_Update: time.Now(),
	}
}

// MockPrayerRequest creates a sample unanswered prayer request for testing
func MockPrayerRequest() models.PrayerRequest {
	return models.PrayerRequest{
		Prayer_Request_ID: 1,
		User_Profile_ID:   1,
		School_ID:         1,
		Content:           "Please pray for finals week",
		Category:          "students",
		Is_Urgent:         false,
		Is_Answered:       false,
		Datetime_Create:   time.Now(),
		Datetime_Update:   time.Now(),
	}
}
