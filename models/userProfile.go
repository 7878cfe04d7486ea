package models

import "time"

type UserProfile struct {
	User_Profile_ID     int        `json:"userProfileId" goqu:"skipinsert"`
	Email               string     `json:"email"`
	Password            string     `json:"-"`
	Display_Name        string     `json:"displayName"`
	Role                string     `json:"role"`
	Prayer_Streak       int        `json:"prayerStreak" goqu:"skipinsert"`
	Last_Prayer_Date    *time.Time `json:"lastPrayerDate" goqu:"skipinsert"`
	Verified_Leader     bool       `json:"verifiedLeader" goqu:"skipinsert"`
	Institutional_Email *string    `json:"institutionalEmail"`
	Datetime_Create     time.Time  `json:"datetimeCreate" goqu:"skipinsert"`
	Datetime_Update     time.Time  `json:"datetimeUpdate" goqu:"skipinsert"`
	Deleted             bool       `json:"deleted" goqu:"skipinsert"`
}

const (
	RoleAdopter = "adopter"
	RoleAdmin   = "admin"
)

type UserProfileSignup struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Display_Name string `json:"displayName"`
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserProfileUpdate struct {
	Display_Name        *string `json:"displayName"`
	Institutional_Email *string `json:"institutionalEmail"`
}

type UserProfileChangePassword struct {
	Old_Password string `json:"oldPassword"`
	New_Password string `json:"newPassword"`
}

type VerifyLeader struct {
	Verified_Leader     bool    `json:"verifiedLeader"`
	Institutional_Email *string `json:"institutionalEmail"`
}
