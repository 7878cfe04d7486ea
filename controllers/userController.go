package controllers

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/CampusPrayer/initializers"
	"github.com/CampusPrayer/middlewares"
	"github.com/CampusPrayer/models"
	"github.com/doug-martin/goqu/v9"
	"golang.org/x/crypto/bcrypt"
)

func Ping(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"message": "pong"})
}

func UserSignup(c *gin.Context) {
	var signup models.UserProfileSignup

	if err := c.ShouldBindJSON(&signup); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(signup.Email))
	if email == "" || !strings.Contains(email, "@") {
		respondError(c, http.StatusBadRequest, CodeValidation, "A valid email is required")
		return
	}
	if len(signup.Password) < 8 {
		respondError(c, http.StatusBadRequest, CodeValidation, "Password must be at least 8 characters")
		return
	}
	if strings.TrimSpace(signup.Display_Name) == "" {
		respondError(c, http.StatusBadRequest, CodeValidation, "Display name is required")
		return
	}

	userCount, err := initializers.DB.From("user_profile").
		Where(goqu.C("email").Eq(email)).
		Count()
	if err != nil {
		respondServerError(c, err, "Failed to check email availability")
		return
	}

	if userCount > 0 {
		respondError(c, http.StatusConflict, CodeConflict, "An account with that email already exists")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(signup.Password), bcrypt.DefaultCost)
	if err != nil {
		respondServerError(c, err, "Failed to hash password")
		return
	}

	newUser := models.UserProfile{
		Email:        email,
		Password:     string(passwordHash),
		Display_Name: strings.TrimSpace(signup.Display_Name),
		Role:         models.RoleAdopter,
	}

	insert := initializers.DB.Insert("user_profile").Rows(newUser).Executor()
	if _, err := insert.Exec(); err != nil {
		respondServerError(c, err, "Failed to create user")
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{
		"message": "User created successfully.",
		"email":   email,
	})
}

func UserLogin(c *gin.Context) {
	var login models.Login

	if err := c.ShouldBindJSON(&login); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	var dbUser models.UserProfile
	found, err := initializers.DB.From("user_profile").Select("*").
		Where(
			goqu.C("email").Eq(strings.ToLower(strings.TrimSpace(login.Email))),
			goqu.C("deleted").IsFalse(),
		).
		ScanStruct(&dbUser)
	if err != nil {
		respondServerError(c, err, "Failed to look up user")
		return
	}

	if !found {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(dbUser.Password), []byte(login.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid email or password")
		return
	}

	generateToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   dbUser.User_Profile_ID,
		"exp":  time.Now().Add(time.Hour * 24).Unix(),
		"role": dbUser.Role,
	})

	token, err := generateToken.SignedString([]byte(os.Getenv("SECRET")))
	if err != nil {
		respondServerError(c, err, "Failed to generate token")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"message": "User logged in successfully.",
		"token":   token,
		"user":    dbUser,
	})
}

// UserLogout blacklists the presented token until its natural expiry.
func UserLogout(c *gin.Context) {
	rawToken := c.MustGet("rawToken").(string)

	expiresAt := time.Now().Add(time.Hour * 24)
	if token, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{}); err == nil {
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if exp, ok := claims["exp"].(float64); ok {
				expiresAt = time.Unix(int64(exp), 0)
			}
		}
	}

	middlewares.Blacklist.Add(rawToken, expiresAt)

	respondSuccess(c, http.StatusOK, gin.H{"message": "Logged out successfully."})
}

func GetUserProfile(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	respondSuccess(c, http.StatusOK, gin.H{
		"user":  user,
		"admin": c.MustGet("admin"),
	})
}

func UpdateUserProfile(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	var update models.UserProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	record := goqu.Record{"datetime_update": goqu.L("NOW()")}
	if update.Display_Name != nil {
		if strings.TrimSpace(*update.Display_Name) == "" {
			respondError(c, http.StatusBadRequest, CodeValidation, "Display name cannot be blank")
			return
		}
		record["display_name"] = strings.TrimSpace(*update.Display_Name)
	}
	if update.Institutional_Email != nil {
		record["institutional_email"] = strings.ToLower(strings.TrimSpace(*update.Institutional_Email))
	}

	updateExec := initializers.DB.Update("user_profile").
		Set(record).
		Where(goqu.C("user_profile_id").Eq(user.User_Profile_ID)).
		Executor()
	if _, err := updateExec.Exec(); err != nil {
		respondServerError(c, err, "Failed to update profile")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "Profile updated successfully."})
}

func ChangeUserPassword(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	var change models.UserProfileChangePassword
	if err := c.ShouldBindJSON(&change); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(change.Old_Password)); err != nil {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Current password is incorrect")
		return
	}

	if len(change.New_Password) < 8 {
		respondError(c, http.StatusBadRequest, CodeValidation, "New password must be at least 8 characters")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(change.New_Password), bcrypt.DefaultCost)
	if err != nil {
		respondServerError(c, err, "Failed to hash password")
		return
	}

	updateExec := initializers.DB.Update("user_profile").
		Set(goqu.Record{"password": string(passwordHash), "datetime_update": goqu.L("NOW()")}).
		Where(goqu.C("user_profile_id").Eq(user.User_Profile_ID)).
		Executor()
	if _, err := updateExec.Exec(); err != nil {
		respondServerError(c, err, "Failed to change password")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "Password changed successfully."})
}

// VerifyUserLeader lets an admin flag a user as a verified campus leader.
func VerifyUserLeader(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_profile_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid user ID")
		return
	}

	var verify models.VerifyLeader
	if err := c.ShouldBindJSON(&verify); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	record := goqu.Record{
		"verified_leader": verify.Verified_Leader,
		"datetime_update": goqu.L("NOW()"),
	}
	if verify.Institutional_Email != nil {
		record["institutional_email"] = strings.ToLower(strings.TrimSpace(*verify.Institutional_Email))
	}

	result, err := initializers.DB.Update("user_profile").
		Set(record).
		Where(goqu.C("user_profile_id").Eq(userID), goqu.C("deleted").IsFalse()).
		Executor().Exec()
	if err != nil {
		respondServerError(c, err, "Failed to update leader status")
		return
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		respondError(c, http.StatusNotFound, CodeNotFound, "User not found")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "Leader status updated."})
}

func StorePushToken(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	var tokenCreate models.PushTokenCreate
	if err := c.ShouldBindJSON(&tokenCreate); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if strings.TrimSpace(tokenCreate.Push_Token) == "" {
		respondError(c, http.StatusBadRequest, CodeValidation, "Push token is required")
		return
	}

	// Upsert: one row per (user, token)
	_, err := initializers.DB.Exec(
		`INSERT INTO user_push_tokens (user_profile_id, push_token, platform, datetime_create)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_profile_id, push_token) DO UPDATE SET platform = $3`,
		user.User_Profile_ID, tokenCreate.Push_Token, tokenCreate.Platform,
	)
	if err != nil {
		respondServerError(c, err, "Failed to store push token")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "Push token stored."})
}
