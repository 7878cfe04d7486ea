package middlewares

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/CampusPrayer/initializers"
	"github.com/CampusPrayer/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

func authError(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": "UNAUTHORIZED", "message": message},
	})
}

func CheckAuth(c *gin.Context) {

	authHeader := c.GetHeader("Authorization")

	if authHeader == "" {
		authError(c, "Authorization header is missing")
		return
	}

	authToken := strings.Split(authHeader, " ")
	if len(authToken) != 2 || authToken[0] != "Bearer" {
		authError(c, "Invalid token format")
		return
	}

	tokenString := authToken[1]

	if Blacklist.Contains(tokenString) {
		authError(c, "Token has been invalidated")
		return
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(os.Getenv("SECRET")), nil
	})
	if err != nil || !token.Valid {
		authError(c, "Invalid or expired token")
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		authError(c, "Invalid token")
		return
	}

	exp, ok := claims["exp"].(float64)
	if !ok || float64(time.Now().Unix()) > exp {
		authError(c, "Token expired")
		return
	}

	var user models.UserProfile
	found, err := initializers.DB.From("user_profile").Select("*").
		Where(goqu.C("user_profile_id").Eq(claims["id"]), goqu.C("deleted").IsFalse()).
		ScanStruct(&user)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "SERVER_ERROR", "message": "Failed to load user profile"},
		})
		return
	}

	if !found || user.User_Profile_ID == 0 {
		authError(c, "User not found")
		return
	}

	c.Set("currentUser", user)
	c.Set("rawToken", tokenString)
	c.Set("admin", claims["role"] == models.RoleAdmin)
	c.Set("leader", user.Verified_Leader)

	c.Next()

}
