package main

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CampusPrayer/controllers"
	"github.com/CampusPrayer/initializers"
	"github.com/CampusPrayer/middlewares"
	"github.com/CampusPrayer/models"
	"github.com/CampusPrayer/services"
)

func init() {
	initializers.LoadEnv()
	initializers.ConnectDB()
	services.InitPushNotificationService()
}

func main() {
	router := gin.Default()

	ipKey := func(c *gin.Context) string {
		return c.ClientIP()
	}
	userKey := func(c *gin.Context) string {
		user := c.MustGet("currentUser").(models.UserProfile)
		return strconv.Itoa(user.User_Profile_ID)
	}

	router.POST("/signup", middlewares.RateLimitMiddleware(5, time.Minute, ipKey), controllers.UserSignup)
	router.POST("/login", middlewares.RateLimitMiddleware(5, time.Minute, ipKey), controllers.UserLogin)
	router.GET("/ping", middlewares.RateLimitMiddleware(30, time.Minute, ipKey), controllers.Ping)

	// public campus reads
	public := router.Group("/")
	public.Use(middlewares.RateLimitMiddleware(60, time.Minute, ipKey))
	{
		public.GET("/schools", controllers.GetSchools)
		public.GET("/schools/featured", controllers.GetFeaturedSchools)
		public.GET("/schools/most-adopted", controllers.GetMostAdoptedSchools)
		public.GET("/schools/search", controllers.SearchSchools)
		public.GET("/schools/slug/:slug", controllers.GetSchoolBySlug)
		public.GET("/schools/:school_id", controllers.GetSchool)
		public.GET("/schools/:school_id/adopters", controllers.GetSchoolAdopters)
		public.GET("/schools/:school_id/dashboard", controllers.GetSchoolDashboard)
		public.GET("/stats", controllers.GetGlobalStats)
	}

	auth := router.Group("/")
	auth.Use(middlewares.CheckAuth)
	auth.Use(middlewares.RateLimitMiddleware(60, time.Minute, userKey))
	{
		// user routes
		auth.POST("/logout", controllers.UserLogout)
		auth.GET("/users/me", controllers.GetUserProfile)
		auth.PATCH("/users/me", controllers.UpdateUserProfile)
		auth.PATCH("/users/me/password", controllers.ChangeUserPassword)
		auth.POST("/users/push-token", controllers.StorePushToken)
		auth.GET("/dashboard", controllers.GetUserDashboard)

		// adoption routes
		auth.POST("/adoptions", middlewares.RateLimitMiddleware(10, time.Minute, userKey), controllers.CreateAdoption)
		auth.GET("/adoptions", controllers.GetUserAdoptions)
		auth.DELETE("/adoptions/:school_id", controllers.DeleteAdoption)

		// campus submission
		auth.POST("/schools/submit", middlewares.RateLimitMiddleware(5, time.Minute, userKey), controllers.SubmitSchool)

		// journal routes
		auth.GET("/journal", controllers.GetUserJournalEntries)
		auth.POST("/journal", controllers.CreateJournalEntry)
		auth.DELETE("/journal/:journal_id", controllers.DeleteJournalEntry)

		// prayer request routes
		auth.POST("/prayer-requests", middlewares.RateLimitMiddleware(10, time.Minute, userKey), controllers.CreatePrayerRequest)
		auth.GET("/prayer-requests", controllers.GetUserPrayerRequests)
		auth.GET("/schools/:school_id/prayer-requests", controllers.GetSchoolPrayerRequests)
		auth.POST("/prayer-requests/answer", controllers.AnswerPrayerRequest)

		// admin only routes
		admin := auth.Group("/")
		admin.Use(middlewares.CheckAdmin)
		{
			admin.POST("/schools", controllers.CreateSchool)
			admin.PUT("/schools/:school_id", controllers.UpdateSchool)
			admin.PATCH("/schools/:school_id/status", controllers.UpdateSchoolStatus)
			admin.POST("/admin/schools/:school_id/recount", controllers.RecountSchoolAdoptions)
			admin.PATCH("/admin/users/:user_profile_id/verify-leader", controllers.VerifyUserLeader)
		}
	}

	if err := router.Run(); err != nil {
		log.Fatal(err)
	}
}
