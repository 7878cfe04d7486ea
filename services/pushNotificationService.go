package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/CampusPrayer/initializers"
	"github.com/CampusPrayer/models"
	"github.com/doug-martin/goqu/v9"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type PushNotificationService struct {
	fcmClient *messaging.Client
}

type NotificationPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

var pushService *PushNotificationService

func InitPushNotificationService() {
	pushService = &PushNotificationService{}

	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")

	var app *firebase.App
	var err error

	if serviceAccountPath != "" {
		opt := option.WithCredentialsFile(serviceAccountPath)
		app, err = firebase.NewApp(context.Background(), nil, opt)
		if err != nil {
			log.Printf("Failed to initialize Firebase app with service account: %v", err)
			return
		}
		log.Println("Firebase initialized with service account file")
	} else {
		// Application Default Credentials
		app, err = firebase.NewApp(context.Background(), nil)
		if err != nil {
			log.Printf("Failed to initialize Firebase app with ADC: %v", err)
			return
		}
		log.Println("Firebase initialized with Application Default Credentials")
	}

	pushService.fcmClient, err = app.Messaging(context.Background())
	if err != nil {
		log.Printf("Failed to get Firebase messaging client: %v", err)
		return
	}

	log.Println("Push notification service initialized successfully with FCM")
}

func GetPushNotificationService() *PushNotificationService {
	return pushService
}

func (s *PushNotificationService) SendNotificationToUser(userID int, payload NotificationPayload) error {
	if s == nil || s.fcmClient == nil {
		return fmt.Errorf("push notification service not initialized")
	}

	var tokens []models.PushToken
	err := initializers.DB.From("user_push_tokens").
		Where(goqu.C("user_profile_id").Eq(userID)).
		ScanStructs(&tokens)
	if err != nil {
		return fmt.Errorf("failed to get push tokens for user %d: %v", userID, err)
	}

	if len(tokens) == 0 {
		return fmt.Errorf("no push tokens found for user %d", userID)
	}

	for _, token := range tokens {
		if err := s.sendToToken(token, payload); err != nil {
			log.Printf("Failed to send notification to token %s: %v", token.Push_Token, err)
			// keep going for the user's other devices
		}
	}

	return nil
}

func (s *PushNotificationService) SendNotificationToUsers(userIDs []int, payload NotificationPayload) {
	for _, userID := range userIDs {
		if err := s.SendNotificationToUser(userID, payload); err != nil {
			log.Printf("Failed to send notification to user %d: %v", userID, err)
		}
	}
}

func (s *PushNotificationService) sendToToken(token models.PushToken, payload NotificationPayload) error {
	message := &messaging.Message{
		Token: token.Push_Token,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}

	_, err := s.fcmClient.Send(context.Background(), message)
	return err
}
