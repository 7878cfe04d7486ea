package services

import (
	"fmt"
	"log"
	"strconv"

	"github.com/CampusPrayer/initializers"
	"github.com/doug-martin/goqu/v9"
)

// shouldSendDebounced checks if a notification should be sent based on a
// debounce window. Uses an atomic upsert to prevent race conditions between
// concurrent triggers, and lazily cleans up records older than 24h.
func shouldSendDebounced(notifType string, targetUserID int, entityID int, windowMinutes int) bool {
	_, cleanupErr := initializers.DB.Delete("notification_debounce").
		Where(goqu.L("last_triggered_at < NOW() - INTERVAL '24 hours'")).
		Executor().Exec()
	if cleanupErr != nil {
		log.Printf("Error cleaning up old debounce records: %v", cleanupErr)
	}

	// INSERT...ON CONFLICT DO UPDATE with a WHERE clause that only fires
	// outside the window; RETURNING tells us whether anything happened.
	query := `
		INSERT INTO notification_debounce (notification_type, target_user_id, entity_id, last_triggered_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (notification_type, target_user_id, entity_id)
		DO UPDATE SET last_triggered_at = NOW()
		WHERE notification_debounce.last_triggered_at < NOW() - ($4 || ' minutes')::INTERVAL
		RETURNING debounce_id
	`

	var debounceID int
	err := initializers.DB.QueryRow(query, notifType, targetUserID, entityID, windowMinutes).Scan(&debounceID)

	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return false // within debounce window
		}
		log.Printf("Error in debounce check: %v", err)
		return true // on error, allow notification
	}

	return true
}

// NotifyAdoptersOfUrgentRequest fans an URGENT_PRAYER_REQUEST push out to
// everyone who adopted the school, except the requester. Debounced per
// adopter+school so a burst of urgent requests doesn't spam a campus.
func NotifyAdoptersOfUrgentRequest(schoolID int, requestID int, actorID int, schoolName string) {
	var adopterIDs []int
	err := initializers.DB.From("school_adopter").
		Select("user_profile_id").
		Where(goqu.C("school_id").Eq(schoolID)).
		ScanVals(&adopterIDs)
	if err != nil {
		log.Printf("Error fetching adopters for urgent request notification: %v", err)
		return
	}

	service := GetPushNotificationService()
	if service == nil {
		return
	}

	payload := NotificationPayload{
		Title: "Urgent prayer request",
		Body:  fmt.Sprintf("%s needs prayer right now", schoolName),
		Data: map[string]string{
			"type":      "URGENT_PRAYER_REQUEST",
			"schoolId":  strconv.Itoa(schoolID),
			"requestId": strconv.Itoa(requestID),
		},
	}

	for _, adopterID := range adopterIDs {
		if adopterID == actorID {
			continue
		}
		if !shouldSendDebounced("URGENT_PRAYER_REQUEST", adopterID, schoolID, 60) {
			continue
		}
		if err := service.SendNotificationToUser(adopterID, payload); err != nil {
			log.Printf("Failed to notify adopter %d: %v", adopterID, err)
		}
	}
}

// NotifyRequestAnswered tells the request owner their prayer request was
// marked answered. No-op when the owner answered it themselves.
func NotifyRequestAnswered(ownerID int, actorID int, requestID int) {
	if ownerID == actorID {
		return
	}

	service := GetPushNotificationService()
	if service == nil {
		return
	}

	if !shouldSendDebounced("PRAYER_REQUEST_ANSWERED", ownerID, requestID, 5) {
		return
	}

	payload := NotificationPayload{
		Title: "Prayer answered",
		Body:  "One of your prayer requests was marked answered",
		Data: map[string]string{
			"type":      "PRAYER_REQUEST_ANSWERED",
			"requestId": strconv.Itoa(requestID),
		},
	}

	if err := service.SendNotificationToUser(ownerID, payload); err != nil {
		log.Printf("Failed to notify request owner %d: %v", ownerID, err)
	}
}
