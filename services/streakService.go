package services

import (
	"log"

	"github.com/CampusPrayer/initializers"
)

// UpdatePrayerStreak advances a user's prayer streak for a prayer action
// taken today (UTC). Consecutive days increment, a gap resets to 1, repeat
// actions on the same day leave the streak untouched. The whole rule is one
// conditional UPDATE so concurrent actions cannot double-count a day.
func UpdatePrayerStreak(userID int) error {
	_, err := initializers.DB.Exec(
		`UPDATE user_profile SET
			prayer_streak = CASE
				WHEN last_prayer_date = (NOW() AT TIME ZONE 'UTC')::date THEN prayer_streak
				WHEN last_prayer_date = (NOW() AT TIME ZONE 'UTC')::date - 1 THEN prayer_streak + 1
				ELSE 1
			END,
			last_prayer_date = (NOW() AT TIME ZONE 'UTC')::date,
			datetime_update = NOW()
		 WHERE user_profile_id = $1`,
		userID,
	)
	if err != nil {
		log.Printf("Error updating prayer streak for user %d: %v", userID, err)
	}
	return err
}
