package services

import (
	"database/sql"
	"errors"
	"log"

	"github.com/CampusPrayer/initializers"
	"github.com/CampusPrayer/models"
)

// AdopterMutation reports the outcome of an add/remove-adopter call. Only
// AdopterAdded mutates the school row.
type AdopterMutation int

const (
	AdopterAdded AdopterMutation = iota
	AdopterAlreadyPresent
	AdopterLimitExceeded
	AdopterSchoolMissing
)

// AddSchoolAdopter appends a user to a school's adopter list and keeps the
// denormalized counters in step. The school row is locked for the duration
// of the transaction, so concurrent adders against the same campus are
// serialized and the counter can never drift from the list: every committed
// insert bumps adoption_count by exactly one. The unique index on
// (school_id, user_profile_id) remains as a backstop underneath the
// membership check.
func AddSchoolAdopter(schoolID int, userID int, adoptionType string) (AdopterMutation, error) {
	tx, err := initializers.DB.Begin()
	if err != nil {
		return AdopterSchoolMissing, err
	}

	var adoptionCount int
	err = tx.QueryRow(
		`SELECT adoption_count FROM school WHERE school_id = $1 FOR UPDATE`,
		schoolID,
	).Scan(&adoptionCount)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return AdopterSchoolMissing, nil
		}
		return AdopterSchoolMissing, err
	}

	var existing int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM school_adopter WHERE school_id = $1 AND user_profile_id = $2`,
		schoolID, userID,
	).Scan(&existing)
	if err != nil {
		tx.Rollback()
		return AdopterSchoolMissing, err
	}

	if existing > 0 {
		tx.Rollback()
		return AdopterAlreadyPresent, nil
	}

	if adoptionCount >= models.MaxSchoolAdopters {
		tx.Rollback()
		return AdopterLimitExceeded, nil
	}

	_, err = tx.Exec(
		`INSERT INTO school_adopter (school_id, user_profile_id, adoption_type, datetime_adopted)
		 VALUES ($1, $2, $3, NOW())`,
		schoolID, userID, adoptionType,
	)
	if err != nil {
		tx.Rollback()
		return AdopterSchoolMissing, err
	}

	_, err = tx.Exec(
		`UPDATE school SET
			adoption_count = adoption_count + 1,
			total_prayer_adoptions = total_prayer_adoptions
				+ CASE WHEN $2 IN ('prayer', 'both') THEN 1 ELSE 0 END,
			total_revival_adoptions = total_revival_adoptions
				+ CASE WHEN $2 IN ('revival', 'both') THEN 1 ELSE 0 END,
			datetime_last_adopted = NOW(),
			datetime_update = NOW()
		 WHERE school_id = $1`,
		schoolID, adoptionType,
	)
	if err != nil {
		tx.Rollback()
		return AdopterSchoolMissing, err
	}

	if err := tx.Commit(); err != nil {
		return AdopterSchoolMissing, err
	}

	return AdopterAdded, nil
}

// RemoveSchoolAdopter deletes a user's adopter entry if present and
// decrements the counters by the number of rows removed (0 or 1). Removing
// a user who is not on the list is a no-op, never an error, and the counter
// never goes below zero.
func RemoveSchoolAdopter(schoolID int, userID int) (bool, error) {
	tx, err := initializers.DB.Begin()
	if err != nil {
		return false, err
	}

	var lockedID int
	err = tx.QueryRow(
		`SELECT school_id FROM school WHERE school_id = $1 FOR UPDATE`,
		schoolID,
	).Scan(&lockedID)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	var removedType string
	err = tx.QueryRow(
		`DELETE FROM school_adopter WHERE school_id = $1 AND user_profile_id = $2
		 RETURNING adoption_type`,
		schoolID, userID,
	).Scan(&removedType)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	_, err = tx.Exec(
		`UPDATE school SET
			adoption_count = GREATEST(adoption_count - 1, 0),
			total_prayer_adoptions = GREATEST(total_prayer_adoptions
				- CASE WHEN $2 IN ('prayer', 'both') THEN 1 ELSE 0 END, 0),
			total_revival_adoptions = GREATEST(total_revival_adoptions
				- CASE WHEN $2 IN ('revival', 'both') THEN 1 ELSE 0 END, 0),
			datetime_update = NOW()
		 WHERE school_id = $1`,
		schoolID, removedType,
	)
	if err != nil {
		tx.Rollback()
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

// RecountSchoolAdoptions resets a school's counters from the adoption
// ledger. The ledger is the source of truth when the two collections
// disagree after a partial failure; admins trigger this to reconcile.
func RecountSchoolAdoptions(schoolID int) (int, error) {
	var adoptionCount int
	err := initializers.DB.QueryRow(
		`UPDATE school SET
			adoption_count = (SELECT COUNT(*) FROM adoption WHERE school_id = $1),
			total_prayer_adoptions = (SELECT COUNT(*) FROM adoption
				WHERE school_id = $1 AND adoption_type IN ('prayer', 'both')),
			total_revival_adoptions = (SELECT COUNT(*) FROM adoption
				WHERE school_id = $1 AND adoption_type IN ('revival', 'both')),
			datetime_update = NOW()
		 WHERE school_id = $1
		 RETURNING adoption_count`,
		schoolID,
	).Scan(&adoptionCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sql.ErrNoRows
		}
		log.Printf("Error recounting adoptions for school %d: %v", schoolID, err)
		return 0, err
	}
	return adoptionCount, nil
}
