package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the demographic profile attached one-to-one to a principal.
type Patient struct {
	Base
	UserID           uuid.UUID  `db:"user_id" json:"user_id"`
	Name             string     `db:"name" json:"name"`
	DateOfBirth      *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender           string     `db:"gender" json:"gender,omitempty"`
	BloodGroup       string     `db:"blood_group" json:"blood_group,omitempty"`
	WeightKG         float64    `db:"weight_kg" json:"weight_kg,omitempty"`
	HeightCM         float64    `db:"height_cm" json:"height_cm,omitempty"`
	Address          string     `db:"address" json:"address,omitempty"`
	EmergencyContact string     `db:"emergency_contact" json:"emergency_contact,omitempty"`
}

type UpdatePatientRequest struct {
	Name             *string    `json:"name"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	Gender           *string    `json:"gender"`
	BloodGroup       *string    `json:"blood_group"`
	WeightKG         *float64   `json:"weight_kg"`
	HeightCM         *float64   `json:"height_cm"`
	Address          *string    `json:"address"`
	EmergencyContact *string    `json:"emergency_contact"`
}
