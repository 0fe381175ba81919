package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

const (
	EventDoctorApproved           = "doctor_approved"
	EventDoctorRejected           = "doctor_rejected"
	EventAppointmentStatusChanged = "appointment_status_changed"
)

// OutboxEvent decouples a committed state transition from its best-effort
// notification. The triggering write is authoritative whether or not the
// event is ever delivered.
type OutboxEvent struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	EventType   string          `db:"event_type" json:"event_type"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	Status      OutboxStatus    `db:"status" json:"status"`
	RetryCount  int             `db:"retry_count" json:"retry_count"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// AppointmentStatusEvent is the payload for appointment_status_changed
// events, consumed by in-app dashboards through the broker.
type AppointmentStatusEvent struct {
	AppointmentID uuid.UUID         `json:"appointment_id"`
	PatientID     uuid.UUID         `json:"patient_id"`
	DoctorID      uuid.UUID         `json:"doctor_id"`
	Status        AppointmentStatus `json:"status"`
}

// DoctorVerificationEvent is the payload for doctor_approved and
// doctor_rejected events.
type DoctorVerificationEvent struct {
	DoctorID   uuid.UUID          `json:"doctor_id"`
	DoctorName string             `json:"doctor_name"`
	Email      string             `json:"email"`
	Status     VerificationStatus `json:"status"`
	Reason     string             `json:"reason,omitempty"`
}
