package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// appointmentTransitions is the booking lifecycle. completed, cancelled and
// no_show are terminal.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow},
}

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

func (s AppointmentStatus) IsTerminal() bool {
	return len(appointmentTransitions[s]) == 0 && s.IsValid()
}

func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, next := range appointmentTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Appointment links a patient principal to a doctor at a date and time.
// PatientID and DoctorID are immutable after creation; ChamberID is a weak
// reference that may dangle after the chamber is deleted.
type Appointment struct {
	Base
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	ChamberID       *uuid.UUID        `db:"chamber_id" json:"chamber_id,omitempty"`
	AppointmentDate time.Time         `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string            `db:"appointment_time" json:"appointment_time"`
	Reason          string            `db:"reason" json:"reason"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Notes           string            `db:"notes" json:"notes,omitempty"`
}

// AppointmentDetail joins patient identity and the resolved chamber for
// display. ChamberName is nil when the chamber reference dangles.
type AppointmentDetail struct {
	Appointment
	PatientName  string  `db:"patient_name" json:"patient_name"`
	PatientEmail string  `db:"patient_email" json:"patient_email"`
	ChamberName  *string `db:"chamber_name" json:"chamber_name,omitempty"`
}

const missingChamberLabel = "location unavailable"

// Location resolves the chamber weak reference for display.
func (d *AppointmentDetail) Location() string {
	if d.ChamberID == nil {
		return ""
	}
	if d.ChamberName == nil {
		return missingChamberLabel
	}
	return *d.ChamberName
}

type CreateAppointmentRequest struct {
	DoctorID  uuid.UUID  `json:"doctor_id" binding:"required"`
	ChamberID *uuid.UUID `json:"chamber_id"`
	Date      string     `json:"date" binding:"required,datetime=2006-01-02"`
	Time      string     `json:"time" binding:"required,datetime=15:04"`
	Reason    string     `json:"reason" binding:"max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required"`
	Notes  string            `json:"notes" binding:"max=2000"`
}

type AppointmentFilters struct {
	Search string            `form:"q"`
	Status AppointmentStatus `form:"status"`
	Date   string            `form:"date"`
}

type AppointmentBucket string

const (
	BucketToday     AppointmentBucket = "today"
	BucketUpcoming  AppointmentBucket = "upcoming"
	BucketPast      AppointmentBucket = "past"
	BucketCancelled AppointmentBucket = "cancelled"
)

// Bucket categorizes an appointment relative to today. Cancelled
// appointments never land in today or upcoming.
func (a *Appointment) Bucket(now time.Time) AppointmentBucket {
	if a.Status == AppointmentStatusCancelled {
		return BucketCancelled
	}
	today := now.Truncate(24 * time.Hour)
	date := a.AppointmentDate.Truncate(24 * time.Hour)
	switch {
	case date.Equal(today):
		return BucketToday
	case date.After(today):
		return BucketUpcoming
	default:
		return BucketPast
	}
}

// PatientSummary aggregates a doctor's appointments by patient. Only
// completed appointments count as visits.
type PatientSummary struct {
	PatientID         uuid.UUID            `json:"patient_id"`
	Name              string               `json:"name"`
	Email             string               `json:"email"`
	TotalAppointments int                  `json:"total_appointments"`
	CompletedVisits   int                  `json:"completed_visits"`
	FirstVisit        *time.Time           `json:"first_visit,omitempty"`
	LastVisit         *time.Time           `json:"last_visit,omitempty"`
	Appointments      []*AppointmentDetail `json:"appointments"`
}
