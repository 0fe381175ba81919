package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rakibul/healthdir-api/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository handles principal records from the identity store.
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	// AdminRepository exposes admin-role membership lookups.
	AdminRepository interface {
		IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
		Grant(ctx context.Context, userID uuid.UUID) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
		ExistsForUser(ctx context.Context, userID uuid.UUID) (bool, error)
		GetByRegistrationNumber(ctx context.Context, regNo string) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		UpdateVerification(ctx context.Context, id uuid.UUID, status model.VerificationStatus, reason *string) error
		SetActive(ctx context.Context, id uuid.UUID, active bool) error
		SetFeatured(ctx context.Context, id uuid.UUID, featured bool, rank int) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListPublic(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error)
		ListByVerification(ctx context.Context, status model.VerificationStatus) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
		ExistsForUser(ctx context.Context, userID uuid.UUID) (bool, error)
		Update(ctx context.Context, patient *model.Patient) error
	}

	ChamberRepository interface {
		Create(ctx context.Context, chamber *model.Chamber) error
		Get(ctx context.Context, id uuid.UUID) (*model.Chamber, error)
		Update(ctx context.Context, chamber *model.Chamber) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Chamber, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, notes string) error
		ListByDoctor(ctx context.Context, doctorID uuid.UUID, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error)
		CountActiveAtSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, timeOfDay string) (int, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, retryCount int) error
	}
)
