package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/repository"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
)

// detailColumns joins patient identity and resolves the chamber weak
// reference; a deleted chamber yields NULL chamber_name.
const detailColumns = `
	a.id, a.patient_id, a.doctor_id, a.chamber_id,
	a.appointment_date, a.appointment_time, a.reason, a.status,
	a.notes, a.created_at, a.updated_at,
	u.name AS patient_name, u.email AS patient_email,
	c.name AS chamber_name
`

const detailJoins = `
	FROM appointments a
	JOIN users u ON u.id = a.patient_id
	LEFT JOIN chambers c ON c.id = a.chamber_id
`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, chamber_id,
			appointment_date, appointment_time, reason, status,
			notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.ChamberID,
		appointment.AppointmentDate,
		appointment.AppointmentTime,
		appointment.Reason,
		appointment.Status,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, chamber_id,
			   appointment_date, appointment_time, reason, status,
			   notes, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	query := `SELECT ` + detailColumns + detailJoins + ` WHERE a.id = $1`

	var detail model.AppointmentDetail
	err := r.db.GetContext(ctx, &detail, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment detail: %w", err)
	}
	return &detail, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, notes string) error {
	query := `
		UPDATE appointments
		SET status = $1, notes = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, status, notes, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, error) {
	query := `SELECT ` + detailColumns + detailJoins + ` WHERE a.doctor_id = $1`
	args := []interface{}{doctorID}
	argCount := 2

	if filters != nil && filters.Search != "" {
		query += fmt.Sprintf(" AND (u.name ILIKE $%d OR a.reason ILIKE $%d)", argCount, argCount)
		args = append(args, "%"+filters.Search+"%")
		argCount++
	}

	if filters != nil && filters.Status != "" {
		query += fmt.Sprintf(" AND a.status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if filters != nil && filters.Date != "" {
		query += fmt.Sprintf(" AND a.appointment_date = $%d", argCount)
		args = append(args, filters.Date)
		argCount++
	}

	query += " ORDER BY a.appointment_date ASC, a.appointment_time ASC"

	var appointments []*model.AppointmentDetail
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	query := `
		SELECT ` + detailColumns + detailJoins + `
		WHERE a.patient_id = $1
		ORDER BY a.appointment_date DESC, a.appointment_time DESC
	`
	var appointments []*model.AppointmentDetail
	err := r.db.SelectContext(ctx, &appointments, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return appointments, nil
}

// CountActiveAtSlot backs the optional slot-collision policy. It counts
// non-terminal appointments at the same doctor, date and time.
func (r *appointmentRepository) CountActiveAtSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, timeOfDay string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE doctor_id = $1
		AND appointment_date = $2
		AND appointment_time = $3
		AND status IN ('pending', 'confirmed')
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, doctorID, date, timeOfDay)
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments at slot: %w", err)
	}
	return count, nil
}
