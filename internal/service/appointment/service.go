package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/repository"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
	"github.com/rakibul/healthdir-api/pkg/metrics"
)

const dateLayout = "2006-01-02"

// Config carries scheduling policy toggles.
type Config struct {
	// EnforceSlotConflicts turns on same doctor/date/time collision
	// rejection. Off by default: concurrent bookings of the same slot are
	// accepted independently.
	EnforceSlotConflicts bool
}

// Service owns appointment creation and the status state machine that
// coordinates patients and doctors over time slots.
type Service struct {
	repo       repository.AppointmentRepository
	doctorRepo repository.DoctorRepository
	outboxRepo repository.OutboxRepository
	cfg        Config
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewService(repo repository.AppointmentRepository, doctorRepo repository.DoctorRepository, outboxRepo repository.OutboxRepository, cfg Config, m *metrics.Metrics) *Service {
	return &Service{
		repo:       repo,
		doctorRepo: doctorRepo,
		outboxRepo: outboxRepo,
		cfg:        cfg,
		metrics:    m,
		now:        time.Now,
	}
}

// CreateAppointment books a patient with a doctor. The doctor must be
// publicly bookable at creation time; later de-verification does not touch
// existing appointments. Initial status is always pending.
func (s *Service) CreateAppointment(ctx context.Context, patientID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, apperrors.Validation("invalid appointment date")
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return nil, apperrors.Validation("invalid appointment time")
	}

	doctor, err := s.doctorRepo.Get(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsPubliclyBookable() {
		return nil, &apperrors.AppError{
			Code:    apperrors.ErrNotFound,
			Message: "doctor is not available for booking",
		}
	}

	if s.cfg.EnforceSlotConflicts {
		count, err := s.repo.CountActiveAtSlot(ctx, doctor.ID, date, req.Time)
		if err != nil {
			return nil, fmt.Errorf("failed to check slot availability: %w", err)
		}
		if count > 0 {
			return nil, apperrors.Conflict("the requested slot is already booked")
		}
	}

	appointment := &model.Appointment{
		PatientID:       patientID,
		DoctorID:        doctor.ID,
		ChamberID:       req.ChamberID,
		AppointmentDate: date,
		AppointmentTime: req.Time,
		Reason:          req.Reason,
		Status:          model.AppointmentStatusPending,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AppointmentsCreated.Inc()
	}
	return appointment, nil
}

// UpdateStatus applies one transition of the appointment state machine.
// Ownership and transition validity are both checked before any write:
// confirm, complete and no_show are doctor-only, cancel is open to the
// owning patient as well. Notes stay doctor-authored.
func (s *Service) UpdateStatus(ctx context.Context, actor model.Actor, appointmentID uuid.UUID, req *model.UpdateAppointmentStatusRequest) error {
	if !req.Status.IsValid() || req.Status == model.AppointmentStatusPending {
		return apperrors.Validation("invalid target status")
	}

	appointment, err := s.repo.Get(ctx, appointmentID)
	if err != nil {
		return err
	}

	isOwnerDoctor, err := s.isOwningDoctor(ctx, appointment, actor)
	if err != nil {
		return err
	}
	isOwnerPatient := appointment.PatientID == actor.UserID

	allowed := isOwnerDoctor
	if req.Status == model.AppointmentStatusCancelled {
		allowed = isOwnerDoctor || isOwnerPatient
	}
	if !allowed {
		if s.metrics != nil {
			s.metrics.TransitionsDenied.WithLabelValues("forbidden").Inc()
		}
		return apperrors.Forbidden("")
	}

	if !appointment.Status.CanTransitionTo(req.Status) {
		if s.metrics != nil {
			s.metrics.TransitionsDenied.WithLabelValues("invalid_transition").Inc()
		}
		return apperrors.InvalidTransition(string(appointment.Status), string(req.Status))
	}

	notes := appointment.Notes
	if isOwnerDoctor && req.Notes != "" {
		notes = req.Notes
	}

	if err := s.repo.UpdateStatus(ctx, appointmentID, req.Status, notes); err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AppointmentTransitions.WithLabelValues(string(req.Status)).Inc()
	}

	s.enqueueStatusEvent(ctx, appointment, req.Status)
	return nil
}

// enqueueStatusEvent is best-effort: the transition above is committed and
// stays authoritative whatever happens here.
func (s *Service) enqueueStatusEvent(ctx context.Context, appointment *model.Appointment, status model.AppointmentStatus) {
	if s.outboxRepo == nil {
		return
	}

	payload, err := json.Marshal(&model.AppointmentStatusEvent{
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		DoctorID:      appointment.DoctorID,
		Status:        status,
	})
	if err != nil {
		log.Warn().Err(err).Str("appointment_id", appointment.ID.String()).Msg("could not encode status event")
		return
	}

	event := &model.OutboxEvent{
		EventType: model.EventAppointmentStatusChanged,
		Payload:   payload,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		log.Warn().Err(err).
			Str("appointment_id", appointment.ID.String()).
			Msg("failed to enqueue appointment status event")
	}
}

// GetAppointment returns a single appointment visible to its doctor, its
// patient, or an admin.
func (s *Service) GetAppointment(ctx context.Context, actor model.Actor, appointmentID uuid.UUID) (*model.AppointmentDetail, error) {
	detail, err := s.repo.GetDetail(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if actor.Role == model.RoleAdmin || detail.PatientID == actor.UserID {
		return detail, nil
	}
	isOwnerDoctor, err := s.isOwningDoctor(ctx, &detail.Appointment, actor)
	if err != nil {
		return nil, err
	}
	if !isOwnerDoctor {
		return nil, apperrors.Forbidden("")
	}
	return detail, nil
}

// ListAppointments returns a doctor's appointments with optional free-text,
// status and single-date filters.
func (s *Service) ListAppointments(ctx context.Context, doctorID uuid.UUID, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, error) {
	if filters != nil && filters.Status != "" && !filters.Status.IsValid() {
		return nil, apperrors.Validation("invalid status filter")
	}
	if filters != nil && filters.Date != "" {
		if _, err := time.Parse(dateLayout, filters.Date); err != nil {
			return nil, apperrors.Validation("invalid date filter")
		}
	}

	appointments, err := s.repo.ListByDoctor(ctx, doctorID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// ListForPatient returns the calling patient's own bookings.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	appointments, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return appointments, nil
}

// Categorize splits appointments into today/upcoming/past/cancelled buckets
// relative to the current date.
func (s *Service) Categorize(appointments []*model.AppointmentDetail) map[model.AppointmentBucket][]*model.AppointmentDetail {
	now := s.now()
	buckets := map[model.AppointmentBucket][]*model.AppointmentDetail{
		model.BucketToday:     {},
		model.BucketUpcoming:  {},
		model.BucketPast:      {},
		model.BucketCancelled: {},
	}
	for _, a := range appointments {
		bucket := a.Bucket(now)
		buckets[bucket] = append(buckets[bucket], a)
	}
	return buckets
}

// ListPatientHistory aggregates a doctor's appointments by patient. Only
// completed appointments count as visits. This is a best-effort read path:
// a repository failure yields an empty result, not an error.
func (s *Service) ListPatientHistory(ctx context.Context, doctorID uuid.UUID) []*model.PatientSummary {
	appointments, err := s.repo.ListByDoctor(ctx, doctorID, nil)
	if err != nil {
		log.Warn().Err(err).Str("doctor_id", doctorID.String()).Msg("patient history aggregation failed, returning empty")
		return []*model.PatientSummary{}
	}

	order := make([]uuid.UUID, 0)
	byPatient := make(map[uuid.UUID]*model.PatientSummary)

	for _, a := range appointments {
		summary, ok := byPatient[a.PatientID]
		if !ok {
			summary = &model.PatientSummary{
				PatientID: a.PatientID,
				Name:      a.PatientName,
				Email:     a.PatientEmail,
			}
			byPatient[a.PatientID] = summary
			order = append(order, a.PatientID)
		}

		summary.TotalAppointments++
		summary.Appointments = append(summary.Appointments, a)

		if a.Status == model.AppointmentStatusCompleted {
			summary.CompletedVisits++
			visitDate := a.AppointmentDate
			if summary.FirstVisit == nil || visitDate.Before(*summary.FirstVisit) {
				d := visitDate
				summary.FirstVisit = &d
			}
			if summary.LastVisit == nil || visitDate.After(*summary.LastVisit) {
				d := visitDate
				summary.LastVisit = &d
			}
		}
	}

	summaries := make([]*model.PatientSummary, 0, len(order))
	for _, id := range order {
		summaries = append(summaries, byPatient[id])
	}
	return summaries
}

func (s *Service) isOwningDoctor(ctx context.Context, appointment *model.Appointment, actor model.Actor) (bool, error) {
	doctor, err := s.doctorRepo.Get(ctx, appointment.DoctorID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			// Doctor deleted after booking; nobody owns the doctor side.
			return false, nil
		}
		return false, err
	}
	return doctor.UserID == actor.UserID, nil
}
