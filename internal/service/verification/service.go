package verification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/repository"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
	"github.com/rakibul/healthdir-api/pkg/metrics"
)

// Service owns the doctor verification state machine. State transitions
// commit first; the doctor notification is enqueued afterwards as an outbox
// event and an enqueue failure never rolls the transition back.
type Service struct {
	doctorRepo repository.DoctorRepository
	userRepo   repository.UserRepository
	outboxRepo repository.OutboxRepository
	metrics    *metrics.Metrics
}

func NewService(doctorRepo repository.DoctorRepository, userRepo repository.UserRepository, outboxRepo repository.OutboxRepository, m *metrics.Metrics) *Service {
	return &Service{
		doctorRepo: doctorRepo,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		metrics:    m,
	}
}

func (s *Service) ListPending(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.doctorRepo.ListByVerification(ctx, model.VerificationPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending doctors: %w", err)
	}
	return doctors, nil
}

// Approve moves a doctor to approved and clears any prior rejection reason.
func (s *Service) Approve(ctx context.Context, doctorID uuid.UUID) error {
	doctor, err := s.doctorRepo.Get(ctx, doctorID)
	if err != nil {
		return err
	}

	if !doctor.VerificationStatus.CanTransitionTo(model.VerificationApproved) {
		return apperrors.InvalidTransition(string(doctor.VerificationStatus), string(model.VerificationApproved))
	}

	if err := s.doctorRepo.UpdateVerification(ctx, doctorID, model.VerificationApproved, nil); err != nil {
		return fmt.Errorf("failed to approve doctor: %w", err)
	}

	if s.metrics != nil {
		s.metrics.VerificationTransitions.WithLabelValues(string(model.VerificationApproved)).Inc()
	}

	s.enqueueNotification(ctx, doctor, model.VerificationApproved, "")
	return nil
}

// Reject moves a doctor to rejected. A non-empty reason is required.
func (s *Service) Reject(ctx context.Context, doctorID uuid.UUID, reason string) error {
	if reason == "" {
		return apperrors.Validation("rejection reason is required")
	}

	doctor, err := s.doctorRepo.Get(ctx, doctorID)
	if err != nil {
		return err
	}

	if !doctor.VerificationStatus.CanTransitionTo(model.VerificationRejected) {
		return apperrors.InvalidTransition(string(doctor.VerificationStatus), string(model.VerificationRejected))
	}

	if err := s.doctorRepo.UpdateVerification(ctx, doctorID, model.VerificationRejected, &reason); err != nil {
		return fmt.Errorf("failed to reject doctor: %w", err)
	}

	if s.metrics != nil {
		s.metrics.VerificationTransitions.WithLabelValues(string(model.VerificationRejected)).Inc()
	}

	s.enqueueNotification(ctx, doctor, model.VerificationRejected, reason)
	return nil
}

// SetVisibility flips the is_active toggle. It is orthogonal to the
// verification state: a rejected doctor can be active yet stays out of the
// public listing because bookability also requires approval.
func (s *Service) SetVisibility(ctx context.Context, doctorID uuid.UUID, active bool) error {
	if err := s.doctorRepo.SetActive(ctx, doctorID, active); err != nil {
		return err
	}
	return nil
}

// enqueueNotification is best-effort: the state transition above is already
// committed and stays authoritative whatever happens here.
func (s *Service) enqueueNotification(ctx context.Context, doctor *model.Doctor, status model.VerificationStatus, reason string) {
	user, err := s.userRepo.Get(ctx, doctor.UserID)
	if err != nil {
		log.Warn().Err(err).Str("doctor_id", doctor.ID.String()).Msg("could not resolve doctor email for notification")
		return
	}

	eventType := model.EventDoctorApproved
	if status == model.VerificationRejected {
		eventType = model.EventDoctorRejected
	}

	payload, err := json.Marshal(&model.DoctorVerificationEvent{
		DoctorID:   doctor.ID,
		DoctorName: doctor.Name,
		Email:      user.Email,
		Status:     status,
		Reason:     reason,
	})
	if err != nil {
		log.Warn().Err(err).Str("doctor_id", doctor.ID.String()).Msg("could not encode verification event")
		return
	}

	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		log.Warn().Err(err).
			Str("doctor_id", doctor.ID.String()).
			Str("event_type", eventType).
			Msg("failed to enqueue verification notification")
	}
}
