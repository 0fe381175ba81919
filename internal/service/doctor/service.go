package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/repository"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
)

// Service owns doctor profiles and the public directory surface. All
// public paths go through the bookability predicate on the repository
// queries: approved and active, nothing else is exposed.
type Service struct {
	doctorRepo  repository.DoctorRepository
	chamberRepo repository.ChamberRepository
}

func NewService(doctorRepo repository.DoctorRepository, chamberRepo repository.ChamberRepository) *Service {
	return &Service{
		doctorRepo:  doctorRepo,
		chamberRepo: chamberRepo,
	}
}

// GetProfile returns the doctor's own profile for any verification state,
// so a pending or rejected doctor still sees their dashboard.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	return s.doctorRepo.GetByUserID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.doctorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != "" {
		doctor.Name = *req.Name
	}
	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}

	if err := s.doctorRepo.Update(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to update doctor profile: %w", err)
	}
	return doctor, nil
}

// ListPublic returns the searchable directory of bookable doctors.
func (s *Service) ListPublic(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	return s.doctorRepo.ListPublic(ctx, filters)
}

// GetPublicProfile returns a bookable doctor with their chambers. Chambers
// are best-effort: a chamber lookup failure degrades to an empty list.
func (s *Service) GetPublicProfile(ctx context.Context, doctorID uuid.UUID) (*model.DoctorPublicProfile, error) {
	doctor, err := s.doctorRepo.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsPubliclyBookable() {
		return nil, apperrors.NotFound("doctor", nil)
	}

	chambers, err := s.chamberRepo.ListByDoctor(ctx, doctorID)
	if err != nil {
		log.Warn().Err(err).Str("doctor_id", doctorID.String()).Msg("chamber lookup failed for public profile")
		chambers = nil
	}

	return &model.DoctorPublicProfile{
		Doctor:   *doctor,
		Chambers: chambers,
	}, nil
}

// VerifyRegistration is the public registration-number lookup. The match is
// exact and case-insensitive, restricted to bookable doctors.
func (s *Service) VerifyRegistration(ctx context.Context, regNo string) (*model.Doctor, error) {
	return s.doctorRepo.GetByRegistrationNumber(ctx, regNo)
}

func (s *Service) SetFeatured(ctx context.Context, doctorID uuid.UUID, featured bool, rank int) error {
	return s.doctorRepo.SetFeatured(ctx, doctorID, featured, rank)
}

// Delete removes a doctor profile and cascades to its chambers. Admin only,
// enforced at the route gate.
func (s *Service) Delete(ctx context.Context, doctorID uuid.UUID) error {
	return s.doctorRepo.Delete(ctx, doctorID)
}
