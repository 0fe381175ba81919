package chamber

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/repository"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
)

// Service is the chamber registry. Chambers belong to exactly one doctor
// and only the owning doctor or an admin may mutate them.
type Service struct {
	chamberRepo repository.ChamberRepository
	doctorRepo  repository.DoctorRepository
}

func NewService(chamberRepo repository.ChamberRepository, doctorRepo repository.DoctorRepository) *Service {
	return &Service{
		chamberRepo: chamberRepo,
		doctorRepo:  doctorRepo,
	}
}

func (s *Service) AddChamber(ctx context.Context, actor model.Actor, doctorID uuid.UUID, req *model.CreateChamberRequest) (*model.Chamber, error) {
	if req.Name == "" {
		return nil, apperrors.Validation("chamber name is required")
	}
	if req.Address == "" {
		return nil, apperrors.Validation("chamber address is required")
	}
	if err := req.Days.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	doctor, err := s.doctorRepo.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, doctor); err != nil {
		return nil, err
	}

	chamber := &model.Chamber{
		DoctorID:        doctor.ID,
		Name:            req.Name,
		Address:         req.Address,
		Phone:           req.Phone,
		Days:            req.Days,
		Timing:          req.Timing,
		Fee:             req.Fee,
		SerialAvailable: req.SerialAvailable,
	}

	if err := s.chamberRepo.Create(ctx, chamber); err != nil {
		return nil, fmt.Errorf("failed to create chamber: %w", err)
	}
	return chamber, nil
}

func (s *Service) UpdateChamber(ctx context.Context, actor model.Actor, chamberID uuid.UUID, req *model.UpdateChamberRequest) (*model.Chamber, error) {
	chamber, err := s.chamberRepo.Get(ctx, chamberID)
	if err != nil {
		return nil, err
	}

	doctor, err := s.doctorRepo.Get(ctx, chamber.DoctorID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, doctor); err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperrors.Validation("chamber name is required")
		}
		chamber.Name = *req.Name
	}
	if req.Address != nil {
		if *req.Address == "" {
			return nil, apperrors.Validation("chamber address is required")
		}
		chamber.Address = *req.Address
	}
	if req.Phone != nil {
		chamber.Phone = *req.Phone
	}
	if req.Days != nil {
		if err := req.Days.Validate(); err != nil {
			return nil, apperrors.Validation(err.Error())
		}
		chamber.Days = *req.Days
	}
	if req.Timing != nil {
		chamber.Timing = *req.Timing
	}
	if req.Fee != nil {
		if *req.Fee < 0 {
			return nil, apperrors.Validation("fee cannot be negative")
		}
		chamber.Fee = *req.Fee
	}
	if req.SerialAvailable != nil {
		chamber.SerialAvailable = *req.SerialAvailable
	}

	if err := s.chamberRepo.Update(ctx, chamber); err != nil {
		return nil, fmt.Errorf("failed to update chamber: %w", err)
	}
	return chamber, nil
}

// DeleteChamber does not touch appointments referencing the chamber; their
// chamber_id becomes a dangling weak reference resolved at read time.
func (s *Service) DeleteChamber(ctx context.Context, actor model.Actor, chamberID uuid.UUID) error {
	chamber, err := s.chamberRepo.Get(ctx, chamberID)
	if err != nil {
		return err
	}

	doctor, err := s.doctorRepo.Get(ctx, chamber.DoctorID)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, doctor); err != nil {
		return err
	}

	return s.chamberRepo.Delete(ctx, chamberID)
}

func (s *Service) ListChambers(ctx context.Context, doctorID uuid.UUID) ([]*model.Chamber, error) {
	chambers, err := s.chamberRepo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chambers: %w", err)
	}
	return chambers, nil
}

func (s *Service) authorize(actor model.Actor, doctor *model.Doctor) error {
	if actor.Role == model.RoleAdmin {
		return nil
	}
	if doctor.UserID == actor.UserID {
		return nil
	}
	return apperrors.Forbidden("")
}
