package role

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/repository"
)

// Resolver derives a principal's role from relational membership. The role
// is never stored and never cached across requests; profile sets can change
// mid-session and a stale role is an authorization bug.
type Resolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) model.Role
	Has(ctx context.Context, userID uuid.UUID, role model.Role) bool
}

type Service struct {
	adminRepo   repository.AdminRepository
	doctorRepo  repository.DoctorRepository
	patientRepo repository.PatientRepository
	userRepo    repository.UserRepository
}

func NewService(adminRepo repository.AdminRepository, doctorRepo repository.DoctorRepository, patientRepo repository.PatientRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		adminRepo:   adminRepo,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		userRepo:    userRepo,
	}
}

// Resolve checks admin membership, then doctor profile, then patient
// profile, and returns on first match. Lookup errors resolve to RoleNone:
// the check fails closed. A doctor resolves to RoleDoctor regardless of
// verification status so unverified doctors still reach their own
// pending-state dashboard.
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID) model.Role {
	isAdmin, err := s.adminRepo.IsAdmin(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("admin lookup failed, resolving to none")
		return model.RoleNone
	}
	if isAdmin {
		return model.RoleAdmin
	}

	isDoctor, err := s.doctorRepo.ExistsForUser(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("doctor lookup failed, resolving to none")
		return model.RoleNone
	}
	if isDoctor {
		return model.RoleDoctor
	}

	isPatient, err := s.patientRepo.ExistsForUser(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("patient lookup failed, resolving to none")
		return model.RoleNone
	}
	if isPatient {
		return model.RolePatient
	}

	return model.RoleNone
}

// GrantAdmin adds the user with the given email to the admin membership
// table. Granting is idempotent; the membership insert ignores duplicates.
// The first admin is seeded directly in the store, every later one comes
// through here.
func (s *Service) GrantAdmin(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.adminRepo.Grant(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to grant admin role: %w", err)
	}
	return nil
}

// Has reports whether the principal structurally satisfies a role: for
// doctor and patient the presence of the profile is sufficient, for admin
// the membership record must exist. An admin who also owns a doctor profile
// satisfies both roles. Errors fail closed.
func (s *Service) Has(ctx context.Context, userID uuid.UUID, role model.Role) bool {
	var ok bool
	var err error

	switch role {
	case model.RoleAdmin:
		ok, err = s.adminRepo.IsAdmin(ctx, userID)
	case model.RoleDoctor:
		ok, err = s.doctorRepo.ExistsForUser(ctx, userID)
	case model.RolePatient:
		ok, err = s.patientRepo.ExistsForUser(ctx, userID)
	default:
		return false
	}

	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Str("role", string(role)).Msg("role check failed, denying")
		return false
	}
	return ok
}
