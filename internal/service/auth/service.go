package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/repository"
	"github.com/rakibul/healthdir-api/internal/service/role"
	"github.com/rakibul/healthdir-api/pkg/auth"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
	"github.com/rakibul/healthdir-api/pkg/security"
)

type Service struct {
	userRepo    repository.UserRepository
	doctorRepo  repository.DoctorRepository
	patientRepo repository.PatientRepository
	roles       role.Resolver
	hasher      security.PasswordHasher
	tokens      auth.TokenService
	tokenExpiry time.Duration
}

func NewService(
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	roles role.Resolver,
	hasher security.PasswordHasher,
	tokens auth.TokenService,
	tokenExpiry time.Duration,
) *Service {
	return &Service{
		userRepo:    userRepo,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		roles:       roles,
		hasher:      hasher,
		tokens:      tokens,
		tokenExpiry: tokenExpiry,
	}
}

// Signup creates a principal plus the profile matching the requested
// account type. Doctor profiles start unverified and invisible to the
// public until an admin approves them.
func (s *Service) Signup(ctx context.Context, req *model.SignupRequest) (*model.TokenResponse, error) {
	if req.AccountType != "doctor" && req.AccountType != "patient" {
		return nil, apperrors.Validation("unknown account type")
	}
	if req.AccountType == "doctor" && req.RegistrationNumber == "" {
		return nil, apperrors.Validation("registration number is required for doctor signup")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperrors.Validation("email is already registered")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.createProfile(ctx, user, req); err != nil {
		// A user without a profile resolves to no role and blocks the
		// email forever, so undo the user row before reporting failure.
		if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
			log.Warn().Err(delErr).
				Str("user_id", user.ID.String()).
				Msg("failed to remove user after profile creation failure")
		}
		return nil, err
	}

	return s.issueToken(ctx, user)
}

func (s *Service) createProfile(ctx context.Context, user *model.User, req *model.SignupRequest) error {
	switch req.AccountType {
	case "doctor":
		doctor := &model.Doctor{
			UserID:             user.ID,
			Name:               req.Name,
			Specialization:     req.Specialization,
			RegistrationNumber: req.RegistrationNumber,
			VerificationStatus: model.VerificationPending,
			IsActive:           true,
		}
		if err := s.doctorRepo.Create(ctx, doctor); err != nil {
			return fmt.Errorf("failed to create doctor profile: %w", err)
		}
	case "patient":
		patient := &model.Patient{
			UserID: user.ID,
			Name:   req.Name,
		}
		if err := s.patientRepo.Create(ctx, patient); err != nil {
			return fmt.Errorf("failed to create patient profile: %w", err)
		}
	}
	return nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthenticated(fmt.Errorf("invalid credentials"))
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthenticated(fmt.Errorf("invalid credentials"))
	}

	return s.issueToken(ctx, user)
}

// CurrentPrincipal resolves a bearer token into the authenticated user id
// and email, the only identity attributes the core reads.
func (s *Service) CurrentPrincipal(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthenticated(err)
	}
	return claims, nil
}

func (s *Service) issueToken(ctx context.Context, user *model.User) (*model.TokenResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.tokenExpiry.Seconds()),
		Role:        s.roles.Resolve(ctx, user.ID),
	}, nil
}
