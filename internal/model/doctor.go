package model

import (
	"github.com/google/uuid"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// verificationTransitions is the admin moderation state machine. Re-review is
// permitted in both directions, so there is no terminal state.
var verificationTransitions = map[VerificationStatus][]VerificationStatus{
	VerificationPending:  {VerificationApproved, VerificationRejected},
	VerificationApproved: {VerificationRejected},
	VerificationRejected: {VerificationApproved},
}

// CanTransitionTo reports whether the moderation state machine permits
// moving from s to target.
func (s VerificationStatus) CanTransitionTo(target VerificationStatus) bool {
	for _, next := range verificationTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Doctor is a doctor profile listed in the public directory once verified.
type Doctor struct {
	Base
	UserID             uuid.UUID          `db:"user_id" json:"user_id"`
	Name               string             `db:"name" json:"name"`
	Specialization     string             `db:"specialization" json:"specialization"`
	RegistrationNumber string             `db:"registration_number" json:"registration_number"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verification_status"`
	RejectionReason    *string            `db:"rejection_reason" json:"rejection_reason,omitempty"`
	IsActive           bool               `db:"is_active" json:"is_active"`
	IsFeatured         bool               `db:"is_featured" json:"is_featured"`
	FeaturedRank       int                `db:"featured_rank" json:"featured_rank"`
}

// IsPubliclyBookable is the single predicate every public surface agrees on:
// listing, search, registration lookup and appointment creation.
func (d *Doctor) IsPubliclyBookable() bool {
	return d.VerificationStatus == VerificationApproved && d.IsActive
}

// DoctorPublicProfile is the directory view of a doctor with their
// chambers embedded.
type DoctorPublicProfile struct {
	Doctor
	Chambers []*Chamber `json:"chambers"`
}

type UpdateDoctorRequest struct {
	Name           *string `json:"name"`
	Specialization *string `json:"specialization"`
}

type RejectDoctorRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type SetVisibilityRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type FeatureDoctorRequest struct {
	IsFeatured   *bool `json:"is_featured" binding:"required"`
	FeaturedRank int   `json:"featured_rank"`
}

type DoctorFilters struct {
	Search         string `form:"q"`
	Specialization string `form:"specialization"`
	Pagination
}
