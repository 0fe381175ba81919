package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rakibul/healthdir-api/internal/middleware"
	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/service/chamber"
	"github.com/rakibul/healthdir-api/internal/service/doctor"
	"github.com/rakibul/healthdir-api/internal/service/role"
	"github.com/rakibul/healthdir-api/internal/service/verification"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
	"github.com/rakibul/healthdir-api/pkg/httputil"
)

// Handler covers the moderation surface: verification decisions,
// directory curation, admin grants and cleanup of doctor records.
type Handler struct {
	verifications *verification.Service
	doctors       *doctor.Service
	chambers      *chamber.Service
	roles         *role.Service
}

func NewHandler(verifications *verification.Service, doctors *doctor.Service, chambers *chamber.Service, roles *role.Service) *Handler {
	return &Handler{
		verifications: verifications,
		doctors:       doctors,
		chambers:      chambers,
		roles:         roles,
	}
}

// GrantAdmin promotes an existing user to admin by email.
func (h *Handler) GrantAdmin(c *gin.Context) {
	var req model.GrantAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	if err := h.roles.GrantAdmin(c.Request.Context(), req.Email); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"granted": true})
}

func (h *Handler) ListPendingDoctors(c *gin.Context) {
	doctors, err := h.verifications.ListPending(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, doctors)
}

func (h *Handler) ApproveDoctor(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	if err := h.verifications.Approve(c.Request.Context(), doctorID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"verification_status": model.VerificationApproved})
}

func (h *Handler) RejectDoctor(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	var req model.RejectDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	if err := h.verifications.Reject(c.Request.Context(), doctorID, req.Reason); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"verification_status": model.VerificationRejected})
}

func (h *Handler) SetDoctorVisibility(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	var req model.SetVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	if err := h.verifications.SetVisibility(c.Request.Context(), doctorID, *req.IsActive); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"is_active": *req.IsActive})
}

func (h *Handler) FeatureDoctor(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	var req model.FeatureDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	if err := h.doctors.SetFeatured(c.Request.Context(), doctorID, *req.IsFeatured, req.FeaturedRank); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"is_featured": *req.IsFeatured})
}

// DeleteDoctor removes a doctor record and its chambers. Appointments
// referencing the doctor are kept for history.
func (h *Handler) DeleteDoctor(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	if err := h.doctors.Delete(c.Request.Context(), doctorID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) AddChamber(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	var req model.CreateChamberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	created, err := h.chambers.AddChamber(c.Request.Context(), actor, doctorID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, created)
}

func (h *Handler) UpdateChamber(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	chamberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid chamber ID"))
		return
	}

	var req model.UpdateChamberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	updated, err := h.chambers.UpdateChamber(c.Request.Context(), actor, chamberID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteChamber(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	chamberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid chamber ID"))
		return
	}

	if err := h.chambers.DeleteChamber(c.Request.Context(), actor, chamberID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
