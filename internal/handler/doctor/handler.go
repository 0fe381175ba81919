package doctor

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rakibul/healthdir-api/internal/middleware"
	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/service/appointment"
	"github.com/rakibul/healthdir-api/internal/service/chamber"
	"github.com/rakibul/healthdir-api/internal/service/doctor"
	"github.com/rakibul/healthdir-api/internal/service/verification"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
	"github.com/rakibul/healthdir-api/pkg/httputil"
)

// Handler serves the doctor dashboard. Every route behind it requires a
// doctor-gated principal; the acting doctor is always resolved from the
// token, never from the URL.
type Handler struct {
	doctors       *doctor.Service
	chambers      *chamber.Service
	appointments  *appointment.Service
	verifications *verification.Service
}

func NewHandler(
	doctors *doctor.Service,
	chambers *chamber.Service,
	appointments *appointment.Service,
	verifications *verification.Service,
) *Handler {
	return &Handler{
		doctors:       doctors,
		chambers:      chambers,
		appointments:  appointments,
		verifications: verifications,
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	profile, err := h.doctors.GetProfile(c.Request.Context(), actor.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	var req model.UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	profile, err := h.doctors.UpdateProfile(c.Request.Context(), actor.UserID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, profile)
}

// SetVisibility lets a doctor hide or unhide their own directory listing.
// It never touches verification status.
func (h *Handler) SetVisibility(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	var req model.SetVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	doc, err := h.doctors.GetProfile(c.Request.Context(), actor.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.verifications.SetVisibility(c.Request.Context(), doc.ID, *req.IsActive); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"is_active": *req.IsActive})
}

func (h *Handler) ListChambers(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	doc, err := h.doctors.GetProfile(c.Request.Context(), actor.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	chambers, err := h.chambers.ListChambers(c.Request.Context(), doc.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, chambers)
}

func (h *Handler) AddChamber(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	var req model.CreateChamberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	doc, err := h.doctors.GetProfile(c.Request.Context(), actor.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	created, err := h.chambers.AddChamber(c.Request.Context(), actor, doc.ID, &req)
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

// ListAppointments returns the doctor's appointments, optionally grouped
// into today/upcoming/past/cancelled buckets with ?grouped=true.
func (h *Handler) ListAppointments(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	var filters model.AppointmentFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	doc, err := h.doctors.GetProfile(c.Request.Context(), actor.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appointments, err := h.appointments.ListAppointments(c.Request.Context(), doc.ID, &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if c.Query("grouped") == "true" {
		httputil.RespondWithSuccess(c, h.appointments.Categorize(appointments))
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID"))
		return
	}

	detail, err := h.appointments.GetAppointment(c.Request.Context(), actor, appointmentID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, detail)
}

func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID"))
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	if err := h.appointments.UpdateStatus(c.Request.Context(), actor, appointmentID, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"status": req.Status})
}

// ListPatientHistory aggregates each patient the doctor has seen. The
// list is best effort and renders empty when the underlying read fails.
func (h *Handler) ListPatientHistory(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	doc, err := h.doctors.GetProfile(c.Request.Context(), actor.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, h.appointments.ListPatientHistory(c.Request.Context(), doc.ID))
}
