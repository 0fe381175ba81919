package patient

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rakibul/healthdir-api/internal/middleware"
	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/service/appointment"
	"github.com/rakibul/healthdir-api/internal/service/patient"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
	"github.com/rakibul/healthdir-api/pkg/httputil"
)

type Handler struct {
	patients     *patient.Service
	appointments *appointment.Service
}

func NewHandler(patients *patient.Service, appointments *appointment.Service) *Handler {
	return &Handler{
		patients:     patients,
		appointments: appointments,
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	profile, err := h.patients.GetProfile(c.Request.Context(), actor.UserID)
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

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	profile, err := h.patients.UpdateProfile(c.Request.Context(), actor.UserID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, profile)
}

func (h *Handler) BookAppointment(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	created, err := h.appointments.CreateAppointment(c.Request.Context(), actor.UserID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, created)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
		return
	}

	appointments, err := h.appointments.ListForPatient(c.Request.Context(), actor.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
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

// CancelAppointment is the only lifecycle move a patient can make, and
// only on their own booking.
func (h *Handler) CancelAppointment(c *gin.Context) {
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

	req := model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusCancelled}
	if err := h.appointments.UpdateStatus(c.Request.Context(), actor, appointmentID, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"status": model.AppointmentStatusCancelled})
}
