package directory

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/service/doctor"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
	"github.com/rakibul/healthdir-api/pkg/httputil"
)

// Handler serves the public doctor directory. No authentication; only
// approved, visible doctors are reachable through it.
type Handler struct {
	doctors *doctor.Service
}

func NewHandler(doctors *doctor.Service) *Handler {
	return &Handler{doctors: doctors}
}

func (h *Handler) ListDoctors(c *gin.Context) {
	var filters model.DoctorFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	doctors, err := h.doctors.ListPublic(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, doctors)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	profile, err := h.doctors.GetPublicProfile(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, profile)
}

// VerifyRegistration looks up a doctor by registration number so patients
// can confirm credentials before booking.
func (h *Handler) VerifyRegistration(c *gin.Context) {
	regNo := strings.TrimSpace(c.Query("registration_number"))
	if regNo == "" {
		httputil.RespondWithError(c, apperrors.Validation("registration_number is required"))
		return
	}

	doc, err := h.doctors.VerifyRegistration(c.Request.Context(), regNo)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, doc)
}
