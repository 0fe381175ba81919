package directory_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	directoryhandler "github.com/rakibul/healthdir-api/internal/handler/directory"
	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/repository"
	"github.com/rakibul/healthdir-api/internal/service/doctor"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
)

type fakeDoctorRepo struct {
	repository.DoctorRepository
	doctors []*model.Doctor
}

// ListPublic mirrors the production query: bookable doctors only, filtered by
// free text over name/specialization and by exact specialization.
func (f *fakeDoctorRepo) ListPublic(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	out := []*model.Doctor{}
	for _, d := range f.doctors {
		if !d.IsPubliclyBookable() {
			continue
		}
		if filters != nil && filters.Search != "" {
			q := strings.ToLower(filters.Search)
			if !strings.Contains(strings.ToLower(d.Name), q) &&
				!strings.Contains(strings.ToLower(d.Specialization), q) {
				continue
			}
		}
		if filters != nil && filters.Specialization != "" &&
			!strings.EqualFold(d.Specialization, filters.Specialization) {
			continue
		}
		out = append(out, d)
	}

	if filters != nil && filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filters.PageSize
		if start >= len(out) {
			return []*model.Doctor{}, nil
		}
		end := start + filters.PageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (f *fakeDoctorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	for _, d := range f.doctors {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, apperrors.NotFound("doctor", nil)
}

type fakeChamberRepo struct {
	repository.ChamberRepository
}

func (f *fakeChamberRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Chamber, error) {
	return nil, nil
}

func seedDoctor(name, specialization string, status model.VerificationStatus, active bool) *model.Doctor {
	d := &model.Doctor{
		UserID:             uuid.New(),
		Name:               name,
		Specialization:     specialization,
		VerificationStatus: status,
		IsActive:           active,
	}
	d.ID = uuid.New()
	return d
}

func newTestRouter(doctors ...*model.Doctor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := doctor.NewService(&fakeDoctorRepo{doctors: doctors}, &fakeChamberRepo{})
	h := directoryhandler.NewHandler(svc)

	r := gin.New()
	r.GET("/doctors", h.ListDoctors)
	r.GET("/doctors/:id", h.GetDoctor)
	return r
}

func listNames(t *testing.T, r *gin.Engine, url string) []string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	names := make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		names = append(names, d.Name)
	}
	return names
}

func TestListDoctorsShowsBookableOnly(t *testing.T) {
	r := newTestRouter(
		seedDoctor("Dr. Karim", "cardiology", model.VerificationApproved, true),
		seedDoctor("Dr. Pending", "cardiology", model.VerificationPending, true),
		seedDoctor("Dr. Hidden", "cardiology", model.VerificationApproved, false),
		seedDoctor("Dr. Rejected", "cardiology", model.VerificationRejected, true),
	)

	assert.Equal(t, []string{"Dr. Karim"}, listNames(t, r, "/doctors"))
}

func TestListDoctorsFilters(t *testing.T) {
	r := newTestRouter(
		seedDoctor("Dr. Karim", "cardiology", model.VerificationApproved, true),
		seedDoctor("Dr. Sultana", "neurology", model.VerificationApproved, true),
	)

	assert.Equal(t, []string{"Dr. Sultana"}, listNames(t, r, "/doctors?q=sultana"))
	assert.Equal(t, []string{"Dr. Karim"}, listNames(t, r, "/doctors?specialization=cardiology"))
	assert.Empty(t, listNames(t, r, "/doctors?q=dermatology"))
}

func TestListDoctorsPagination(t *testing.T) {
	r := newTestRouter(
		seedDoctor("Dr. Akter", "cardiology", model.VerificationApproved, true),
		seedDoctor("Dr. Karim", "cardiology", model.VerificationApproved, true),
		seedDoctor("Dr. Sultana", "neurology", model.VerificationApproved, true),
	)

	assert.Equal(t, []string{"Dr. Akter", "Dr. Karim"}, listNames(t, r, "/doctors?page=1&page_size=2"))
	assert.Equal(t, []string{"Dr. Sultana"}, listNames(t, r, "/doctors?page=2&page_size=2"))
	assert.Empty(t, listNames(t, r, "/doctors?page=3&page_size=2"))
}

func TestGetDoctorNotFoundForUnbookable(t *testing.T) {
	hidden := seedDoctor("Dr. Hidden", "cardiology", model.VerificationApproved, false)
	r := newTestRouter(hidden)

	req := httptest.NewRequest(http.MethodGet, "/doctors/"+hidden.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDoctorInvalidID(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/doctors/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
