package chamber_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/repository"
	"github.com/rakibul/healthdir-api/internal/service/chamber"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
)

type fakeChamberRepo struct {
	repository.ChamberRepository
	chambers map[uuid.UUID]*model.Chamber
	deleted  []uuid.UUID
}

func newFakeChamberRepo(chambers ...*model.Chamber) *fakeChamberRepo {
	m := make(map[uuid.UUID]*model.Chamber)
	for _, c := range chambers {
		m[c.ID] = c
	}
	return &fakeChamberRepo{chambers: m}
}

func (f *fakeChamberRepo) Create(ctx context.Context, c *model.Chamber) error {
	c.ID = uuid.New()
	f.chambers[c.ID] = c
	return nil
}

func (f *fakeChamberRepo) Get(ctx context.Context, id uuid.UUID) (*model.Chamber, error) {
	c, ok := f.chambers[id]
	if !ok {
		return nil, apperrors.NotFound("chamber", nil)
	}
	return c, nil
}

func (f *fakeChamberRepo) Update(ctx context.Context, c *model.Chamber) error {
	f.chambers[c.ID] = c
	return nil
}

func (f *fakeChamberRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.chambers, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeDoctorRepo struct {
	repository.DoctorRepository
	doctors map[uuid.UUID]*model.Doctor
}

func newFakeDoctorRepo(doctors ...*model.Doctor) *fakeDoctorRepo {
	m := make(map[uuid.UUID]*model.Doctor)
	for _, d := range doctors {
		m[d.ID] = d
	}
	return &fakeDoctorRepo{doctors: m}
}

func (f *fakeDoctorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return d, nil
}

func newDoctor() *model.Doctor {
	d := &model.Doctor{UserID: uuid.New(), Name: "Dr. Sultana"}
	d.ID = uuid.New()
	return d
}

func validRequest() *model.CreateChamberRequest {
	return &model.CreateChamberRequest{
		Name:    "City Clinic",
		Address: "12 Green Road",
		Days:    model.WeekdayList{"saturday", "monday"},
		Timing:  "18:00-21:00",
		Fee:     800,
	}
}

func TestAddChamber(t *testing.T) {
	doctor := newDoctor()
	svc := chamber.NewService(newFakeChamberRepo(), newFakeDoctorRepo(doctor))
	owner := model.Actor{UserID: doctor.UserID, Role: model.RoleDoctor}

	created, err := svc.AddChamber(context.Background(), owner, doctor.ID, validRequest())

	require.NoError(t, err)
	assert.Equal(t, doctor.ID, created.DoctorID)
	assert.Equal(t, "City Clinic", created.Name)
}

func TestAddChamberValidation(t *testing.T) {
	doctor := newDoctor()
	svc := chamber.NewService(newFakeChamberRepo(), newFakeDoctorRepo(doctor))
	owner := model.Actor{UserID: doctor.UserID, Role: model.RoleDoctor}

	t.Run("missing name", func(t *testing.T) {
		req := validRequest()
		req.Name = ""
		_, err := svc.AddChamber(context.Background(), owner, doctor.ID, req)
		assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	})

	t.Run("missing address", func(t *testing.T) {
		req := validRequest()
		req.Address = ""
		_, err := svc.AddChamber(context.Background(), owner, doctor.ID, req)
		assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	})

	t.Run("bad weekday", func(t *testing.T) {
		req := validRequest()
		req.Days = model.WeekdayList{"funday"}
		_, err := svc.AddChamber(context.Background(), owner, doctor.ID, req)
		assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	})
}

func TestAddChamberOwnership(t *testing.T) {
	doctor := newDoctor()
	svc := chamber.NewService(newFakeChamberRepo(), newFakeDoctorRepo(doctor))

	t.Run("other doctor denied", func(t *testing.T) {
		other := model.Actor{UserID: uuid.New(), Role: model.RoleDoctor}
		_, err := svc.AddChamber(context.Background(), other, doctor.ID, validRequest())
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	})

	t.Run("admin allowed", func(t *testing.T) {
		admin := model.Actor{UserID: uuid.New(), Role: model.RoleAdmin}
		_, err := svc.AddChamber(context.Background(), admin, doctor.ID, validRequest())
		assert.NoError(t, err)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		owner := model.Actor{UserID: doctor.UserID, Role: model.RoleDoctor}
		_, err := svc.AddChamber(context.Background(), owner, uuid.New(), validRequest())
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestUpdateChamberPartial(t *testing.T) {
	doctor := newDoctor()
	existing := &model.Chamber{
		DoctorID: doctor.ID,
		Name:     "City Clinic",
		Address:  "12 Green Road",
		Fee:      800,
	}
	existing.ID = uuid.New()

	svc := chamber.NewService(newFakeChamberRepo(existing), newFakeDoctorRepo(doctor))
	owner := model.Actor{UserID: doctor.UserID, Role: model.RoleDoctor}

	newFee := 1000
	updated, err := svc.UpdateChamber(context.Background(), owner, existing.ID, &model.UpdateChamberRequest{Fee: &newFee})

	require.NoError(t, err)
	assert.Equal(t, 1000, updated.Fee)
	// Untouched fields survive a partial update.
	assert.Equal(t, "City Clinic", updated.Name)
	assert.Equal(t, "12 Green Road", updated.Address)
}

func TestUpdateChamberValidation(t *testing.T) {
	doctor := newDoctor()
	existing := &model.Chamber{DoctorID: doctor.ID, Name: "City Clinic", Address: "12 Green Road"}
	existing.ID = uuid.New()

	svc := chamber.NewService(newFakeChamberRepo(existing), newFakeDoctorRepo(doctor))
	owner := model.Actor{UserID: doctor.UserID, Role: model.RoleDoctor}

	empty := ""
	_, err := svc.UpdateChamber(context.Background(), owner, existing.ID, &model.UpdateChamberRequest{Name: &empty})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	negative := -1
	_, err = svc.UpdateChamber(context.Background(), owner, existing.ID, &model.UpdateChamberRequest{Fee: &negative})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestDeleteChamberOwnership(t *testing.T) {
	doctor := newDoctor()
	existing := &model.Chamber{DoctorID: doctor.ID, Name: "City Clinic", Address: "12 Green Road"}
	existing.ID = uuid.New()

	repo := newFakeChamberRepo(existing)
	svc := chamber.NewService(repo, newFakeDoctorRepo(doctor))

	stranger := model.Actor{UserID: uuid.New(), Role: model.RoleDoctor}
	err := svc.DeleteChamber(context.Background(), stranger, existing.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	owner := model.Actor{UserID: doctor.UserID, Role: model.RoleDoctor}
	err = svc.DeleteChamber(context.Background(), owner, existing.ID)
	require.NoError(t, err)
	assert.Contains(t, repo.deleted, existing.ID)
}
