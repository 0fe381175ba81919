package appointment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/repository"
	"github.com/rakibul/healthdir-api/internal/service/appointment"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
)

type fakeAppointmentRepo struct {
	repository.AppointmentRepository
	appointments map[uuid.UUID]*model.Appointment
	details      []*model.AppointmentDetail
	slotCount    int
	listErr      error

	created    *model.Appointment
	lastStatus model.AppointmentStatus
	lastNotes  string
}

func newFakeAppointmentRepo(appointments ...*model.Appointment) *fakeAppointmentRepo {
	m := make(map[uuid.UUID]*model.Appointment)
	for _, a := range appointments {
		m[a.ID] = a
	}
	return &fakeAppointmentRepo{appointments: m}
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	a.ID = uuid.New()
	f.appointments[a.ID] = a
	f.created = a
	return nil
}

func (f *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return a, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, notes string) error {
	a, ok := f.appointments[id]
	if !ok {
		return apperrors.NotFound("appointment", nil)
	}
	a.Status = status
	a.Notes = notes
	f.lastStatus = status
	f.lastNotes = notes
	return nil
}

func (f *fakeAppointmentRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.details, nil
}

func (f *fakeAppointmentRepo) CountActiveAtSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, timeOfDay string) (int, error) {
	return f.slotCount, nil
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

func bookableDoctor() *model.Doctor {
	d := &model.Doctor{
		UserID:             uuid.New(),
		Name:               "Dr. Karim",
		VerificationStatus: model.VerificationApproved,
		IsActive:           true,
	}
	d.ID = uuid.New()
	return d
}

func newService(repo *fakeAppointmentRepo, doctorRepo *fakeDoctorRepo, cfg appointment.Config) *appointment.Service {
	return appointment.NewService(repo, doctorRepo, nil, cfg, nil)
}

func createRequest(doctorID uuid.UUID) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		DoctorID: doctorID,
		Date:     "2026-09-15",
		Time:     "10:30",
		Reason:   "follow-up",
	}
}

func TestCreateAppointment(t *testing.T) {
	doctor := bookableDoctor()
	repo := newFakeAppointmentRepo()
	svc := newService(repo, newFakeDoctorRepo(doctor), appointment.Config{})

	patientID := uuid.New()
	created, err := svc.CreateAppointment(context.Background(), patientID, createRequest(doctor.ID))

	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, created.Status)
	assert.Equal(t, patientID, created.PatientID)
	assert.Equal(t, doctor.ID, created.DoctorID)
	assert.Equal(t, "10:30", created.AppointmentTime)
}

func TestCreateAppointmentInvalidDate(t *testing.T) {
	doctor := bookableDoctor()
	svc := newService(newFakeAppointmentRepo(), newFakeDoctorRepo(doctor), appointment.Config{})

	req := createRequest(doctor.ID)
	req.Date = "15-09-2026"
	_, err := svc.CreateAppointment(context.Background(), uuid.New(), req)

	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCreateAppointmentUnbookableDoctor(t *testing.T) {
	tests := []struct {
		name   string
		status model.VerificationStatus
		active bool
	}{
		{"pending doctor", model.VerificationPending, true},
		{"rejected doctor", model.VerificationRejected, true},
		{"hidden doctor", model.VerificationApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doctor := bookableDoctor()
			doctor.VerificationStatus = tt.status
			doctor.IsActive = tt.active
			svc := newService(newFakeAppointmentRepo(), newFakeDoctorRepo(doctor), appointment.Config{})

			_, err := svc.CreateAppointment(context.Background(), uuid.New(), createRequest(doctor.ID))

			// An unbookable doctor looks exactly like a missing one.
			assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
		})
	}
}

// Two patients booking the same doctor, date and time both succeed when
// conflict enforcement is off. This is the default.
func TestCreateAppointmentDoubleBookingAllowed(t *testing.T) {
	doctor := bookableDoctor()
	repo := newFakeAppointmentRepo()
	repo.slotCount = 1
	svc := newService(repo, newFakeDoctorRepo(doctor), appointment.Config{})

	_, err := svc.CreateAppointment(context.Background(), uuid.New(), createRequest(doctor.ID))

	require.NoError(t, err)
}

func TestCreateAppointmentSlotConflictEnforced(t *testing.T) {
	doctor := bookableDoctor()
	repo := newFakeAppointmentRepo()
	repo.slotCount = 1
	svc := newService(repo, newFakeDoctorRepo(doctor), appointment.Config{EnforceSlotConflicts: true})

	_, err := svc.CreateAppointment(context.Background(), uuid.New(), createRequest(doctor.ID))

	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func pendingAppointment(doctor *model.Doctor, patientID uuid.UUID) *model.Appointment {
	a := &model.Appointment{
		PatientID:       patientID,
		DoctorID:        doctor.ID,
		AppointmentDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "10:30",
		Status:          model.AppointmentStatusPending,
	}
	a.ID = uuid.New()
	return a
}

func TestUpdateStatusDoctorLifecycle(t *testing.T) {
	doctor := bookableDoctor()
	actor := model.Actor{UserID: doctor.UserID, Role: model.RoleDoctor}

	tests := []struct {
		name   string
		from   model.AppointmentStatus
		to     model.AppointmentStatus
		wantOK bool
	}{
		{"confirm pending", model.AppointmentStatusPending, model.AppointmentStatusConfirmed, true},
		{"cancel pending", model.AppointmentStatusPending, model.AppointmentStatusCancelled, true},
		{"no-show pending", model.AppointmentStatusPending, model.AppointmentStatusNoShow, true},
		{"complete confirmed", model.AppointmentStatusConfirmed, model.AppointmentStatusCompleted, true},
		{"cancel confirmed", model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled, true},
		{"complete pending", model.AppointmentStatusPending, model.AppointmentStatusCompleted, false},
		{"confirm completed", model.AppointmentStatusCompleted, model.AppointmentStatusConfirmed, false},
		{"cancel cancelled", model.AppointmentStatusCancelled, model.AppointmentStatusCancelled, false},
		{"confirm no-show", model.AppointmentStatusNoShow, model.AppointmentStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt := pendingAppointment(doctor, uuid.New())
			appt.Status = tt.from
			repo := newFakeAppointmentRepo(appt)
			svc := newService(repo, newFakeDoctorRepo(doctor), appointment.Config{})

			err := svc.UpdateStatus(context.Background(), actor, appt.ID, &model.UpdateAppointmentStatusRequest{Status: tt.to})

			if tt.wantOK {
				require.NoError(t, err)
				assert.Equal(t, tt.to, appt.Status)
			} else {
				assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
				assert.Equal(t, tt.from, appt.Status)
			}
		})
	}
}

func TestUpdateStatusOwnership(t *testing.T) {
	doctor := bookableDoctor()
	patientID := uuid.New()
	strangerID := uuid.New()

	tests := []struct {
		name      string
		actor     model.Actor
		target    model.AppointmentStatus
		forbidden bool
	}{
		{"owning doctor confirms", model.Actor{UserID: doctor.UserID, Role: model.RoleDoctor}, model.AppointmentStatusConfirmed, false},
		{"patient cannot confirm own booking", model.Actor{UserID: patientID, Role: model.RolePatient}, model.AppointmentStatusConfirmed, true},
		{"patient cannot complete own booking", model.Actor{UserID: patientID, Role: model.RolePatient}, model.AppointmentStatusCompleted, true},
		{"patient cannot mark own no-show", model.Actor{UserID: patientID, Role: model.RolePatient}, model.AppointmentStatusNoShow, true},
		{"owning patient cancels", model.Actor{UserID: patientID, Role: model.RolePatient}, model.AppointmentStatusCancelled, false},
		{"stranger cannot cancel", model.Actor{UserID: strangerID, Role: model.RolePatient}, model.AppointmentStatusCancelled, true},
		{"other doctor cannot confirm", model.Actor{UserID: strangerID, Role: model.RoleDoctor}, model.AppointmentStatusConfirmed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt := pendingAppointment(doctor, patientID)
			repo := newFakeAppointmentRepo(appt)
			svc := newService(repo, newFakeDoctorRepo(doctor), appointment.Config{})

			err := svc.UpdateStatus(context.Background(), tt.actor, appt.ID, &model.UpdateAppointmentStatusRequest{Status: tt.target})

			if tt.forbidden {
				assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
				assert.Equal(t, model.AppointmentStatusPending, appt.Status)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// Ownership is checked before transition validity so outsiders cannot probe
// appointment state through error differences.
func TestUpdateStatusForbiddenBeforeInvalidTransition(t *testing.T) {
	doctor := bookableDoctor()
	appt := pendingAppointment(doctor, uuid.New())
	appt.Status = model.AppointmentStatusCompleted

	svc := newService(newFakeAppointmentRepo(appt), newFakeDoctorRepo(doctor), appointment.Config{})
	stranger := model.Actor{UserID: uuid.New(), Role: model.RolePatient}

	err := svc.UpdateStatus(context.Background(), stranger, appt.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusCancelled})

	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestUpdateStatusPendingTargetRejected(t *testing.T) {
	doctor := bookableDoctor()
	appt := pendingAppointment(doctor, uuid.New())
	svc := newService(newFakeAppointmentRepo(appt), newFakeDoctorRepo(doctor), appointment.Config{})
	actor := model.Actor{UserID: doctor.UserID, Role: model.RoleDoctor}

	err := svc.UpdateStatus(context.Background(), actor, appt.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusPending})

	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

// Notes accompany a doctor's transition; a patient's cancellation never
// writes notes.
func TestUpdateStatusNotesAreDoctorAuthored(t *testing.T) {
	doctor := bookableDoctor()
	patientID := uuid.New()

	appt := pendingAppointment(doctor, patientID)
	appt.Notes = "bring previous reports"
	repo := newFakeAppointmentRepo(appt)
	svc := newService(repo, newFakeDoctorRepo(doctor), appointment.Config{})

	patient := model.Actor{UserID: patientID, Role: model.RolePatient}
	err := svc.UpdateStatus(context.Background(), patient, appt.ID, &model.UpdateAppointmentStatusRequest{
		Status: model.AppointmentStatusCancelled,
		Notes:  "patient-written note",
	})

	require.NoError(t, err)
	assert.Equal(t, "bring previous reports", repo.lastNotes)
}

// A dangling doctor reference leaves the appointment readable by the patient
// but ownerless on the doctor side.
func TestUpdateStatusDoctorDeleted(t *testing.T) {
	doctor := bookableDoctor()
	patientID := uuid.New()
	appt := pendingAppointment(doctor, patientID)

	svc := newService(newFakeAppointmentRepo(appt), newFakeDoctorRepo(), appointment.Config{})

	err := svc.UpdateStatus(context.Background(), model.Actor{UserID: doctor.UserID, Role: model.RoleDoctor}, appt.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusConfirmed})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	err = svc.UpdateStatus(context.Background(), model.Actor{UserID: patientID, Role: model.RolePatient}, appt.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusCancelled})
	require.NoError(t, err)
}

type fakeOutboxRepo struct {
	repository.OutboxRepository
	events []*model.OutboxEvent
	err    error
}

func (f *fakeOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func TestUpdateStatusEnqueuesEvent(t *testing.T) {
	doctor := bookableDoctor()
	appt := pendingAppointment(doctor, uuid.New())
	outbox := &fakeOutboxRepo{}

	svc := appointment.NewService(newFakeAppointmentRepo(appt), newFakeDoctorRepo(doctor), outbox, appointment.Config{}, nil)
	actor := model.Actor{UserID: doctor.UserID, Role: model.RoleDoctor}

	err := svc.UpdateStatus(context.Background(), actor, appt.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusConfirmed})

	require.NoError(t, err)
	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventAppointmentStatusChanged, outbox.events[0].EventType)
}

// An outbox failure never surfaces to the caller; the transition is already
// committed.
func TestUpdateStatusEventFailureIgnored(t *testing.T) {
	doctor := bookableDoctor()
	appt := pendingAppointment(doctor, uuid.New())
	outbox := &fakeOutboxRepo{err: errors.New("outbox unavailable")}

	svc := appointment.NewService(newFakeAppointmentRepo(appt), newFakeDoctorRepo(doctor), outbox, appointment.Config{}, nil)
	actor := model.Actor{UserID: doctor.UserID, Role: model.RoleDoctor}

	err := svc.UpdateStatus(context.Background(), actor, appt.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusConfirmed})

	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, appt.Status)
}

func detailAt(date time.Time, status model.AppointmentStatus) *model.AppointmentDetail {
	d := &model.AppointmentDetail{
		Appointment: model.Appointment{
			PatientID:       uuid.New(),
			AppointmentDate: date,
			Status:          status,
		},
	}
	d.ID = uuid.New()
	return d
}

func TestCategorize(t *testing.T) {
	now := time.Date(2026, 9, 15, 14, 0, 0, 0, time.UTC)
	today := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	yesterday := today.AddDate(0, 0, -1)

	todayAppt := detailAt(today, model.AppointmentStatusConfirmed)
	upcomingAppt := detailAt(tomorrow, model.AppointmentStatusPending)
	pastAppt := detailAt(yesterday, model.AppointmentStatusCompleted)
	cancelledToday := detailAt(today, model.AppointmentStatusCancelled)
	cancelledFuture := detailAt(tomorrow, model.AppointmentStatusCancelled)

	svc := appointment.NewService(newFakeAppointmentRepo(), newFakeDoctorRepo(), nil, appointment.Config{}, nil)
	svc.SetNow(func() time.Time { return now })

	buckets := svc.Categorize([]*model.AppointmentDetail{todayAppt, upcomingAppt, pastAppt, cancelledToday, cancelledFuture})

	assert.Equal(t, []*model.AppointmentDetail{todayAppt}, buckets[model.BucketToday])
	assert.Equal(t, []*model.AppointmentDetail{upcomingAppt}, buckets[model.BucketUpcoming])
	assert.Equal(t, []*model.AppointmentDetail{pastAppt}, buckets[model.BucketPast])
	// Cancelled appointments never surface in today or upcoming.
	assert.Equal(t, []*model.AppointmentDetail{cancelledToday, cancelledFuture}, buckets[model.BucketCancelled])
}

func TestListAppointmentsFilterValidation(t *testing.T) {
	svc := newService(newFakeAppointmentRepo(), newFakeDoctorRepo(), appointment.Config{})

	_, err := svc.ListAppointments(context.Background(), uuid.New(), &model.AppointmentFilters{Status: "unknown"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = svc.ListAppointments(context.Background(), uuid.New(), &model.AppointmentFilters{Date: "not-a-date"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestListPatientHistoryAggregation(t *testing.T) {
	patientID := uuid.New()
	first := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	last := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)

	visit1 := detailAt(first, model.AppointmentStatusCompleted)
	visit1.PatientID = patientID
	visit1.PatientName = "Ayesha"
	visit2 := detailAt(last, model.AppointmentStatusCompleted)
	visit2.PatientID = patientID
	cancelled := detailAt(last, model.AppointmentStatusCancelled)
	cancelled.PatientID = patientID

	other := detailAt(last, model.AppointmentStatusPending)

	repo := newFakeAppointmentRepo()
	repo.details = []*model.AppointmentDetail{visit1, visit2, cancelled, other}
	svc := newService(repo, newFakeDoctorRepo(), appointment.Config{})

	summaries := svc.ListPatientHistory(context.Background(), uuid.New())

	require.Len(t, summaries, 2)
	assert.Equal(t, "Ayesha", summaries[0].Name)
	assert.Equal(t, 3, summaries[0].TotalAppointments)
	// Only completed appointments count as visits.
	assert.Equal(t, 2, summaries[0].CompletedVisits)
	require.NotNil(t, summaries[0].FirstVisit)
	assert.Equal(t, first, *summaries[0].FirstVisit)
	assert.Equal(t, last, *summaries[0].LastVisit)

	assert.Equal(t, 0, summaries[1].CompletedVisits)
	assert.Nil(t, summaries[1].FirstVisit)
}

// The history read path is best effort: a storage failure renders as an
// empty list, never an error page.
func TestListPatientHistoryBestEffort(t *testing.T) {
	repo := newFakeAppointmentRepo()
	repo.listErr = errors.New("relation does not exist")
	svc := newService(repo, newFakeDoctorRepo(), appointment.Config{})

	summaries := svc.ListPatientHistory(context.Background(), uuid.New())

	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}
