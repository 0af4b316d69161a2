package appointment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/service/appointment"
	"github.com/Yasserk123/HealthVision-Projet/internal/session"
	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
	"github.com/Yasserk123/HealthVision-Projet/pkg/metrics"
	"github.com/Yasserk123/HealthVision-Projet/pkg/validator"
)

type fakeRepo struct {
	created   []*model.NewAppointment
	createErr error
	statuses  map[uuid.UUID]model.AppointmentStatus
	lists     int
}

func (f *fakeRepo) Create(_ context.Context, a *model.NewAppointment) (*model.Appointment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, a)
	return &model.Appointment{
		Base:      model.Base{ID: uuid.New()},
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		Date:      a.Date,
		Time:      a.Time,
		Specialty: a.Specialty,
		Reason:    a.Reason,
		Status:    a.Status,
		Doctor:    &model.Doctor{Base: model.Base{ID: a.DoctorID}, Name: "Dr. Martin", Specialty: a.Specialty},
	}, nil
}

func (f *fakeRepo) ListByPatient(context.Context, uuid.UUID) ([]*model.Appointment, error) {
	f.lists++
	return nil, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	if f.statuses == nil {
		f.statuses = map[uuid.UUID]model.AppointmentStatus{}
	}
	f.statuses[id] = status
	return nil
}

type sentNotification struct {
	userID  uuid.UUID
	title   string
	message string
	typ     model.NotificationType
}

type fakeNotifier struct {
	sent []sentNotification
	err  error
}

func (f *fakeNotifier) ListForCurrentUser(context.Context) ([]*model.Notification, error) {
	return nil, nil
}

func (f *fakeNotifier) MarkRead(context.Context, uuid.UUID) error { return nil }

func (f *fakeNotifier) MarkAllRead(context.Context) error { return nil }

func (f *fakeNotifier) Create(_ context.Context, userID uuid.UUID, title, message string, typ model.NotificationType) (*model.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, sentNotification{userID, title, message, typ})
	return &model.Notification{Base: model.Base{ID: uuid.New()}, UserID: userID, Title: title, Message: message, Type: typ}, nil
}

type fakeMailer struct {
	to, subject, body string
	err               error
}

func (f *fakeMailer) SendCustom(_ context.Context, to, subject, body string) error {
	f.to, f.subject, f.body = to, subject, body
	return f.err
}

func newService(repo *fakeRepo, notifier *fakeNotifier, mailer *fakeMailer) *appointment.Service {
	if mailer == nil {
		return appointment.NewService(repo, notifier, nil, validator.New(), metrics.Noop(), zerolog.Nop())
	}
	return appointment.NewService(repo, notifier, mailer, validator.New(), metrics.Noop(), zerolog.Nop())
}

func asPatient(id uuid.UUID) context.Context {
	return session.WithUser(context.Background(), &model.User{
		ID: id, Email: "a@example.com", Name: "A B", Role: model.RolePatient,
	})
}

func validRequest() *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		DoctorID:  uuid.New(),
		Date:      "2025-03-01",
		Time:      "09:30",
		Specialty: "Cardiologie",
		Reason:    "Douleurs thoraciques",
	}
}

func TestCreateStampsCallerAndPending(t *testing.T) {
	repo, notifier := &fakeRepo{}, &fakeNotifier{}
	svc := newService(repo, notifier, nil)
	patientID := uuid.New()

	res, err := svc.Create(asPatient(patientID), validRequest())
	require.NoError(t, err)
	assert.True(t, res.Notified)
	assert.Equal(t, patientID, res.Appointment.PatientID)
	assert.Equal(t, model.AppointmentStatusPending, res.Appointment.Status)
	assert.Equal(t, "Dr. Martin", res.Appointment.Doctor.Name)

	require.Len(t, repo.created, 1)
	assert.Equal(t, patientID, repo.created[0].PatientID)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, patientID, notifier.sent[0].userID)
	assert.Equal(t, "Rendez-vous demandé", notifier.sent[0].title)
	assert.Equal(t, "Votre demande de rendez-vous avec Dr. Martin a été envoyée. Nous vous contacterons pour confirmation.", notifier.sent[0].message)
	assert.Equal(t, model.NotificationTypeAppointment, notifier.sent[0].typ)
}

func TestCreateWithoutSessionMakesNoCalls(t *testing.T) {
	repo, notifier := &fakeRepo{}, &fakeNotifier{}
	svc := newService(repo, notifier, nil)

	_, err := svc.Create(context.Background(), validRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoSession)
	assert.Empty(t, repo.created)
	assert.Empty(t, notifier.sent)
}

func TestCreateRejectsInvalidRequest(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeNotifier{}, nil)

	req := validRequest()
	req.Time = "9h30"
	_, err := svc.Create(asPatient(uuid.New()), req)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
	assert.Empty(t, repo.created)
}

func TestCreateNotificationFailureIsReported(t *testing.T) {
	repo := &fakeRepo{}
	notifier := &fakeNotifier{err: errors.New("insert failed")}
	svc := newService(repo, notifier, nil)

	res, err := svc.Create(asPatient(uuid.New()), validRequest())
	require.NoError(t, err)
	assert.False(t, res.Notified)
	assert.NotNil(t, res.Appointment)
}

func TestCreatePropagatesBackendError(t *testing.T) {
	repo := &fakeRepo{createErr: apperrors.NewRemote(403, "permission denied", nil)}
	notifier := &fakeNotifier{}
	svc := newService(repo, notifier, nil)

	_, err := svc.Create(asPatient(uuid.New()), validRequest())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrRemote))
	assert.Empty(t, notifier.sent)
}

func TestCreateSendsConfirmationEmail(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := newService(&fakeRepo{}, &fakeNotifier{}, mailer)

	res, err := svc.Create(asPatient(uuid.New()), validRequest())
	require.NoError(t, err)
	assert.True(t, res.Notified)
	assert.Equal(t, "a@example.com", mailer.to)
	assert.Contains(t, mailer.body, "Dr. Martin")
	assert.Contains(t, mailer.body, "2025-03-01")
}

func TestListRequiresSession(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeNotifier{}, nil)

	_, err := svc.ListForCurrentPatient(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoSession)
	assert.Zero(t, repo.lists)

	_, err = svc.ListForCurrentPatient(asPatient(uuid.New()))
	assert.NoError(t, err)
	assert.Equal(t, 1, repo.lists)
}

func TestUpdateStatusAndCancel(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeNotifier{}, nil)
	id := uuid.New()
	ctx := asPatient(uuid.New())

	require.NoError(t, svc.UpdateStatus(ctx, id, model.AppointmentStatusConfirmed))
	assert.Equal(t, model.AppointmentStatusConfirmed, repo.statuses[id])

	require.NoError(t, svc.Cancel(ctx, id))
	assert.Equal(t, model.AppointmentStatusCancelled, repo.statuses[id])

	err := svc.UpdateStatus(ctx, id, "Reporté")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestUpdateStatusRequiresSession(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeNotifier{}, nil)
	id := uuid.New()

	err := svc.UpdateStatus(context.Background(), id, model.AppointmentStatusConfirmed)
	assert.ErrorIs(t, err, apperrors.ErrNoSession)
	assert.ErrorIs(t, svc.Cancel(context.Background(), id), apperrors.ErrNoSession)
	assert.Empty(t, repo.statuses)
}

func TestTimeSlots(t *testing.T) {
	svc := newService(&fakeRepo{}, &fakeNotifier{}, nil)

	slots := svc.TimeSlots()
	require.Len(t, slots, 13)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "17:00", slots[len(slots)-1])

	slots[0] = "changed"
	assert.Equal(t, "09:00", svc.TimeSlots()[0])
}
