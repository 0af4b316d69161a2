package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Yasserk123/HealthVision-Projet/internal/email"
	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository"
	"github.com/Yasserk123/HealthVision-Projet/internal/service/notification"
	"github.com/Yasserk123/HealthVision-Projet/internal/session"
	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
	"github.com/Yasserk123/HealthVision-Projet/pkg/metrics"
	"github.com/Yasserk123/HealthVision-Projet/pkg/validator"
)

const (
	requestedTitle   = "Rendez-vous demandé"
	requestedMessage = "Votre demande de rendez-vous avec %s a été envoyée. Nous vous contacterons pour confirmation."

	confirmationSubject = "HealthVision : demande de rendez-vous"
	confirmationBody    = "Bonjour %s,\n\nVotre demande de rendez-vous avec %s (%s) le %s à %s a bien été enregistrée.\nNous vous contacterons pour confirmation.\n\nL'équipe HealthVision"
)

var timeSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00",
}

// Result is a stored appointment and whether its notification was recorded.
type Result struct {
	Appointment *model.Appointment `json:"appointment"`
	Notified    bool               `json:"notified"`
}

type Service struct {
	repo      repository.AppointmentRepository
	notifier  notification.Service
	mailer    email.Service
	validator validator.Validator
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewService wires the appointment workflow. mailer may be nil.
func NewService(repo repository.AppointmentRepository, notifier notification.Service, mailer email.Service, v validator.Validator, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		notifier:  notifier,
		mailer:    mailer,
		validator: v,
		metrics:   m,
		logger:    logger.With().Str("service", "appointment").Logger(),
	}
}

// Create books an appointment for the caller. The appointment row is the
// outcome; the notification and the email that follow are best effort.
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*Result, error) {
	user, ok := session.UserFrom(ctx)
	if !ok {
		return nil, apperrors.ErrNoSession
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, apperrors.NewBadRequest(err.Error(), err)
	}

	created, err := s.repo.Create(ctx, &model.NewAppointment{
		PatientID: user.ID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Specialty: req.Specialty,
		Reason:    req.Reason,
		Status:    model.AppointmentStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	doctorName := "votre médecin"
	if created.Doctor != nil && created.Doctor.Name != "" {
		doctorName = created.Doctor.Name
	}

	result := &Result{Appointment: created, Notified: true}
	if _, err := s.notifier.Create(ctx, user.ID, requestedTitle,
		fmt.Sprintf(requestedMessage, doctorName), model.NotificationTypeAppointment); err != nil {
		result.Notified = false
		s.notificationFailed()
		s.logger.Error().Err(err).
			Str("appointment_id", created.ID.String()).
			Str("user_id", user.ID.String()).
			Msg("Appointment stored but notification insert failed")
	}

	if s.mailer != nil && user.Email != "" {
		body := fmt.Sprintf(confirmationBody, user.Name, doctorName, created.Specialty, created.Date, created.Time)
		if err := s.mailer.SendCustom(ctx, user.Email, confirmationSubject, body); err != nil {
			s.logger.Warn().Err(err).
				Str("appointment_id", created.ID.String()).
				Msg("Failed to send appointment confirmation email")
		}
	}

	return result, nil
}

// ListForCurrentPatient returns the caller's appointments, latest date first.
func (s *Service) ListForCurrentPatient(ctx context.Context) ([]*model.Appointment, error) {
	user, ok := session.UserFrom(ctx)
	if !ok {
		return nil, apperrors.ErrNoSession
	}

	appointments, err := s.repo.ListByPatient(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	if _, ok := session.UserFrom(ctx); !ok {
		return apperrors.ErrNoSession
	}
	if !status.Valid() {
		return apperrors.NewBadRequest(fmt.Sprintf("unknown appointment status %q", status), nil)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to update appointment %s: %w", id, err)
	}
	return nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.UpdateStatus(ctx, id, model.AppointmentStatusCancelled)
}

// TimeSlots lists the bookable times of day.
func (s *Service) TimeSlots() []string {
	return append([]string(nil), timeSlots...)
}

func (s *Service) notificationFailed() {
	if s.metrics != nil {
		s.metrics.NotificationsFailed.WithLabelValues("appointment").Inc()
	}
}
