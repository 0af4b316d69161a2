package prescription

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository"
	"github.com/Yasserk123/HealthVision-Projet/internal/service/notification"
	"github.com/Yasserk123/HealthVision-Projet/internal/session"
	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
	"github.com/Yasserk123/HealthVision-Projet/pkg/metrics"
	"github.com/Yasserk123/HealthVision-Projet/pkg/validator"
)

const (
	createdTitle   = "Nouvelle ordonnance"
	createdMessage = "Une nouvelle ordonnance a été créée par %s"
)

// Result is a stored prescription and whether the patient was notified.
type Result struct {
	Prescription *model.Prescription `json:"prescription"`
	Notified     bool                `json:"notified"`
}

type Service struct {
	repo      repository.PrescriptionRepository
	notifier  notification.Service
	validator validator.Validator
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewService(repo repository.PrescriptionRepository, notifier notification.Service, v validator.Validator, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		notifier:  notifier,
		validator: v,
		metrics:   m,
		logger:    logger.With().Str("service", "prescription").Logger(),
	}
}

// ListForCurrentPatient returns the caller's prescriptions, newest first.
func (s *Service) ListForCurrentPatient(ctx context.Context) ([]*model.Prescription, error) {
	user, ok := session.UserFrom(ctx)
	if !ok {
		return nil, apperrors.ErrNoSession
	}

	prescriptions, err := s.repo.ListByPatient(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

// Create stores a prescription for req.PatientID and notifies them. The
// notification is best effort.
func (s *Service) Create(ctx context.Context, req *model.CreatePrescriptionRequest) (*Result, error) {
	if _, ok := session.UserFrom(ctx); !ok {
		return nil, apperrors.ErrNoSession
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, apperrors.NewBadRequest(err.Error(), err)
	}

	created, err := s.repo.Create(ctx, &model.NewPrescription{
		PatientID:    req.PatientID,
		DoctorID:     req.DoctorID,
		Medications:  req.Medications,
		Instructions: req.Instructions,
		Duration:     req.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prescription: %w", err)
	}

	doctorName := "votre médecin"
	if created.Doctor != nil && created.Doctor.Name != "" {
		doctorName = created.Doctor.Name
	}

	result := &Result{Prescription: created, Notified: true}
	if _, err := s.notifier.Create(ctx, req.PatientID, createdTitle,
		fmt.Sprintf(createdMessage, doctorName), model.NotificationTypePrescription); err != nil {
		result.Notified = false
		if s.metrics != nil {
			s.metrics.NotificationsFailed.WithLabelValues("prescription").Inc()
		}
		s.logger.Error().Err(err).
			Str("prescription_id", created.ID.String()).
			Str("patient_id", req.PatientID.String()).
			Msg("Prescription stored but notification insert failed")
	}
	return result, nil
}
