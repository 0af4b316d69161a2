package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository"
	"github.com/Yasserk123/HealthVision-Projet/internal/service/notification"
	"github.com/Yasserk123/HealthVision-Projet/pkg/metrics"
)

const (
	reminderTitle   = "Rappel de rendez-vous"
	reminderMessage = "Rappel : rendez-vous avec %s demain à %s."

	runTimeout = 5 * time.Minute
)

// ReminderJob notifies patients the day before their appointment.
type ReminderJob struct {
	schedule repository.AppointmentScheduleRepository
	notifier notification.Service
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	location *time.Location
	now      func() time.Time
}

type ReminderOption func(*ReminderJob)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ReminderOption {
	return func(j *ReminderJob) { j.now = now }
}

func NewReminderJob(schedule repository.AppointmentScheduleRepository, notifier notification.Service, loc *time.Location, m *metrics.Metrics, logger zerolog.Logger, opts ...ReminderOption) *ReminderJob {
	if loc == nil {
		loc = time.UTC
	}
	j := &ReminderJob{
		schedule: schedule,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With().Str("job", "appointment-reminder").Logger(),
		location: loc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run creates one reminder per appointment due tomorrow and returns how
// many were created. A failed reminder is logged and skipped.
func (j *ReminderJob) Run(ctx context.Context) (int, error) {
	tomorrow := j.now().In(j.location).AddDate(0, 0, 1).Format("2006-01-02")

	appointments, err := j.schedule.ListByDate(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("failed to list appointments for %s: %w", tomorrow, err)
	}

	created := 0
	for _, a := range appointments {
		doctorName := "votre médecin"
		if a.Doctor != nil && a.Doctor.Name != "" {
			doctorName = a.Doctor.Name
		}

		_, err := j.notifier.Create(ctx, a.PatientID, reminderTitle,
			fmt.Sprintf(reminderMessage, doctorName, a.Time), model.NotificationTypeReminder)
		if err != nil {
			j.logger.Error().Err(err).
				Str("appointment_id", a.ID.String()).
				Str("user_id", a.PatientID.String()).
				Msg("Failed to create reminder")
			continue
		}
		created++
		if j.metrics != nil {
			j.metrics.RemindersCreated.Inc()
		}
	}

	j.logger.Info().Str("date", tomorrow).Int("due", len(appointments)).Int("created", created).Msg("Reminders sent")
	return created, nil
}

// Schedule registers the job on s to run every day at at (HH:MM).
func (j *ReminderJob) Schedule(s *gocron.Scheduler, at string) (*gocron.Job, error) {
	job, err := s.Every(1).Day().At(at).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		if _, err := j.Run(ctx); err != nil {
			j.logger.Error().Err(err).Msg("Reminder run failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reminders at %s: %w", at, err)
	}
	return job, nil
}
