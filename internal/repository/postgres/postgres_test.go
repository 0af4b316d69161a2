package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository/postgres"
	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
)

const schemaDDL = `
CREATE TABLE doctors (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	created_at timestamptz NOT NULL DEFAULT now(),
	name text NOT NULL,
	specialty text NOT NULL,
	experience text,
	education text,
	languages text[],
	bio text,
	image_url text,
	rating numeric,
	reviews_count integer
);
CREATE TABLE appointments (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	created_at timestamptz NOT NULL DEFAULT now(),
	patient_id uuid NOT NULL,
	doctor_id uuid NOT NULL REFERENCES doctors(id),
	appointment_date date NOT NULL,
	appointment_time time NOT NULL,
	specialty text,
	reason text,
	status text NOT NULL DEFAULT 'En attente'
);
CREATE TABLE prescriptions (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	created_at timestamptz NOT NULL DEFAULT now(),
	patient_id uuid NOT NULL,
	doctor_id uuid NOT NULL REFERENCES doctors(id),
	medications jsonb NOT NULL,
	instructions text,
	duration text
);
CREATE TABLE notifications (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	created_at timestamptz NOT NULL DEFAULT now(),
	user_id uuid NOT NULL,
	title text NOT NULL,
	message text NOT NULL,
	type text NOT NULL DEFAULT 'info',
	read boolean NOT NULL DEFAULT false
);
CREATE TABLE user_profiles (
	id uuid PRIMARY KEY,
	created_at timestamptz NOT NULL DEFAULT now(),
	first_name text,
	last_name text,
	phone text,
	date_of_birth date,
	address text,
	emergency_contact text
);
`

// openTestDB creates a throwaway schema on TEST_DATABASE_URL.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := postgres.NewDB(postgres.Config{DSN: dsn, MaxOpenConns: 1})
	if err != nil {
		t.Skipf("db unavailable: %v", err)
	}

	schema := fmt.Sprintf("hv_test_%d", time.Now().UnixNano())
	db.MustExec(`CREATE SCHEMA ` + schema)
	db.MustExec(`SET search_path TO ` + schema + `, public`)
	db.MustExec(schemaDDL)

	t.Cleanup(func() {
		db.MustExec(`DROP SCHEMA ` + schema + ` CASCADE`)
		db.Close()
	})
	return db
}

func seedDoctor(t *testing.T, db *sqlx.DB, name, specialty string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	require.NoError(t, db.Get(&id,
		`INSERT INTO doctors (name, specialty, languages) VALUES ($1, $2, ARRAY['Français']) RETURNING id`,
		name, specialty))
	return id
}

func TestDoctorRepository(t *testing.T) {
	db := openTestDB(t)
	repo := postgres.NewDoctorRepository(db)
	ctx := context.Background()

	seedDoctor(t, db, "Dr. Y", "Cardiologie")
	seedDoctor(t, db, "Dr. Z", "Neurologie")
	x := seedDoctor(t, db, "Dr. X", "Cardiologie")

	cardio, err := repo.ListBySpecialty(ctx, "Cardiologie")
	require.NoError(t, err)
	require.Len(t, cardio, 2)
	assert.Equal(t, "Dr. X", cardio[0].Name)
	assert.Equal(t, "Dr. Y", cardio[1].Name)
	assert.Equal(t, []string{"Français"}, cardio[0].Languages)

	specialties, err := repo.ListSpecialties(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cardiologie", "Neurologie"}, specialties)

	got, err := repo.Get(ctx, x)
	require.NoError(t, err)
	assert.Equal(t, "Dr. X", got.Name)

	_, err = repo.Get(ctx, uuid.New())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}

func TestAppointmentRepository(t *testing.T) {
	db := openTestDB(t)
	repo := postgres.NewAppointmentRepository(db)
	schedule := postgres.NewAppointmentScheduleRepository(db)
	ctx := context.Background()

	doctorID := seedDoctor(t, db, "Dr. A", "Cardiologie")
	patientID := uuid.New()

	created, err := repo.Create(ctx, &model.NewAppointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      "2025-03-01",
		Time:      "09:30",
		Specialty: "Cardiologie",
		Status:    model.AppointmentStatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", created.Date)
	assert.Equal(t, "09:30", created.Time)
	require.NotNil(t, created.Doctor)
	assert.Equal(t, "Dr. A", created.Doctor.Name)

	second, err := repo.Create(ctx, &model.NewAppointment{
		PatientID: patientID, DoctorID: doctorID, Date: "2025-03-01", Time: "11:00",
		Specialty: "Cardiologie", Status: model.AppointmentStatusPending,
	})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, second.ID, model.AppointmentStatusCancelled))

	list, err := repo.ListByPatient(ctx, patientID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	due, err := schedule.ListByDate(ctx, "2025-03-01")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, created.ID, due[0].ID)
}

func TestPrescriptionRepository(t *testing.T) {
	db := openTestDB(t)
	repo := postgres.NewPrescriptionRepository(db)
	ctx := context.Background()

	doctorID := seedDoctor(t, db, "Dr. A", "Médecine Générale")
	patientID := uuid.New()

	_, err := repo.Create(ctx, &model.NewPrescription{PatientID: patientID, DoctorID: doctorID})
	assert.Error(t, err)

	created, err := repo.Create(ctx, &model.NewPrescription{
		PatientID:   patientID,
		DoctorID:    doctorID,
		Medications: model.Medications{{Name: "Paracétamol", Dosage: "1g"}},
		Duration:    "5 jours",
	})
	require.NoError(t, err)
	assert.Equal(t, "Paracétamol", created.Medications[0].Name)

	list, err := repo.ListByPatient(ctx, patientID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Dr. A", list[0].Doctor.Name)
}

func TestNotificationRepository(t *testing.T) {
	db := openTestDB(t)
	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()
	me, other := uuid.New(), uuid.New()

	n, err := repo.Create(ctx, &model.NewNotification{UserID: me, Title: "A", Message: "a", Type: model.NotificationTypeInfo})
	require.NoError(t, err)
	assert.False(t, n.Read)
	_, err = repo.Create(ctx, &model.NewNotification{UserID: other, Title: "B", Message: "b", Type: model.NotificationTypeInfo})
	require.NoError(t, err)

	require.NoError(t, repo.MarkRead(ctx, n.ID, me))
	require.NoError(t, repo.MarkRead(ctx, n.ID, me))
	require.NoError(t, repo.MarkAllRead(ctx, me))

	mine, err := repo.ListByUser(ctx, me)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, mine[0].Read)

	theirs, err := repo.ListByUser(ctx, other)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.False(t, theirs[0].Read)
}

func TestProfileRepository(t *testing.T) {
	db := openTestDB(t)
	repo := postgres.NewProfileRepository(db)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, repo.Create(ctx, &model.UserProfile{ID: id, FirstName: "A", LastName: "B"}))
	p, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A B", p.DisplayName())

	_, err = repo.Get(ctx, uuid.New())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}
