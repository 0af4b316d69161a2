package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
)

type doctorRow struct {
	ID           uuid.UUID      `db:"id"`
	CreatedAt    time.Time      `db:"created_at"`
	Name         string         `db:"name"`
	Specialty    string         `db:"specialty"`
	Experience   string         `db:"experience"`
	Education    string         `db:"education"`
	Languages    pq.StringArray `db:"languages"`
	Bio          string         `db:"bio"`
	ImageURL     string         `db:"image_url"`
	Rating       float64        `db:"rating"`
	ReviewsCount int            `db:"reviews_count"`
}

func (r doctorRow) toModel() *model.Doctor {
	return &model.Doctor{
		Base:         model.Base{ID: r.ID, CreatedAt: r.CreatedAt},
		Name:         r.Name,
		Specialty:    r.Specialty,
		Experience:   r.Experience,
		Education:    r.Education,
		Languages:    []string(r.Languages),
		Bio:          r.Bio,
		ImageURL:     r.ImageURL,
		Rating:       r.Rating,
		ReviewsCount: r.ReviewsCount,
	}
}

// doctorColumns selects the doctors table aliased as d. A non-empty prefix
// names the columns "prefix.column" for scanning into a nested struct.
func doctorColumns(prefix string) string {
	cols := []struct{ expr, name string }{
		{"d.id", "id"},
		{"d.created_at", "created_at"},
		{"d.name", "name"},
		{"d.specialty", "specialty"},
		{"COALESCE(d.experience, '')", "experience"},
		{"COALESCE(d.education, '')", "education"},
		{"COALESCE(d.languages, '{}')", "languages"},
		{"COALESCE(d.bio, '')", "bio"},
		{"COALESCE(d.image_url, '')", "image_url"},
		{"COALESCE(d.rating, 0)", "rating"},
		{"COALESCE(d.reviews_count, 0)", "reviews_count"},
	}
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		name := c.name
		if prefix != "" {
			name = prefix + "." + name
		}
		parts = append(parts, fmt.Sprintf(`%s AS "%s"`, c.expr, name))
	}
	return strings.Join(parts, ", ")
}

type appointmentRow struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	PatientID uuid.UUID `db:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id"`
	Date      string    `db:"appointment_date"`
	Time      string    `db:"appointment_time"`
	Specialty string    `db:"specialty"`
	Reason    string    `db:"reason"`
	Status    string    `db:"status"`
	Doctor    doctorRow `db:"doctor"`
}

func (r appointmentRow) toModel() *model.Appointment {
	return &model.Appointment{
		Base:      model.Base{ID: r.ID, CreatedAt: r.CreatedAt},
		PatientID: r.PatientID,
		DoctorID:  r.DoctorID,
		Date:      r.Date,
		Time:      r.Time,
		Specialty: r.Specialty,
		Reason:    r.Reason,
		Status:    model.AppointmentStatus(r.Status),
		Doctor:    r.Doctor.toModel(),
	}
}

const appointmentColumns = `a.id, a.created_at, a.patient_id, a.doctor_id,
	a.appointment_date::text AS appointment_date,
	to_char(a.appointment_time, 'HH24:MI') AS appointment_time,
	COALESCE(a.specialty, '') AS specialty,
	COALESCE(a.reason, '') AS reason,
	a.status`

type prescriptionRow struct {
	ID           uuid.UUID         `db:"id"`
	CreatedAt    time.Time         `db:"created_at"`
	PatientID    uuid.UUID         `db:"patient_id"`
	DoctorID     uuid.UUID         `db:"doctor_id"`
	Medications  model.Medications `db:"medications"`
	Instructions string            `db:"instructions"`
	Duration     string            `db:"duration"`
	Doctor       doctorRow         `db:"doctor"`
}

func (r prescriptionRow) toModel() *model.Prescription {
	return &model.Prescription{
		Base:         model.Base{ID: r.ID, CreatedAt: r.CreatedAt},
		PatientID:    r.PatientID,
		DoctorID:     r.DoctorID,
		Medications:  r.Medications,
		Instructions: r.Instructions,
		Duration:     r.Duration,
		Doctor:       r.Doctor.toModel(),
	}
}

const prescriptionColumns = `p.id, p.created_at, p.patient_id, p.doctor_id, p.medications,
	COALESCE(p.instructions, '') AS instructions,
	COALESCE(p.duration, '') AS duration`
