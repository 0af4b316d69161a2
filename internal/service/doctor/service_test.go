package doctor_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/service/doctor"
	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
)

type memDoctors struct {
	rows []*model.Doctor
}

func (m *memDoctors) List(context.Context) ([]*model.Doctor, error) {
	return m.rows, nil
}

func (m *memDoctors) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	for _, d := range m.rows {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, apperrors.NewNotFound("doctor", nil)
}

func (m *memDoctors) ListBySpecialty(_ context.Context, specialty string) ([]*model.Doctor, error) {
	var out []*model.Doctor
	for _, d := range m.rows {
		if d.Specialty == specialty {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDoctors) ListSpecialties(context.Context) ([]string, error) {
	return []string{"Cardiologie"}, nil
}

func newDoctor(name, specialty string) *model.Doctor {
	return &model.Doctor{Base: model.Base{ID: uuid.New()}, Name: name, Specialty: specialty}
}

func TestListBySpecialtyFilters(t *testing.T) {
	repo := &memDoctors{rows: []*model.Doctor{
		newDoctor("Dr. A", "Cardiologie"),
		newDoctor("Dr. B", "Neurologie"),
	}}
	svc := doctor.NewService(repo)

	doctors, err := svc.ListBySpecialty(context.Background(), "Cardiologie")
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	for _, d := range doctors {
		assert.Equal(t, "Cardiologie", d.Specialty)
	}

	doctors, err = svc.ListBySpecialty(context.Background(), " Cardiologie")
	require.NoError(t, err)
	assert.Empty(t, doctors)

	_, err = svc.ListBySpecialty(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestGetByIDNotFound(t *testing.T) {
	svc := doctor.NewService(&memDoctors{})

	_, err := svc.GetByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}

func TestCatalog(t *testing.T) {
	svc := doctor.NewService(&memDoctors{})

	catalog := svc.Catalog()
	require.Len(t, catalog, 6)
	assert.Equal(t, "Cardiologie", catalog[0].Title)
	assert.Equal(t, "Médecine Générale", catalog[5].Title)
	for _, sp := range catalog {
		assert.NotEmpty(t, sp.Description)
		assert.Len(t, sp.Services, 4)
	}

	catalog[0].Services[0] = "changed"
	assert.Equal(t, "Échographie cardiaque", svc.Catalog()[0].Services[0])
}
