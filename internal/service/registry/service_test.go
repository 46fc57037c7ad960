package registry

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careflowhq/frontdesk/internal/model"
	apperrors "github.com/careflowhq/frontdesk/pkg/errors"
)

func seedDepartments() []model.Department {
	return []model.Department{
		{ID: "general-medicine", Name: "General Medicine", MaxCapacity: 12},
		{ID: "cardiology", Name: "Cardiology", MaxCapacity: 8},
		{ID: "pediatrics", Name: "Pediatrics", MaxCapacity: 10},
		{ID: "orthopedics", Name: "Orthopedics", MaxCapacity: 10},
	}
}

func TestLookup(t *testing.T) {
	svc, err := NewService(seedDepartments(), nil)
	require.NoError(t, err)

	dept, err := svc.Lookup("cardiology")
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", dept.Name)
	assert.Equal(t, 8, dept.MaxCapacity)

	_, err = svc.Lookup("radiology")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownDepartment))
}

func TestListPreservesInsertionOrder(t *testing.T) {
	svc, err := NewService(seedDepartments(), nil)
	require.NoError(t, err)

	var ids []string
	for _, d := range svc.List() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"general-medicine", "cardiology", "pediatrics", "orthopedics"}, ids)
}

func TestLoadValidation(t *testing.T) {
	t.Run("zero capacity", func(t *testing.T) {
		_, err := NewService([]model.Department{{ID: "cardiology", Name: "Cardiology"}}, nil)
		assert.Error(t, err)
	})

	t.Run("negative capacity", func(t *testing.T) {
		_, err := NewService([]model.Department{{ID: "cardiology", Name: "Cardiology", MaxCapacity: -1}}, nil)
		assert.Error(t, err)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := NewService([]model.Department{{Name: "Cardiology", MaxCapacity: 8}}, nil)
		assert.Error(t, err)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := NewService([]model.Department{
			{ID: "cardiology", Name: "Cardiology", MaxCapacity: 8},
			{ID: "cardiology", Name: "Cardiology Again", MaxCapacity: 6},
		}, nil)
		assert.Error(t, err)
	})

	t.Run("practitioner with unknown department", func(t *testing.T) {
		_, err := NewService(seedDepartments(), []model.Practitioner{
			{ID: uuid.New(), Name: "Dr. Mitchell", DepartmentID: "radiology"},
		})
		assert.Error(t, err)
	})
}

func TestLookupPractitioner(t *testing.T) {
	id := uuid.New()
	svc, err := NewService(seedDepartments(), []model.Practitioner{
		{ID: id, Name: "Dr. Sarah Mitchell", Specialty: "Cardiologist", DepartmentID: "cardiology"},
	})
	require.NoError(t, err)

	p, err := svc.LookupPractitioner(id)
	require.NoError(t, err)
	assert.Equal(t, "cardiology", p.DepartmentID)

	_, err = svc.LookupPractitioner(uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestReload(t *testing.T) {
	svc, err := NewService(seedDepartments(), nil)
	require.NoError(t, err)

	require.NoError(t, svc.Reload([]model.Department{
		{ID: "cardiology", Name: "Cardiology", MaxCapacity: 16},
	}, nil))

	dept, err := svc.Lookup("cardiology")
	require.NoError(t, err)
	assert.Equal(t, 16, dept.MaxCapacity)

	_, err = svc.Lookup("pediatrics")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownDepartment))

	// A failed reload leaves the previous table in place.
	assert.Error(t, svc.Reload([]model.Department{{ID: "", MaxCapacity: 4}}, nil))
	_, err = svc.Lookup("cardiology")
	assert.NoError(t, err)
}
