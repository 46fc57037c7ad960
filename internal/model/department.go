package model

import "github.com/google/uuid"

// Department is static identity data configured at startup and immutable
// at runtime. MaxCapacity is always positive.
type Department struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	MaxCapacity int    `db:"max_capacity" json:"max_capacity"`
}

// Practitioner belongs to exactly one department; bookings derive their
// department from the practitioner.
type Practitioner struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Specialty    string    `db:"specialty" json:"specialty"`
	DepartmentID string    `db:"department_id" json:"department_id"`
}
