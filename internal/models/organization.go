// Package models defines the domain models for the organization manager.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents an organization owned by a single authenticated user.
type Organization struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewOrganization creates a new Organization for the given owner.
// The ID is assigned by the store on insert.
func NewOrganization(name, description string, isActive bool, owner uuid.UUID) *Organization {
	now := time.Now().UTC()
	return &Organization{
		Name:        name,
		Description: description,
		IsActive:    isActive,
		OwnerUserID: owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// OrganizationUpdate carries a partial update. Nil fields are left untouched.
// There is deliberately no owner field: ownership is set once at creation and
// never mutated by update requests.
type OrganizationUpdate struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// IsEmpty reports whether the update carries no fields.
func (u OrganizationUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.IsActive == nil
}
