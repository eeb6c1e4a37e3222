package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewOrganization(t *testing.T) {
	owner := uuid.New()
	org := NewOrganization("Acme", "widgets", true, owner)

	if org.ID != 0 {
		t.Errorf("expected zero id before insert, got %d", org.ID)
	}
	if org.Name != "Acme" || org.Description != "widgets" || !org.IsActive {
		t.Errorf("unexpected fields: %+v", org)
	}
	if org.OwnerUserID != owner {
		t.Errorf("expected owner %s, got %s", owner, org.OwnerUserID)
	}
	if org.CreatedAt.IsZero() || org.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestOrganizationUpdate_IsEmpty(t *testing.T) {
	if !(OrganizationUpdate{}).IsEmpty() {
		t.Error("zero update must be empty")
	}

	name := "x"
	if (OrganizationUpdate{Name: &name}).IsEmpty() {
		t.Error("update with name must not be empty")
	}

	active := false
	if (OrganizationUpdate{IsActive: &active}).IsEmpty() {
		t.Error("update with is_active must not be empty")
	}
}
