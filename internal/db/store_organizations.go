package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/MacJediWizard/orgmanager/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a record does not exist or is not owned by the
// caller. The two cases are indistinguishable so that record existence is
// never revealed to non-owners.
var ErrNotFound = errors.New("record not found")

// CreateOrganization inserts a new organization. The ID and timestamps are
// assigned by the database and written back into org.
func (db *DB) CreateOrganization(ctx context.Context, org *models.Organization) error {
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO organizations (name, description, is_active, owner_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, org.Name, org.Description, org.IsActive, org.OwnerUserID).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create organization: %w", err)
	}

	db.logger.Debug().
		Int64("org_id", org.ID).
		Str("owner_user_id", org.OwnerUserID.String()).
		Msg("organization created")
	return nil
}

// GetOrganization returns the organization with the given id if it is owned
// by ownerID, or ErrNotFound otherwise.
func (db *DB) GetOrganization(ctx context.Context, ownerID uuid.UUID, id int64) (*models.Organization, error) {
	var org models.Organization
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, description, is_active, owner_user_id, created_at, updated_at
		FROM organizations
		WHERE id = $1 AND owner_user_id = $2
	`, id, ownerID).Scan(
		&org.ID, &org.Name, &org.Description, &org.IsActive,
		&org.OwnerUserID, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &org, nil
}

// ListOrganizations returns all organizations owned by ownerID, ordered by
// creation time ascending.
func (db *DB) ListOrganizations(ctx context.Context, ownerID uuid.UUID) ([]*models.Organization, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, description, is_active, owner_user_id, created_at, updated_at
		FROM organizations
		WHERE owner_user_id = $1
		ORDER BY created_at, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		var org models.Organization
		err := rows.Scan(
			&org.ID, &org.Name, &org.Description, &org.IsActive,
			&org.OwnerUserID, &org.CreatedAt, &org.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, &org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	return orgs, nil
}

// UpdateOrganization applies the non-nil fields of upd to the organization
// with the given id, refreshing updated_at, and returns the updated record.
// Returns ErrNotFound when the record does not exist or is not owned by
// ownerID. An empty update still refreshes updated_at.
func (db *DB) UpdateOrganization(ctx context.Context, ownerID uuid.UUID, id int64, upd models.OrganizationUpdate) (*models.Organization, error) {
	var org models.Organization
	err := db.Pool.QueryRow(ctx, `
		UPDATE organizations
		SET name = COALESCE($3, name),
		    description = COALESCE($4, description),
		    is_active = COALESCE($5, is_active),
		    updated_at = NOW()
		WHERE id = $1 AND owner_user_id = $2
		RETURNING id, name, description, is_active, owner_user_id, created_at, updated_at
	`, id, ownerID, upd.Name, upd.Description, upd.IsActive).Scan(
		&org.ID, &org.Name, &org.Description, &org.IsActive,
		&org.OwnerUserID, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update organization: %w", err)
	}

	db.logger.Debug().Int64("org_id", org.ID).Msg("organization updated")
	return &org, nil
}

// DeleteOrganization permanently removes the organization with the given id
// if it is owned by ownerID. Returns ErrNotFound otherwise, including on a
// repeated delete.
func (db *DB) DeleteOrganization(ctx context.Context, ownerID uuid.UUID, id int64) error {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM organizations
		WHERE id = $1 AND owner_user_id = $2
	`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	db.logger.Debug().Int64("org_id", id).Msg("organization deleted")
	return nil
}
