//go:build integration

package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/MacJediWizard/orgmanager/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *DB

func TestMain(m *testing.M) {
	if !dockerAvailable() {
		fmt.Println("Docker is not available, skipping integration tests")
		os.Exit(0)
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("orgmanager_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		pgContainer.Terminate(ctx)
		log.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.New(zerolog.NewConsoleWriter())
	cfg := DefaultConfig(connStr)
	cfg.MaxConns = 5
	cfg.MinConns = 1

	testDB, err = New(ctx, cfg, logger)
	if err != nil {
		pgContainer.Terminate(ctx)
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := testDB.Migrate(ctx); err != nil {
		testDB.Close()
		pgContainer.Terminate(ctx)
		log.Fatalf("failed to run migrations: %v", err)
	}

	code := m.Run()

	testDB.Close()
	pgContainer.Terminate(ctx)

	os.Exit(code)
}

// dockerAvailable returns true if a Docker daemon is reachable.
func dockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

// setupTestDB returns the shared test database after cleaning the organizations table.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	_, err := testDB.Pool.Exec(context.Background(), "TRUNCATE TABLE organizations")
	require.NoError(t, err)
	return testDB
}

// createTestOrg creates and persists an organization for the given owner.
func createTestOrg(t *testing.T, db *DB, owner uuid.UUID, name string) *models.Organization {
	t.Helper()
	org := models.NewOrganization(name, "", true, owner)
	require.NoError(t, db.CreateOrganization(context.Background(), org))
	return org
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreateOrganization(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := uuid.New()

	org := models.NewOrganization("Acme", "test org", true, owner)
	require.NoError(t, db.CreateOrganization(ctx, org))

	assert.NotZero(t, org.ID)
	assert.Equal(t, owner, org.OwnerUserID)
	assert.False(t, org.CreatedAt.IsZero())

	got, err := db.GetOrganization(ctx, owner, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "test org", got.Description)
	assert.True(t, got.IsActive)
	assert.Equal(t, owner, got.OwnerUserID)
}

func TestGetOrganizationNotOwned(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	org := createTestOrg(t, db, owner, "Private")

	_, err := db.GetOrganization(ctx, stranger, org.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.GetOrganization(ctx, owner, org.ID+1000)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrganizationsScopedAndOrdered(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	first := createTestOrg(t, db, alice, "First")
	createTestOrg(t, db, bob, "Bob Org")
	second := createTestOrg(t, db, alice, "Second")

	orgs, err := db.ListOrganizations(ctx, alice)
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	assert.Equal(t, first.ID, orgs[0].ID)
	assert.Equal(t, second.ID, orgs[1].ID)
	for _, org := range orgs {
		assert.Equal(t, alice, org.OwnerUserID)
	}

	orgs, err = db.ListOrganizations(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, orgs)
}

func TestUpdateOrganizationPartial(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := uuid.New()

	org := createTestOrg(t, db, owner, "Before")

	updated, err := db.UpdateOrganization(ctx, owner, org.ID, models.OrganizationUpdate{
		Name: strPtr("After"),
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, org.Description, updated.Description)
	assert.True(t, updated.IsActive)
	assert.True(t, updated.UpdatedAt.After(org.UpdatedAt) || updated.UpdatedAt.Equal(org.UpdatedAt))

	updated, err = db.UpdateOrganization(ctx, owner, org.ID, models.OrganizationUpdate{
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.False(t, updated.IsActive)
}

func TestUpdateOrganizationEmptyRefreshesTimestamp(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := uuid.New()

	org := createTestOrg(t, db, owner, "Stable")
	time.Sleep(10 * time.Millisecond)

	updated, err := db.UpdateOrganization(ctx, owner, org.ID, models.OrganizationUpdate{})
	require.NoError(t, err)
	assert.Equal(t, org.Name, updated.Name)
	assert.Equal(t, org.Description, updated.Description)
	assert.Equal(t, org.IsActive, updated.IsActive)
	assert.True(t, updated.UpdatedAt.After(org.UpdatedAt))
}

func TestUpdateOrganizationNotOwned(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := uuid.New()

	org := createTestOrg(t, db, owner, "Locked")

	_, err := db.UpdateOrganization(ctx, uuid.New(), org.ID, models.OrganizationUpdate{
		Name: strPtr("Hijacked"),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := db.GetOrganization(ctx, owner, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Locked", got.Name)
}

func TestDeleteOrganization(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := uuid.New()

	org := createTestOrg(t, db, owner, "Doomed")

	require.NoError(t, db.DeleteOrganization(ctx, owner, org.ID))

	_, err := db.GetOrganization(ctx, owner, org.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Second delete reports not found rather than succeeding or failing differently.
	err = db.DeleteOrganization(ctx, owner, org.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOrganizationNotOwned(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := uuid.New()

	org := createTestOrg(t, db, owner, "Guarded")

	err := db.DeleteOrganization(ctx, uuid.New(), org.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.GetOrganization(ctx, owner, org.ID)
	require.NoError(t, err)
}
