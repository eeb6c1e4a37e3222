// Package handlers provides the HTTP handlers for the organization manager API.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/MacJediWizard/orgmanager/internal/api/middleware"
	"github.com/MacJediWizard/orgmanager/internal/db"
	"github.com/MacJediWizard/orgmanager/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrganizationStore defines the interface for organization persistence
// operations. Every read and mutation is scoped by the verified owner id.
type OrganizationStore interface {
	CreateOrganization(ctx context.Context, org *models.Organization) error
	GetOrganization(ctx context.Context, ownerID uuid.UUID, id int64) (*models.Organization, error)
	ListOrganizations(ctx context.Context, ownerID uuid.UUID) ([]*models.Organization, error)
	UpdateOrganization(ctx context.Context, ownerID uuid.UUID, id int64, upd models.OrganizationUpdate) (*models.Organization, error)
	DeleteOrganization(ctx context.Context, ownerID uuid.UUID, id int64) error
}

// OrganizationsHandler handles organization CRUD endpoints.
type OrganizationsHandler struct {
	store  OrganizationStore
	logger zerolog.Logger
}

// NewOrganizationsHandler creates a new OrganizationsHandler.
func NewOrganizationsHandler(store OrganizationStore, logger zerolog.Logger) *OrganizationsHandler {
	return &OrganizationsHandler{
		store:  store,
		logger: logger.With().Str("component", "organizations_handler").Logger(),
	}
}

// RegisterRoutes registers organization routes on the given router group.
// The group must run AuthMiddleware first.
func (h *OrganizationsHandler) RegisterRoutes(r *gin.RouterGroup) {
	orgs := r.Group("/organizations")
	{
		orgs.POST("", h.Create)
		orgs.GET("", h.List)
		orgs.GET("/:id", h.Get)
		orgs.PUT("/:id", h.Update)
		orgs.DELETE("/:id", h.Delete)
	}
}

// CreateOrgRequest is the request body for creating an organization.
// Any owner field supplied by the client is ignored; ownership always comes
// from the verified token subject. Unknown fields are ignored.
type CreateOrgRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// validate returns every violated field at once, not just the first.
func (r *CreateOrgRequest) validate() map[string]string {
	violations := make(map[string]string)
	if r.Name == nil || strings.TrimSpace(*r.Name) == "" {
		violations["name"] = "name is required and must not be empty"
	}
	return violations
}

// UpdateOrgRequest is the request body for updating an organization.
// Absent fields leave the stored values untouched.
type UpdateOrgRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (r *UpdateOrgRequest) validate() map[string]string {
	violations := make(map[string]string)
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		violations["name"] = "name must not be empty when present"
	}
	return violations
}

// Create creates a new organization owned by the caller.
//
//	@Summary		Create organization
//	@Tags			Organizations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateOrgRequest	true	"Organization to create"
//	@Success		201		{object}	models.Organization
//	@Failure		400		{object}	map[string]any
//	@Failure		401		{object}	map[string]string
//	@Security		BearerAuth
//	@Router			/organizations [post]
func (h *OrganizationsHandler) Create(c *gin.Context) {
	owner, ok := middleware.RequireOwnerID(c)
	if !ok {
		return
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if violations := req.validate(); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": violations})
		return
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	org := models.NewOrganization(strings.TrimSpace(*req.Name), description, isActive, owner)
	if err := h.store.CreateOrganization(c.Request.Context(), org); err != nil {
		h.logger.Error().Err(err).Str("owner_user_id", owner.String()).Msg("failed to create organization")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create organization"})
		return
	}

	c.JSON(http.StatusCreated, org)
}

// List returns all organizations owned by the caller, ordered by creation
// time. No pagination yet; flag for hardening if record counts grow.
//
//	@Summary		List organizations
//	@Tags			Organizations
//	@Produce		json
//	@Success		200	{array}		models.Organization
//	@Failure		401	{object}	map[string]string
//	@Security		BearerAuth
//	@Router			/organizations [get]
func (h *OrganizationsHandler) List(c *gin.Context) {
	owner, ok := middleware.RequireOwnerID(c)
	if !ok {
		return
	}

	orgs, err := h.store.ListOrganizations(c.Request.Context(), owner)
	if err != nil {
		h.logger.Error().Err(err).Str("owner_user_id", owner.String()).Msg("failed to list organizations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list organizations"})
		return
	}

	if orgs == nil {
		orgs = []*models.Organization{}
	}

	c.JSON(http.StatusOK, orgs)
}

// Get returns a single organization owned by the caller.
//
//	@Summary		Get organization
//	@Tags			Organizations
//	@Produce		json
//	@Param			id	path		int	true	"Organization ID"
//	@Success		200	{object}	models.Organization
//	@Failure		401	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Security		BearerAuth
//	@Router			/organizations/{id} [get]
func (h *OrganizationsHandler) Get(c *gin.Context) {
	owner, ok := middleware.RequireOwnerID(c)
	if !ok {
		return
	}

	id, ok := parseOrgID(c)
	if !ok {
		return
	}

	org, err := h.store.GetOrganization(c.Request.Context(), owner, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
			return
		}
		h.logger.Error().Err(err).Int64("org_id", id).Msg("failed to get organization")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get organization"})
		return
	}

	c.JSON(http.StatusOK, org)
}

// Update applies a partial update to an organization owned by the caller.
//
//	@Summary		Update organization
//	@Tags			Organizations
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Organization ID"
//	@Param			request	body		UpdateOrgRequest	true	"Fields to update"
//	@Success		200		{object}	models.Organization
//	@Failure		400		{object}	map[string]any
//	@Failure		401		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Security		BearerAuth
//	@Router			/organizations/{id} [put]
func (h *OrganizationsHandler) Update(c *gin.Context) {
	owner, ok := middleware.RequireOwnerID(c)
	if !ok {
		return
	}

	id, ok := parseOrgID(c)
	if !ok {
		return
	}

	var req UpdateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if violations := req.validate(); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": violations})
		return
	}

	upd := models.OrganizationUpdate{
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		upd.Name = &trimmed
	}

	org, err := h.store.UpdateOrganization(c.Request.Context(), owner, id, upd)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
			return
		}
		h.logger.Error().Err(err).Int64("org_id", id).Msg("failed to update organization")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update organization"})
		return
	}

	c.JSON(http.StatusOK, org)
}

// Delete permanently removes an organization owned by the caller.
//
//	@Summary		Delete organization
//	@Tags			Organizations
//	@Param			id	path	int	true	"Organization ID"
//	@Success		204
//	@Failure		401	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Security		BearerAuth
//	@Router			/organizations/{id} [delete]
func (h *OrganizationsHandler) Delete(c *gin.Context) {
	owner, ok := middleware.RequireOwnerID(c)
	if !ok {
		return
	}

	id, ok := parseOrgID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteOrganization(c.Request.Context(), owner, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
			return
		}
		h.logger.Error().Err(err).Int64("org_id", id).Msg("failed to delete organization")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete organization"})
		return
	}

	c.Status(http.StatusNoContent)
}

// parseOrgID reads the id path parameter. A non-numeric id cannot address any
// record, so it reports not found rather than a validation error.
func parseOrgID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
		return 0, false
	}
	return id, true
}
