// File: internal/fieldtemplate/service.go
package fieldtemplate

import (
	"context"
	"strings"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for field-template business logic.
type Service interface {
	// ListActiveTemplates returns the active templates of a category in
	// sort order. Both the seller-facing form and the publish validator
	// consume this.
	ListActiveTemplates(ctx context.Context, categoryID uuid.UUID) ([]FieldTemplate, error)
	ListAllTemplates(ctx context.Context, categoryID uuid.UUID) ([]FieldTemplate, error)

	CreateTemplate(ctx context.Context, categoryID uuid.UUID, req AdminCreateTemplateRequest) (*FieldTemplate, error)
	UpdateTemplate(ctx context.Context, id uuid.UUID, req AdminUpdateTemplateRequest) (*FieldTemplate, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error

	ListOrphanedKeys(ctx context.Context, categoryID uuid.UUID) ([]OrphanedKey, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new field-template service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) ListActiveTemplates(ctx context.Context, categoryID uuid.UUID) ([]FieldTemplate, error) {
	return s.repo.FindByCategory(ctx, categoryID, true)
}

func (s *service) ListAllTemplates(ctx context.Context, categoryID uuid.UUID) ([]FieldTemplate, error) {
	return s.repo.FindByCategory(ctx, categoryID, false)
}

func (s *service) CreateTemplate(ctx context.Context, categoryID uuid.UUID, req AdminCreateTemplateRequest) (*FieldTemplate, error) {
	key := strings.TrimSpace(req.Key)
	label := strings.TrimSpace(req.Label)
	if key == "" {
		return nil, common.NewValidationAPIError([]string{"Template key must not be empty."})
	}
	if label == "" {
		return nil, common.NewValidationAPIError([]string{"Template label must not be empty."})
	}
	if !req.Type.Valid() {
		return nil, common.NewValidationAPIError([]string{"Template type must be one of TEXT, NUMBER, SELECT, BOOLEAN."})
	}

	template := &FieldTemplate{
		CategoryID: categoryID,
		Key:        key,
		Label:      label,
		Type:       req.Type,
		Required:   req.Required,
		SortOrder:  req.SortOrder,
		IsActive:   true,
	}

	// The option list is persisted only for SELECT templates; for every
	// other type submitted options are ignored.
	if req.Type == TypeSelect {
		encoded, err := EncodeOptions(req.Options)
		if err != nil {
			return nil, common.ErrInternalServer.WithDetails("Could not encode option list.")
		}
		if len(DecodeOptions(&encoded)) == 0 {
			return nil, common.NewValidationAPIError([]string{"SELECT templates require at least one option."})
		}
		template.Options = &encoded
	}

	if err := s.repo.Create(ctx, template); err != nil {
		s.logger.Error("Failed to create field template", zap.Error(err),
			zap.String("categoryID", categoryID.String()), zap.String("key", key))
		return nil, err
	}
	s.logger.Info("Field template created",
		zap.String("id", template.ID.String()),
		zap.String("key", template.Key),
		zap.String("type", string(template.Type)))
	return template, nil
}

// UpdateTemplate mutates label, required and active flags only. Key and type
// stay fixed so stored field values remain semantically valid.
func (s *service) UpdateTemplate(ctx context.Context, id uuid.UUID, req AdminUpdateTemplateRequest) (*FieldTemplate, error) {
	template, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Label != nil {
		label := strings.TrimSpace(*req.Label)
		if label == "" {
			return nil, common.NewValidationAPIError([]string{"Template label must not be empty."})
		}
		template.Label = label
	}
	if req.Required != nil {
		template.Required = *req.Required
	}
	if req.IsActive != nil {
		template.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, template); err != nil {
		s.logger.Error("Failed to update field template", zap.Error(err), zap.String("id", id.String()))
		return nil, err
	}
	s.logger.Info("Field template updated", zap.String("id", template.ID.String()))
	return template, nil
}

// DeleteTemplate removes the definition. Stored field values keyed by it are
// kept; the orphan report surfaces them to admins.
func (s *service) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete field template", zap.Error(err), zap.String("id", id.String()))
		return err
	}
	s.logger.Info("Field template deleted", zap.String("id", id.String()))
	return nil
}

func (s *service) ListOrphanedKeys(ctx context.Context, categoryID uuid.UUID) ([]OrphanedKey, error) {
	orphans, err := s.repo.FindOrphanedKeys(ctx, categoryID)
	if err != nil {
		s.logger.Error("Failed to list orphaned field keys", zap.Error(err), zap.String("categoryID", categoryID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not compute the orphaned key report.")
	}
	return orphans, nil
}
