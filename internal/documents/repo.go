package documents

import (
	"context"

	"github.com/dhruvbhatia/bizdesk-backend/pkg/db/models"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists document metadata rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new document row.
func (r *Repository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document row by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Document{}, "id = ?", id).Error
}

// ListByRole returns the documents ingested for a role, newest first.
func (r *Repository) ListByRole(ctx context.Context, role enums.Role) ([]models.Document, error) {
	var rows []models.Document
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}
