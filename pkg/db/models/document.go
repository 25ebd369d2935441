package models

import (
	"time"

	"github.com/dhruvbhatia/bizdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// Document records an ingested upload. The chunk text and vectors live in
// the role-scoped index files; this row is the listing/side metadata.
type Document struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Role       enums.Role `gorm:"column:role;not null;index" json:"role"`
	Filename   string     `gorm:"column:filename;not null" json:"filename"`
	ChunkCount int        `gorm:"column:chunk_count;not null;default:0" json:"chunk_count"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
