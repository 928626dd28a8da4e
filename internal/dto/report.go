package dto

import (
	"time"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

// ExportRequest asks for a rendered report file.
type ExportRequest struct {
	Type   models.ExportType   `json:"type" validate:"required,oneof=grades students"`
	Format models.ExportFormat `json:"format" validate:"required,oneof=pdf csv"`
	Search string              `json:"search"`
	Title  string              `json:"title" validate:"max=120"`
}

// ExportResponse points at the stored report file.
type ExportResponse struct {
	ID        string              `json:"id"`
	Type      models.ExportType   `json:"type"`
	Format    models.ExportFormat `json:"format"`
	URL       string              `json:"url"`
	ExpiresAt time.Time           `json:"expires_at"`
}
