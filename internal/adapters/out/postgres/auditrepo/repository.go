package auditrepo

import (
	"context"

	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormAuditRepository implements ports.AuditSink using GORM. Appends run on
// the main connection, never inside an order's transaction: a failed audit
// write must not roll back a committed transition.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GORM audit repository.
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append writes one audit row.
func (r *GormAuditRepository) Append(ctx context.Context, record ports.AuditRecord) error {
	dto := fromRecord(record)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewStoreUnavailableError("audit append", err)
	}

	return nil
}
