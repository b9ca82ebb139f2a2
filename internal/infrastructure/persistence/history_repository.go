package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormHistoryRepository implements order.HistoryRepository using GORM
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append inserts the entry with the next sequence for its order.
// Writers to one order are serialized by the versioned order update that precedes the append;
// the unique (order_id, sequence) index rejects anything that slips through.
func (r *GormHistoryRepository) Append(ctx context.Context, entry *order.StatusHistory) error {
	db := r.db.WithContext(ctx)

	var next int
	if err := db.Model(&models.StatusHistoryModel{}).
		Select("COALESCE(MAX(sequence), 0) + 1").
		Where("order_id = ?", entry.OrderID).
		Scan(&next).Error; err != nil {
		return err
	}
	entry.Sequence = next

	if err := db.Create(models.StatusHistoryModelFromDomain(entry)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError(shared.CodeConcurrencyConflict,
				fmt.Sprintf("History sequence %d already exists for order %s", next, entry.OrderID))
		}
		return err
	}
	return nil
}

// FindByOrderID returns entries for an order in sequence order.
// created_at is display data only; it comes from the clock of whichever instance wrote the row.
func (r *GormHistoryRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]order.StatusHistory, error) {
	var rows []models.StatusHistoryModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("sequence ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]order.StatusHistory, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// Ensure GormHistoryRepository implements order.HistoryRepository
var _ order.HistoryRepository = (*GormHistoryRepository)(nil)
