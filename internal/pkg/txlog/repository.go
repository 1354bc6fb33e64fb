package txlog

import (
	"gorm.io/gorm"

	"github.com/quitanza/paycore/app/models"
)

// DefaultQueryLimit caps history reads when the caller does not ask for
// a specific limit.
const DefaultQueryLimit = 100

// Repository persists transaction log entries. The store is append-only,
// there is deliberately no update or delete operation.
type Repository interface {
	Log(entry *models.TransactionLog) error
	GetByProvider(provider string, limit int) ([]models.TransactionLog, error)
	GetByCompany(companyID string, limit int) ([]models.TransactionLog, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a transaction log repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Log(entry *models.TransactionLog) error {
	return r.db.Create(entry).Error
}

func (r *gormRepository) GetByProvider(provider string, limit int) ([]models.TransactionLog, error) {
	var logs []models.TransactionLog
	err := r.db.Where("provider = ?", provider).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Find(&logs).Error
	return logs, err
}

func (r *gormRepository) GetByCompany(companyID string, limit int) ([]models.TransactionLog, error) {
	var logs []models.TransactionLog
	err := r.db.Where("company_id = ?", companyID).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Find(&logs).Error
	return logs, err
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	return limit
}
