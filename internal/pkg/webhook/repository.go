package webhook

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quitanza/paycore/app/models"
)

// EventRepository persists webhook deliveries with database-level
// deduplication.
type EventRepository interface {
	CreateIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}

// AgreementRepository resolves the agreement a webhook refers to and
// applies the derived update.
type AgreementRepository interface {
	FindByExternalReference(externalReference string) (*models.Agreement, error)
	FindByProviderPaymentID(providerPaymentID string) (*models.Agreement, error)
	Save(agreement *models.Agreement) error
}

type gormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a webhook event repository backed by GORM.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &gormEventRepository{db: db}
}

func (r *gormEventRepository) CreateIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "external_id"},
			{Name: "event_type"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND external_id = ? AND event_type = ?",
		event.Provider, event.ExternalID, event.EventType).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormEventRepository) MarkProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

type gormAgreementRepository struct {
	db *gorm.DB
}

// NewAgreementRepository creates an agreement repository backed by GORM.
func NewAgreementRepository(db *gorm.DB) AgreementRepository {
	return &gormAgreementRepository{db: db}
}

func (r *gormAgreementRepository) FindByExternalReference(externalReference string) (*models.Agreement, error) {
	var agreement models.Agreement
	err := r.db.Where("external_reference = ?", externalReference).First(&agreement).Error
	if err != nil {
		return nil, err
	}
	return &agreement, nil
}

func (r *gormAgreementRepository) FindByProviderPaymentID(providerPaymentID string) (*models.Agreement, error) {
	var agreement models.Agreement
	err := r.db.Where("provider_payment_id = ?", providerPaymentID).First(&agreement).Error
	if err != nil {
		return nil, err
	}
	return &agreement, nil
}

func (r *gormAgreementRepository) Save(agreement *models.Agreement) error {
	return r.db.Save(agreement).Error
}
