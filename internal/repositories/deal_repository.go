package repositories

import (
	"errors"
	"time"

	"dealroom_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDealNotFound = errors.New("deal not found")

// DealTx is the slice of deal mutations available while the deal row is
// locked. Everything it does joins the surrounding transaction.
type DealTx interface {
	SetStatus(dealID string, status models.DealStatus) error
	SetEscrowDecision(dealID, escrowID string, decision models.EscrowDecision) error
	AppendEscrow(dealID, escrowID string) error
}

type DealRepository interface {
	// FindByDID resolves a deal by its external code with buyer, seller,
	// exchange, escrows and the full transcript (sender and attachments
	// resolved) loaded.
	FindByDID(dID string) (*models.Deal, error)
	FindByID(id string) (*models.Deal, error)
	SetStatus(dealID string, status models.DealStatus) error
	SetEscrowJoinAt(dealID, escrowID string, at time.Time) error
	AppendEscrow(dealID, escrowID string) error
	SetEscrowDecision(dealID, escrowID string, decision models.EscrowDecision) error
	// WithDealLock runs fn inside a transaction holding a row lock on the
	// deal. This is the per-deal serialization point for decision recording
	// and consensus evaluation.
	WithDealLock(dealID string, fn func(tx DealTx, deal *models.Deal) error) error
}

type DealRepositoryImpl struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) DealRepository {
	return &DealRepositoryImpl{db: db}
}

func dealPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Buyer").
		Preload("Seller").
		Preload("Exchange").
		Preload("Escrows", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Messages.Sender").
		Preload("Messages.Attachments")
}

func (r *DealRepositoryImpl) FindByDID(dID string) (*models.Deal, error) {
	var deal models.Deal
	err := dealPreloads(r.db).First(&deal, "d_id = ?", dID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, err
	}
	return &deal, nil
}

func (r *DealRepositoryImpl) FindByID(id string) (*models.Deal, error) {
	var deal models.Deal
	err := dealPreloads(r.db).First(&deal, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, err
	}
	return &deal, nil
}

func (r *DealRepositoryImpl) SetStatus(dealID string, status models.DealStatus) error {
	result := r.db.Model(&models.Deal{}).Where("id = ?", dealID).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDealNotFound
	}
	return nil
}

func (r *DealRepositoryImpl) SetEscrowJoinAt(dealID, escrowID string, at time.Time) error {
	return r.db.Model(&models.DealEscrow{}).
		Where("deal_id = ? AND escrow_id = ?", dealID, escrowID).
		Update("join_at", at).Error
}

func (r *DealRepositoryImpl) AppendEscrow(dealID, escrowID string) error {
	return r.db.Create(&models.DealEscrow{
		DealID:   dealID,
		EscrowID: escrowID,
		Decision: models.DecisionPending,
	}).Error
}

func (r *DealRepositoryImpl) SetEscrowDecision(dealID, escrowID string, decision models.EscrowDecision) error {
	return r.db.Model(&models.DealEscrow{}).
		Where("deal_id = ? AND escrow_id = ?", dealID, escrowID).
		Update("decision", decision).Error
}

func (r *DealRepositoryImpl) WithDealLock(dealID string, fn func(tx DealTx, deal *models.Deal) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var deal models.Deal
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&deal, "id = ?", dealID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDealNotFound
			}
			return err
		}

		// Escrow rows are loaded after the lock is held so the decision
		// history cannot move under the consensus check.
		if err := tx.Where("deal_id = ?", dealID).
			Order("created_at ASC").
			Find(&deal.Escrows).Error; err != nil {
			return err
		}

		return fn(&DealRepositoryImpl{db: tx}, &deal)
	})
}
