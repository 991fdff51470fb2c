package repositories

import (
	"errors"

	"dealroom_backend/internal/models"

	"gorm.io/gorm"
)

var ErrExchangeNotFound = errors.New("exchange not found")

// ExchangeListCriteria filters the public listing.
type ExchangeListCriteria struct {
	TradeType string `form:"type"`
	Coin      string `form:"coin"`
	Currency  string `form:"currency"`
	Payment   string `form:"payment"`
	SortBy    string `form:"sortBy"`
	Desc      bool   `form:"order"`
	Offset    int    `form:"offset"`
	Limit     int    `form:"limit"`
}

type ExchangeRepository interface {
	Create(exchange *models.Exchange) error
	Save(exchange *models.Exchange) error
	FindByEID(eID string) (*models.Exchange, error)
	FindByOwner(ownerID string, sortBy string, desc bool, offset, limit int) ([]models.Exchange, int64, error)
	// ListActive returns active offers with owners resolved, online owners
	// first.
	ListActive(criteria ExchangeListCriteria) ([]models.Exchange, int64, error)
}

type ExchangeRepositoryImpl struct {
	db *gorm.DB
}

func NewExchangeRepository(db *gorm.DB) ExchangeRepository {
	return &ExchangeRepositoryImpl{db: db}
}

var exchangeSortColumns = map[string]string{
	"rate":       "rate",
	"created_at": "created_at",
	"coin":       "coin",
	"currency":   "currency",
}

func sortClause(sortBy string, desc bool) string {
	column, ok := exchangeSortColumns[sortBy]
	if !ok {
		column = "created_at"
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}

func (r *ExchangeRepositoryImpl) Create(exchange *models.Exchange) error {
	return r.db.Create(exchange).Error
}

func (r *ExchangeRepositoryImpl) Save(exchange *models.Exchange) error {
	return r.db.Save(exchange).Error
}

func (r *ExchangeRepositoryImpl) FindByEID(eID string) (*models.Exchange, error) {
	var exchange models.Exchange
	err := r.db.Preload("Owner").First(&exchange, "e_id = ?", eID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExchangeNotFound
		}
		return nil, err
	}
	return &exchange, nil
}

func (r *ExchangeRepositoryImpl) FindByOwner(ownerID string, sortBy string, desc bool, offset, limit int) ([]models.Exchange, int64, error) {
	query := r.db.Model(&models.Exchange{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var exchanges []models.Exchange
	err := query.Order(sortClause(sortBy, desc)).
		Offset(offset).Limit(limit).
		Find(&exchanges).Error
	return exchanges, total, err
}

func (r *ExchangeRepositoryImpl) ListActive(criteria ExchangeListCriteria) ([]models.Exchange, int64, error) {
	query := r.db.Model(&models.Exchange{}).Where("status = ?", models.ExchangeStatusActive)

	// A visitor looking to sell needs offers whose owner buys, and vice
	// versa.
	switch criteria.TradeType {
	case models.TradeTypeSell:
		query = query.Where("trade_type = ?", models.TradeTypeBuy)
	case models.TradeTypeBuy:
		query = query.Where("trade_type = ?", models.TradeTypeSell)
	}
	if criteria.Coin != "" {
		query = query.Where("coin = ?", criteria.Coin)
	}
	if criteria.Currency != "" {
		query = query.Where("currency = ?", criteria.Currency)
	}
	if criteria.Payment != "" {
		query = query.Where("payment_type = ?", criteria.Payment)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var exchanges []models.Exchange
	err := query.
		Joins("JOIN users ON users.id = exchanges.owner_id").
		Preload("Owner").
		Order("users.online DESC").
		Order("exchanges." + sortClause(criteria.SortBy, criteria.Desc)).
		Offset(criteria.Offset).Limit(criteria.Limit).
		Find(&exchanges).Error
	return exchanges, total, err
}
