package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"dealroom_backend/internal/cache"
	"dealroom_backend/internal/logger"
	"dealroom_backend/internal/models"
	"dealroom_backend/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CreateExchangeInput carries a new offer. Binding tags do the field
// validation at the handler edge.
type CreateExchangeInput struct {
	TradeType         string                `json:"tradeType" binding:"required,trade_type"`
	Coin              string                `json:"coin" binding:"required,uppercase"`
	Currency          string                `json:"currency" binding:"required,uppercase"`
	PaymentType       string                `json:"paymentType" binding:"required"`
	PaymentTypeDetail string                `json:"paymentTypeDetail"`
	Rate              float64               `json:"rate" binding:"required,gt=0"`
	Conditions        string                `json:"conditions"`
	Limits            models.ExchangeLimits `json:"limits"`
}

type EditExchangeInput struct {
	Rate              float64 `json:"rate" binding:"required,gt=0"`
	PaymentTypeDetail string  `json:"paymentTypeDetail"`
	Conditions        string  `json:"conditions"`
}

// ExchangeList is the paged listing response; the public variant is cached.
type ExchangeList struct {
	Total int64             `json:"total"`
	Data  []models.Exchange `json:"data"`
}

type ExchangeService struct {
	exchanges repositories.ExchangeRepository
	reviews   repositories.ReviewRepository
	listing   *cache.ListingCache
}

func NewExchangeService(
	exchanges repositories.ExchangeRepository,
	reviews repositories.ReviewRepository,
	listing *cache.ListingCache,
) *ExchangeService {
	return &ExchangeService{exchanges: exchanges, reviews: reviews, listing: listing}
}

// NormalizeLimits applies the open-ended defaults: a missing minimum is 1, a
// missing maximum is unbounded. Returns false when min exceeds max or either
// is negative.
func NormalizeLimits(limits models.ExchangeLimits) (models.ExchangeLimits, bool) {
	if limits.Min < 0 || limits.Max < 0 {
		return limits, false
	}
	if limits.Min == 0 {
		limits.Min = 1
	}
	if limits.Max == 0 {
		limits.Max = math.MaxFloat64
	}
	if limits.Max < limits.Min {
		return limits, false
	}
	return limits, true
}

func (s *ExchangeService) Create(ownerID string, role models.UserRole, input CreateExchangeInput) (*models.Exchange, error) {
	if role != models.RoleClient {
		return nil, ErrForbidden
	}

	limits, ok := NormalizeLimits(input.Limits)
	if !ok {
		return nil, fmt.Errorf("invalid limits: minimum greater than maximum")
	}
	limitsJSON, err := json.Marshal(limits)
	if err != nil {
		return nil, err
	}

	exchange := &models.Exchange{
		EID:               uuid.NewString(),
		OwnerID:           ownerID,
		TradeType:         input.TradeType,
		Coin:              input.Coin,
		Currency:          input.Currency,
		PaymentType:       input.PaymentType,
		PaymentTypeDetail: input.PaymentTypeDetail,
		Rate:              input.Rate,
		Conditions:        input.Conditions,
		Limits:            datatypes.JSON(limitsJSON),
		Status:            models.ExchangeStatusActive,
	}
	if err := s.exchanges.Create(exchange); err != nil {
		return nil, err
	}

	s.listing.Invalidate(context.Background())
	return exchange, nil
}

func (s *ExchangeService) Edit(ownerID, eID string, input EditExchangeInput) (*models.Exchange, error) {
	exchange, err := s.exchanges.FindByEID(eID)
	if err != nil {
		return nil, err
	}
	if exchange.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	exchange.Rate = input.Rate
	exchange.PaymentTypeDetail = input.PaymentTypeDetail
	exchange.Conditions = input.Conditions
	if err := s.exchanges.Save(exchange); err != nil {
		return nil, err
	}

	s.listing.Invalidate(context.Background())
	return exchange, nil
}

func (s *ExchangeService) Close(ownerID, eID string) (*models.Exchange, error) {
	exchange, err := s.exchanges.FindByEID(eID)
	if err != nil {
		return nil, err
	}
	if exchange.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	exchange.Status = models.ExchangeStatusClosed
	if err := s.exchanges.Save(exchange); err != nil {
		return nil, err
	}

	s.listing.Invalidate(context.Background())
	return exchange, nil
}

func (s *ExchangeService) MyExchanges(ownerID string, sortBy string, desc bool, offset, limit int) (*ExchangeList, error) {
	exchanges, total, err := s.exchanges.FindByOwner(ownerID, sortBy, desc, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ExchangeList{Total: total, Data: exchanges}, nil
}

// List serves the public listing from cache when possible.
func (s *ExchangeService) List(ctx context.Context, criteria repositories.ExchangeListCriteria) (*ExchangeList, error) {
	key := fmt.Sprintf("%s:%s:%s:%s:%s:%v:%d:%d",
		criteria.TradeType, criteria.Coin, criteria.Currency, criteria.Payment,
		criteria.SortBy, criteria.Desc, criteria.Offset, criteria.Limit)

	if data, ok := s.listing.Get(ctx, key); ok {
		var cached ExchangeList
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	exchanges, total, err := s.exchanges.ListActive(criteria)
	if err != nil {
		return nil, err
	}
	list := &ExchangeList{Total: total, Data: exchanges}

	if data, err := json.Marshal(list); err == nil {
		s.listing.Set(ctx, key, data)
	} else {
		logger.Warn("listing cache marshal failed", "error", err)
	}
	return list, nil
}

// GetWithReviews returns one offer together with reviews of its owner.
func (s *ExchangeService) GetWithReviews(eID string) (*models.Exchange, []models.Review, error) {
	exchange, err := s.exchanges.FindByEID(eID)
	if err != nil {
		return nil, nil, err
	}
	reviews, err := s.reviews.FindForUser(exchange.OwnerID)
	if err != nil {
		return nil, nil, err
	}
	return exchange, reviews, nil
}
