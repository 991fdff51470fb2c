package repositories

import (
	"errors"
	"time"

	"dealroom_backend/internal/models"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	FindByID(id string) (*models.User, error)
	SetOnline(id string, online bool, lastConnect *time.Time) error
	// FindRandomEligibleEscrow picks one escrow-role user excluding the
	// given ids. Returns ErrUserNotFound when nobody is left.
	FindRandomEligibleEscrow(excludeIDs []string) (*models.User, error)
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) FindByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) SetOnline(id string, online bool, lastConnect *time.Time) error {
	updates := map[string]interface{}{"online": online}
	if lastConnect != nil {
		updates["last_connect"] = *lastConnect
	}

	result := r.db.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) FindRandomEligibleEscrow(excludeIDs []string) (*models.User, error) {
	var user models.User
	query := r.db.Where("role = ?", models.RoleEscrow)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	err := query.Order("random()").First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
