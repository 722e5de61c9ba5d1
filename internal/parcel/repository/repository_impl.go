package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/postboxhq/postbox/internal/parcel/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, parcel *domain.Parcel) error {
	return r.db.WithContext(ctx).Create(parcel).Error
}

func (r *repository) Get(ctx context.Context, tenantID, id snowflake.ID) (*domain.Parcel, error) {
	var parcel domain.Parcel
	err := r.db.WithContext(ctx).
		First(&parcel, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrParcelNotFound
		}
		return nil, err
	}
	return &parcel, nil
}

func (r *repository) FindHeldByIDs(ctx context.Context, tenantID, customerID snowflake.ID, ids []snowflake.ID) ([]domain.Parcel, error) {
	var parcels []domain.Parcel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Where("id IN ?", ids).
		Where("status IN ?", domain.HeldStatuses).
		Order("checked_in_at ASC").
		Find(&parcels).Error
	if err != nil {
		return nil, err
	}
	return parcels, nil
}

func (r *repository) CountCheckedInSince(ctx context.Context, tenantID, customerID snowflake.ID, since time.Time, excludeIDs []snowflake.ID) (int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Parcel{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Where("checked_in_at >= ?", since)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) FindHeldCheckedInBefore(ctx context.Context, tenantID snowflake.ID, cutoff time.Time) ([]domain.Parcel, error) {
	var parcels []domain.Parcel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("status IN ?", domain.HeldStatuses).
		Where("checked_in_at < ?", cutoff).
		Order("checked_in_at ASC").
		Find(&parcels).Error
	if err != nil {
		return nil, err
	}
	return parcels, nil
}

func (r *repository) UpdateStatus(ctx context.Context, tenantID, id snowflake.ID, status domain.ParcelStatus, at time.Time) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": at,
	}
	if status == domain.StatusReleased || status == domain.StatusReturned {
		updates["released_at"] = at
	}

	result := r.db.WithContext(ctx).Model(&domain.Parcel{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrParcelNotFound
	}
	return nil
}
