package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/postboxhq/postbox/internal/chargeevent/domain"
	"github.com/postboxhq/postbox/pkg/db"
	"github.com/postboxhq/postbox/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) domain.Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateIfAbsent(ctx context.Context, event *domain.ChargeEvent) (bool, error) {
	event.ChargeDay = domain.Day(event.ChargeDay)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "package_id"},
				{Name: "service_type"},
				{Name: "charge_day"},
			},
			DoNothing: true,
		}).
		Create(event)
	if result.Error != nil {
		// Dialects without conflict-target support surface the race as a
		// duplicate-key error instead; treat it as the skip it is.
		if db.IsDuplicateKeyErr(result.Error) {
			return false, nil
		}
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *repository) List(ctx context.Context, filter domain.ListFilter, page pagination.Pagination) ([]*domain.ChargeEvent, *pagination.PageInfo, error) {
	limit := page.Limit()

	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", filter.TenantID).
		Order("id DESC").
		Limit(limit + 1)

	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.PackageID != 0 {
		query = query.Where("package_id = ?", filter.PackageID)
	}
	if filter.ServiceType != "" {
		query = query.Where("service_type = ?", filter.ServiceType)
	}
	if filter.DayFrom != nil {
		query = query.Where("charge_day >= ?", domain.Day(*filter.DayFrom))
	}
	if filter.DayTo != nil {
		query = query.Where("charge_day <= ?", domain.Day(*filter.DayTo))
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, nil, domain.ErrInvalidCharge
		}
		lastID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, nil, domain.ErrInvalidCharge
		}
		query = query.Where("id < ?", lastID)
	}

	var events []*domain.ChargeEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, nil, err
	}

	events, info := pagination.BuildCursorPageInfo(events, limit, func(e *domain.ChargeEvent) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: e.ID.String()})
		return token
	})
	if !info.HasMore {
		info.NextPageToken = ""
	}

	return events, info, nil
}

func (r *repository) CountForDay(ctx context.Context, tenantID snowflake.ID, day time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ChargeEvent{}).
		Where("tenant_id = ? AND charge_day = ?", tenantID, domain.Day(day)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
