package repository

import (
	"errors"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lumibyte/coupon-draw-service/internal/model"
	"github.com/lumibyte/coupon-draw-service/pkg/database"
)

// CouponTypeRepository provides the conditional quota decrement that the
// draw engine relies on to serialize coupon issuance.
type CouponTypeRepository struct{}

// NewCouponTypeRepository creates a new CouponTypeRepository.
func NewCouponTypeRepository() *CouponTypeRepository {
	return &CouponTypeRepository{}
}

// DecrementQuota atomically decrements a coupon type's overall and daily
// quota counters, rolling the daily counter over when last_drawn_date is
// null or not today. The CHECK constraints on current_quota and
// current_daily_quota cause the statement to fail with a check violation
// (SQLSTATE 23514) when either counter would go negative; that failure, and
// an id with no matching row, both report ok=false with a nil error. ok
// reports whether the decrement succeeded.
func (r *CouponTypeRepository) DecrementQuota(ctx context.Context, tx database.TxQuerier, couponTypeID int32) (ok bool, err error) {
	query := `
		UPDATE campaign_coupon_types
		SET last_drawn_date = CASE
				WHEN (last_drawn_date IS NULL OR last_drawn_date != CURRENT_DATE) THEN CURRENT_DATE
				ELSE last_drawn_date
			END,
			current_daily_quota = CASE
				WHEN (last_drawn_date IS NULL OR last_drawn_date != CURRENT_DATE) THEN daily_quota - 1
				ELSE current_daily_quota - 1
			END,
			current_quota = current_quota - 1
		WHERE id = $1
		RETURNING id`

	var id int32
	err = tx.QueryRow(ctx, query, couponTypeID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		// A CHECK constraint violation also surfaces here when the row
		// exists but the decrement would drive a counter negative.
		if isCheckViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("decrement quota for coupon type %d: %w", couponTypeID, err)
	}
	return true, nil
}

// GetByID fetches a single coupon type row, used by tests and diagnostics.
func (r *CouponTypeRepository) GetByID(ctx context.Context, tx database.TxQuerier, id int32) (*model.CouponType, error) {
	var ct model.CouponType
	err := tx.QueryRow(ctx,
		`SELECT id, campaign_id, description, probability, total_quota, daily_quota,
		        current_quota, current_daily_quota, last_drawn_date
		 FROM campaign_coupon_types WHERE id = $1`, id,
	).Scan(&ct.ID, &ct.CampaignID, &ct.Description, &ct.Probability,
		&ct.TotalQuota, &ct.DailyQuota, &ct.CurrentQuota, &ct.CurrentDailyQuota, &ct.LastDrawnDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon type %d: %w", id, err)
	}
	return &ct, nil
}
