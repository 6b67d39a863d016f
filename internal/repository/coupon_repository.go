package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumibyte/coupon-draw-service/internal/model"
	"github.com/lumibyte/coupon-draw-service/internal/service"
	"github.com/lumibyte/coupon-draw-service/pkg/database"
)

// CouponRepository provides data access for issued coupons.
type CouponRepository struct {
	pool PoolInterface
}

// PoolInterface defines the database operations needed by CouponRepository.
type PoolInterface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a CouponRepository with a custom pool
// interface. Primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// Insert creates a new unredeemed coupon with a freshly generated,
// unguessable redeem code, within tx.
func (r *CouponRepository) Insert(ctx context.Context, tx database.TxQuerier, couponTypeID int32) (*model.Coupon, error) {
	code, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate redeem code: %w", err)
	}

	var coupon model.Coupon
	err = tx.QueryRow(ctx,
		`INSERT INTO campaign_coupons (redeem_code, campaign_coupon_type_id)
		 VALUES ($1, $2)
		 RETURNING id, redeem_code, campaign_coupon_type_id, redeemed`,
		code.String(), couponTypeID,
	).Scan(&coupon.ID, &coupon.RedeemCode, &coupon.CampaignCouponTypeID, &coupon.Redeemed)
	if err != nil {
		return nil, fmt.Errorf("insert coupon for type %d: %w", couponTypeID, err)
	}
	return &coupon, nil
}

// Redeem atomically flips a coupon's redeemed flag from false to true.
// Returns service.ErrAlreadyRedeemed if no matching, unredeemed coupon
// exists: an absent id and an already-redeemed coupon are indistinguishable
// by design, matching the at-most-once guarantee owned by the durable store.
func (r *CouponRepository) Redeem(ctx context.Context, couponID int32) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.pool.QueryRow(ctx,
		`UPDATE campaign_coupons SET redeemed = true
		 WHERE id = $1 AND redeemed = false
		 RETURNING id, redeem_code, campaign_coupon_type_id, redeemed`,
		couponID,
	).Scan(&coupon.ID, &coupon.RedeemCode, &coupon.CampaignCouponTypeID, &coupon.Redeemed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrAlreadyRedeemed
		}
		return nil, fmt.Errorf("redeem coupon %d: %w", couponID, err)
	}
	return &coupon, nil
}
