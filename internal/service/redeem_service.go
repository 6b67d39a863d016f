package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumibyte/coupon-draw-service/internal/metrics"
	"github.com/lumibyte/coupon-draw-service/internal/model"
)

// CouponRepositoryInterface defines the interface for coupon redemption.
type CouponRepositoryInterface interface {
	Redeem(ctx context.Context, couponID int32) (*model.Coupon, error)
}

// RedeemService provides business logic for coupon redemption.
type RedeemService struct {
	couponRepo CouponRepositoryInterface
}

// NewRedeemService creates a new RedeemService.
func NewRedeemService(couponRepo CouponRepositoryInterface) *RedeemService {
	return &RedeemService{couponRepo: couponRepo}
}

// Redeem marks a coupon as redeemed. userID is accepted for symmetry with
// the request payload but is not currently enforced as an ownership check.
// Returns ErrAlreadyRedeemed if the coupon is absent or already redeemed.
func (s *RedeemService) Redeem(ctx context.Context, couponID, userID int32) (*model.Coupon, error) {
	start := time.Now()
	coupon, err := s.couponRepo.Redeem(ctx, couponID)

	outcome := "redeemed"
	if err != nil {
		outcome = "conflict"
		if !errors.Is(err, ErrAlreadyRedeemed) {
			outcome = "internal_error"
		}
	}
	metrics.RecordRedeem(outcome, time.Since(start).Seconds())

	if err != nil {
		return nil, fmt.Errorf("redeem coupon %d: %w", couponID, err)
	}
	return coupon, nil
}
