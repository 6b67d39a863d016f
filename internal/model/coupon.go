package model

import "time"

// Coupon is a single issued, individually redeemable reward.
type Coupon struct {
	ID                   int32  `json:"id"`
	RedeemCode           string `json:"redeem_code"`
	CampaignCouponTypeID int32  `json:"campaign_coupon_type_id"`
	Redeemed             bool   `json:"redeemed"`
}

// Draw is a single record of a user drawing against a campaign on a given day.
type Draw struct {
	ID                int32     `json:"id"`
	UserID            int32     `json:"user_id"`
	CampaignID        int32     `json:"campaign_id"`
	CampaignCouponID  *int32    `json:"campaign_coupon_id"`
	Date              time.Time `json:"date"`
}

// DrawRequest is the DTO for POST /draw.
type DrawRequest struct {
	UserID     int32 `json:"user_id" validate:"required"`
	CampaignID int32 `json:"campaign_id" validate:"required"`
}

// DrawResponse is the DTO returned from a draw. MaybeCoupon is nil when the
// draw resolved to the residual "no coupon" outcome.
type DrawResponse struct {
	MaybeCoupon *Coupon `json:"maybe_coupon"`
}

// RedeemRequest is the DTO for POST /redeem.
type RedeemRequest struct {
	CouponID int32 `json:"coupon_id" validate:"required"`
	UserID   int32 `json:"user_id" validate:"required"`
}
