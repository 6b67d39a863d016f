package model

import "time"

// Campaign groups a set of coupon types under a single draw pool.
type Campaign struct {
	ID int32 `json:"id"`
}

// CouponType is one weighted outcome of a campaign's draw, with optional
// overall and daily quotas.
type CouponType struct {
	ID                 int32      `json:"id"`
	CampaignID         int32      `json:"campaign_id"`
	Description        string     `json:"description"`
	Probability        float32    `json:"probability"`
	TotalQuota         *int32     `json:"total_quota"`
	DailyQuota         *int32     `json:"daily_quota"`
	CurrentQuota       *int32     `json:"current_quota"`
	CurrentDailyQuota  *int32     `json:"current_daily_quota"`
	LastDrawnDate      *time.Time `json:"last_drawn_date"`
}

// CouponTypeInput is one entry of a campaign-creation request.
type CouponTypeInput struct {
	Description string  `json:"description" validate:"required,notblank,max=255"`
	Probability float32 `json:"probability" validate:"gte=0,lte=1"`
	TotalQuota  *int32  `json:"total_quota" validate:"omitempty,gte=0"`
	DailyQuota  *int32  `json:"daily_quota" validate:"omitempty,gte=0"`
}

// CreateCampaignRequest is the DTO for POST /campaign.
type CreateCampaignRequest struct {
	CouponTypes []CouponTypeInput `json:"coupon_types" validate:"required,min=1,dive"`
}

// CreateCampaignResponse is the DTO returned from a successful campaign creation.
type CreateCampaignResponse struct {
	ID int32 `json:"id"`
}

// GetCampaignResponse is the DTO returned from GET /campaign/:id.
type GetCampaignResponse struct {
	CouponTypes []CouponType `json:"coupon_types"`
}
