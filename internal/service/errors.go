package service

import "errors"

var (
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrPhoneExists is returned when registering a user with a phone
	// already in use.
	ErrPhoneExists = errors.New("phone already registered")

	// ErrCampaignNotFound is returned when a campaign has no coupon types,
	// which includes the case where the campaign id itself does not exist.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrProbabilitySumExceeded is returned when a campaign's coupon type
	// probabilities sum to more than 1.
	ErrProbabilitySumExceeded = errors.New("sum of probabilities of coupon types in campaign exceeds 1")

	// ErrEmptyCouponTypes is returned when creating a campaign with no
	// coupon types.
	ErrEmptyCouponTypes = errors.New("campaign must have at least one coupon type")

	// ErrAlreadyDrawn is returned when a user has already drawn from a
	// campaign today.
	ErrAlreadyDrawn = errors.New("user has already drawn from this campaign today")

	// ErrCouponNotFound names a missing coupon. The redeem path does not
	// return it: an unknown coupon id is reported as ErrAlreadyRedeemed.
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrAlreadyRedeemed is returned when a coupon has already been redeemed.
	ErrAlreadyRedeemed = errors.New("coupon already redeemed")

	// ErrInvalidRequest is returned when request data is nil or incomplete.
	ErrInvalidRequest = errors.New("invalid request")
)
