//go:build stress

package stress

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumibyte/coupon-draw-service/internal/model"
	"github.com/lumibyte/coupon-draw-service/internal/repository"
	"github.com/lumibyte/coupon-draw-service/internal/service"
)

// TestFlashDraw races 50 distinct users against a campaign whose single
// coupon type has a total_quota of 5. Exactly 5 draws should resolve to an
// issued coupon; the rest resolve to the quota-exhausted "no coupon" outcome,
// and the database's current_quota never goes negative.
func TestFlashDraw(t *testing.T) {
	cleanupTables(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const (
		availableStock      = 5
		concurrentRequests  = 50
	)

	userRepo := repository.NewUserRepository(testPool)
	campaignRepo := repository.NewCampaignRepository(testPool)
	couponTypeRepo := repository.NewCouponTypeRepository()
	couponRepo := repository.NewCouponRepository(testPool)
	drawRepo := repository.NewDrawRepository()
	drawService := service.NewDrawService(testPool, userRepo, campaignRepo, couponTypeRepo, couponRepo, drawRepo, testCache)
	campaignService := service.NewCampaignService(testPool, campaignRepo)

	quota := int32(availableStock)
	campaignID, err := campaignService.Create(ctx, &model.CreateCampaignRequest{
		CouponTypes: []model.CouponTypeInput{
			{Description: "flash coupon", Probability: 1.0, TotalQuota: &quota},
		},
	})
	require.NoError(t, err)

	userIDs := make([]int32, concurrentRequests)
	for i := 0; i < concurrentRequests; i++ {
		user, err := userRepo.Insert(ctx, fmt.Sprintf("+1555000%04d", i))
		require.NoError(t, err)
		userIDs[i] = user.ID
	}

	var wg sync.WaitGroup
	results := make(chan *model.Coupon, concurrentRequests)
	errs := make(chan error, concurrentRequests)

	for _, uid := range userIDs {
		wg.Add(1)
		go func(userID int32) {
			defer wg.Done()
			coupon, err := drawService.Draw(ctx, userID, campaignID)
			results <- coupon
			errs <- err
		}(uid)
	}
	wg.Wait()
	close(results)
	close(errs)

	var issued int
	for coupon := range results {
		if coupon != nil {
			issued++
		}
	}
	for err := range errs {
		assert.NoError(t, err, "every draw should resolve without error, never ErrAlreadyDrawn for a distinct user")
	}

	assert.Equal(t, availableStock, issued, "exactly %d draws should issue a coupon", availableStock)

	var currentQuota int32
	err = testPool.QueryRow(ctx, `SELECT current_quota FROM campaign_coupon_types WHERE campaign_id = $1`, campaignID).Scan(&currentQuota)
	require.NoError(t, err)
	assert.Equal(t, int32(0), currentQuota)
	assert.GreaterOrEqual(t, currentQuota, int32(0), "current_quota must never go negative")

	var drawCount int
	err = testPool.QueryRow(ctx, `SELECT COUNT(*) FROM draws WHERE campaign_id = $1`, campaignID).Scan(&drawCount)
	require.NoError(t, err)
	assert.Equal(t, concurrentRequests, drawCount, "every user should have exactly one draw record")
}
