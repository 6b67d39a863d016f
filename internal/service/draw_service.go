package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/lumibyte/coupon-draw-service/internal/cache"
	"github.com/lumibyte/coupon-draw-service/internal/metrics"
	"github.com/lumibyte/coupon-draw-service/internal/model"
	"github.com/lumibyte/coupon-draw-service/internal/sampler"
	"github.com/lumibyte/coupon-draw-service/pkg/database"
)

// DrawPool is the subset of pgxpool.Pool the draw engine needs: it both
// begins transactions and, for the independent post-rollback draw insert in
// step 9, executes a single statement outside any transaction.
type DrawPool interface {
	database.TxQuerier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DrawUserRepository is the subset of user data access the draw engine needs.
type DrawUserRepository interface {
	ExistsTx(ctx context.Context, tx database.TxQuerier, id int32) (bool, error)
}

// DrawCampaignRepository is the subset of campaign data access the draw engine needs.
type DrawCampaignRepository interface {
	CampaignExists(ctx context.Context, tx database.TxQuerier, campaignID int32) (bool, error)
	GetCouponTypesTx(ctx context.Context, tx database.TxQuerier, campaignID int32) ([]model.CouponType, error)
}

// DrawCouponTypeRepository is the subset of coupon-type data access the draw engine needs.
type DrawCouponTypeRepository interface {
	DecrementQuota(ctx context.Context, tx database.TxQuerier, couponTypeID int32) (bool, error)
}

// DrawCouponRepository is the subset of coupon data access the draw engine needs.
type DrawCouponRepository interface {
	Insert(ctx context.Context, tx database.TxQuerier, couponTypeID int32) (*model.Coupon, error)
}

// DrawDrawRepository is the subset of draw-record data access the draw engine needs.
type DrawDrawRepository interface {
	Exists(ctx context.Context, tx database.TxQuerier, userID, campaignID int32, day time.Time) (bool, error)
	Insert(ctx context.Context, tx database.TxQuerier, userID, campaignID int32, couponID *int32) error
}

// DrawCache is the subset of cache operations the draw engine needs.
type DrawCache interface {
	IsEnrolled(ctx context.Context, userID, campaignID int32, day time.Time) (bool, error)
	AppendEnrolment(ctx context.Context, userID, campaignID int32, day time.Time) error
	GetProbDist(ctx context.Context, campaignID int32) ([]cache.ProbDistEntry, bool, error)
	SetProbDist(ctx context.Context, campaignID int32, entries []cache.ProbDistEntry) error
}

// DrawService is the draw engine: on each request it
// enforces the one-draw-per-user-per-campaign-per-day rule, samples from the
// campaign's weighted distribution (including the residual "no coupon"
// outcome), atomically decrements quotas, and keeps the enrolment and
// probability-distribution caches consistent with the durable store.
type DrawService struct {
	pool           DrawPool
	userRepo       DrawUserRepository
	campaignRepo   DrawCampaignRepository
	couponTypeRepo DrawCouponTypeRepository
	couponRepo     DrawCouponRepository
	drawRepo       DrawDrawRepository
	cache          DrawCache
}

// NewDrawService creates a new DrawService.
func NewDrawService(
	pool DrawPool,
	userRepo DrawUserRepository,
	campaignRepo DrawCampaignRepository,
	couponTypeRepo DrawCouponTypeRepository,
	couponRepo DrawCouponRepository,
	drawRepo DrawDrawRepository,
	c DrawCache,
) *DrawService {
	return &DrawService{
		pool:           pool,
		userRepo:       userRepo,
		campaignRepo:   campaignRepo,
		couponTypeRepo: couponTypeRepo,
		couponRepo:     couponRepo,
		drawRepo:       drawRepo,
		cache:          c,
	}
}

// todayUTC returns the current UTC calendar date at midnight, matching the
// DATE column semantics the durable store and cache keys both rely on.
func todayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Draw executes one draw attempt for (userID, campaignID). A nil coupon with
// a nil error means the draw resolved to the residual "no coupon" outcome or
// to quota exhaustion for the sampled coupon type — both are successful,
// couponless draws, not error outcomes.
func (s *DrawService) Draw(ctx context.Context, userID, campaignID int32) (*model.Coupon, error) {
	start := time.Now()
	coupon, outcome, err := s.draw(ctx, userID, campaignID)
	metrics.RecordDraw(outcome, time.Since(start).Seconds())
	return coupon, err
}

func (s *DrawService) draw(ctx context.Context, userID, campaignID int32) (*model.Coupon, string, error) {
	today := todayUTC()

	// Step 1-2: pre-flight cache check. A hit is believed outright; a miss
	// or a read error both fall through to the authoritative path.
	if enrolled, err := s.cache.IsEnrolled(ctx, userID, campaignID, today); err != nil {
		log.Warn().Err(err).Int32("user_id", userID).Int32("campaign_id", campaignID).
			Msg("enrolment cache read failed, falling back to durable store")
	} else if enrolled {
		return nil, "already_drawn", ErrAlreadyDrawn
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, "internal_error", fmt.Errorf("begin draw tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Step 3: existence check.
	userExists, err := s.userRepo.ExistsTx(ctx, tx, userID)
	if err != nil {
		return nil, "internal_error", fmt.Errorf("check user exists: %w", err)
	}
	if !userExists {
		return nil, "not_found", ErrUserNotFound
	}
	campaignExists, err := s.campaignRepo.CampaignExists(ctx, tx, campaignID)
	if err != nil {
		return nil, "internal_error", fmt.Errorf("check campaign exists: %w", err)
	}
	if !campaignExists {
		return nil, "not_found", ErrCampaignNotFound
	}

	// Step 4: authoritative re-check of the one-draw-per-day rule.
	alreadyDrawn, err := s.drawRepo.Exists(ctx, tx, userID, campaignID, today)
	if err != nil {
		return nil, "internal_error", fmt.Errorf("check draw exists: %w", err)
	}
	if alreadyDrawn {
		if cacheErr := s.cache.AppendEnrolment(ctx, userID, campaignID, today); cacheErr != nil {
			log.Warn().Err(cacheErr).Int32("user_id", userID).Int32("campaign_id", campaignID).
				Msg("failed to repair enrolment cache after observing existing draw")
		}
		return nil, "already_drawn", ErrAlreadyDrawn
	}

	// Step 5: probability distribution, cache-first.
	ids, probs, err := s.probDist(ctx, tx, campaignID)
	if err != nil {
		return nil, "internal_error", fmt.Errorf("load probability distribution: %w", err)
	}
	if len(ids) == 0 {
		return nil, "not_found", ErrCampaignNotFound
	}

	// Step 6: residual "no coupon" outcome, clamped for numerical noise.
	var sum float64
	for _, p := range probs {
		sum += float64(p)
	}
	residual := 1.0 - sum
	if residual < 0 {
		residual = 0
	}
	weights := make([]float32, 0, len(probs)+1)
	weights = append(weights, probs...)
	weights = append(weights, float32(residual))

	// Step 7: sample the outcome.
	index, err := sampler.Weighted(weights)
	if err != nil {
		return nil, "internal_error", fmt.Errorf("sample draw outcome: %w", err)
	}

	// Step 8: residual branch.
	if index == len(weights)-1 {
		if err := s.drawRepo.Insert(ctx, tx, userID, campaignID, nil); err != nil {
			if errors.Is(err, ErrAlreadyDrawn) {
				return nil, "already_drawn", ErrAlreadyDrawn
			}
			return nil, "internal_error", fmt.Errorf("insert residual draw: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, "internal_error", fmt.Errorf("commit residual draw: %w", err)
		}
		s.appendEnrolment(ctx, userID, campaignID, today)
		log.Info().Int32("user_id", userID).Int32("campaign_id", campaignID).Msg("draw resolved: residual")
		return nil, "residual", nil
	}

	// Step 9: coupon branch.
	couponTypeID := ids[index]
	ok, err := s.couponTypeRepo.DecrementQuota(ctx, tx, couponTypeID)
	if err != nil {
		return nil, "internal_error", fmt.Errorf("decrement quota for coupon type %d: %w", couponTypeID, err)
	}
	if !ok {
		// Quota exhausted. Roll back the coupon-decrement attempt, then
		// record the attempt as an independent, idempotent draw insert.
		_ = tx.Rollback(ctx)
		if err := s.drawRepo.Insert(ctx, s.pool, userID, campaignID, nil); err != nil && !errors.Is(err, ErrAlreadyDrawn) {
			return nil, "internal_error", fmt.Errorf("insert quota-exhausted draw: %w", err)
		}
		s.appendEnrolment(ctx, userID, campaignID, today)
		log.Info().Int32("user_id", userID).Int32("campaign_id", campaignID).Int32("coupon_type_id", couponTypeID).
			Msg("draw resolved: quota exhausted")
		return nil, "quota_exhausted", nil
	}

	coupon, err := s.couponRepo.Insert(ctx, tx, couponTypeID)
	if err != nil {
		return nil, "internal_error", fmt.Errorf("insert coupon: %w", err)
	}
	if err := s.drawRepo.Insert(ctx, tx, userID, campaignID, &coupon.ID); err != nil {
		if errors.Is(err, ErrAlreadyDrawn) {
			return nil, "already_drawn", ErrAlreadyDrawn
		}
		return nil, "internal_error", fmt.Errorf("insert draw: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, "internal_error", fmt.Errorf("commit coupon draw: %w", err)
	}
	s.appendEnrolment(ctx, userID, campaignID, today)
	log.Info().Int32("user_id", userID).Int32("campaign_id", campaignID).Int32("coupon_type_id", couponTypeID).
		Msg("draw resolved: issued")
	return coupon, "issued", nil
}

// probDist returns the parallel (ids, probabilities) vectors for a campaign,
// reading through the cache and falling back to, then repopulating from, the
// durable store on a miss.
func (s *DrawService) probDist(ctx context.Context, tx database.TxQuerier, campaignID int32) ([]int32, []float32, error) {
	if entries, ok, err := s.cache.GetProbDist(ctx, campaignID); err != nil {
		log.Warn().Err(err).Int32("campaign_id", campaignID).Msg("probability-distribution cache read failed, falling back to durable store")
	} else if ok {
		ids := make([]int32, len(entries))
		probs := make([]float32, len(entries))
		for i, e := range entries {
			ids[i] = e.CouponTypeID
			probs[i] = e.Probability
		}
		return ids, probs, nil
	}

	types, err := s.campaignRepo.GetCouponTypesTx(ctx, tx, campaignID)
	if err != nil {
		return nil, nil, err
	}
	if len(types) == 0 {
		return nil, nil, nil
	}

	ids := make([]int32, len(types))
	probs := make([]float32, len(types))
	entries := make([]cache.ProbDistEntry, len(types))
	for i, t := range types {
		ids[i] = t.ID
		probs[i] = t.Probability
		entries[i] = cache.ProbDistEntry{CouponTypeID: t.ID, Probability: t.Probability}
	}
	if err := s.cache.SetProbDist(ctx, campaignID, entries); err != nil {
		log.Warn().Err(err).Int32("campaign_id", campaignID).Msg("failed to write back probability-distribution cache")
	}
	return ids, probs, nil
}

// appendEnrolment records a resolved draw in the enrolment cache. Errors are
// logged and swallowed: the next request against this (user, campaign, day)
// self-repairs at step 4.
func (s *DrawService) appendEnrolment(ctx context.Context, userID, campaignID int32, day time.Time) {
	if err := s.cache.AppendEnrolment(ctx, userID, campaignID, day); err != nil {
		log.Warn().Err(err).Int32("user_id", userID).Int32("campaign_id", campaignID).
			Msg("failed to write enrolment cache after commit")
	}
}
