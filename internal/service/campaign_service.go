package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumibyte/coupon-draw-service/internal/model"
	"github.com/lumibyte/coupon-draw-service/pkg/database"
)

// CampaignRepositoryInterface defines the interface for campaign data access.
type CampaignRepositoryInterface interface {
	InsertCampaign(ctx context.Context, tx database.TxQuerier) (int32, error)
	InsertCouponTypes(ctx context.Context, tx database.TxQuerier, campaignID int32, inputs []model.CouponTypeInput) error
	GetCouponTypes(ctx context.Context, campaignID int32) ([]model.CouponType, error)
}

// CampaignTxBeginner defines the interface for beginning transactions.
type CampaignTxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CampaignService provides business logic for campaign creation and retrieval.
type CampaignService struct {
	pool           CampaignTxBeginner
	campaignRepo   CampaignRepositoryInterface
}

// NewCampaignService creates a new CampaignService.
func NewCampaignService(pool *pgxpool.Pool, campaignRepo CampaignRepositoryInterface) *CampaignService {
	return &CampaignService{pool: pool, campaignRepo: campaignRepo}
}

// NewCampaignServiceWithTxBeginner creates a CampaignService with a custom
// TxBeginner. Primarily used for testing.
func NewCampaignServiceWithTxBeginner(pool CampaignTxBeginner, campaignRepo CampaignRepositoryInterface) *CampaignService {
	return &CampaignService{pool: pool, campaignRepo: campaignRepo}
}

// Create validates and persists a new campaign and its coupon types.
// Returns ErrEmptyCouponTypes if the request has no coupon types.
// Returns ErrProbabilitySumExceeded if probabilities sum to more than 1.
func (s *CampaignService) Create(ctx context.Context, req *model.CreateCampaignRequest) (int32, error) {
	if req == nil || len(req.CouponTypes) == 0 {
		return 0, ErrEmptyCouponTypes
	}

	var sum float32
	for _, ct := range req.CouponTypes {
		sum += ct.Probability
	}
	if sum > 1.0 {
		return 0, fmt.Errorf("%w: %v", ErrProbabilitySumExceeded, sum)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	campaignID, err := s.campaignRepo.InsertCampaign(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("insert campaign: %w", err)
	}

	if err := s.campaignRepo.InsertCouponTypes(ctx, tx, campaignID, req.CouponTypes); err != nil {
		return 0, fmt.Errorf("insert coupon types: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit campaign creation: %w", err)
	}

	return campaignID, nil
}

// Get retrieves a campaign's coupon types.
// Returns ErrCampaignNotFound if the campaign has no coupon types, which
// includes the case where the campaign id doesn't exist at all.
func (s *CampaignService) Get(ctx context.Context, campaignID int32) (*model.GetCampaignResponse, error) {
	types, err := s.campaignRepo.GetCouponTypes(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("get coupon types: %w", err)
	}
	if len(types) == 0 {
		return nil, ErrCampaignNotFound
	}
	return &model.GetCampaignResponse{CouponTypes: types}, nil
}
