package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumibyte/coupon-draw-service/internal/model"
	"github.com/lumibyte/coupon-draw-service/pkg/database"
)

// CampaignPoolInterface defines the database operations needed by CampaignRepository.
type CampaignPoolInterface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CampaignRepository provides data access for campaigns and their coupon types.
type CampaignRepository struct {
	pool CampaignPoolInterface
}

// NewCampaignRepository creates a new CampaignRepository with the given pool.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// NewCampaignRepositoryWithPool creates a CampaignRepository with a custom
// pool interface. Primarily used for testing.
func NewCampaignRepositoryWithPool(pool CampaignPoolInterface) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// InsertCampaign creates a new campaign row within tx and returns its id.
func (r *CampaignRepository) InsertCampaign(ctx context.Context, tx database.TxQuerier) (int32, error) {
	var id int32
	err := tx.QueryRow(ctx, `INSERT INTO campaigns DEFAULT VALUES RETURNING id`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert campaign: %w", err)
	}
	return id, nil
}

// InsertCouponTypes inserts coupon types for a campaign within tx, one INSERT
// statement per entry.
// current_quota and current_daily_quota are seeded from total_quota and
// daily_quota respectively.
func (r *CampaignRepository) InsertCouponTypes(ctx context.Context, tx database.TxQuerier, campaignID int32, inputs []model.CouponTypeInput) error {
	for _, in := range inputs {
		_, err := tx.Exec(ctx,
			`INSERT INTO campaign_coupon_types
				(campaign_id, description, probability, total_quota, daily_quota, current_quota, current_daily_quota)
			 VALUES ($1, $2, $3, $4, $5, $4, $5)`,
			campaignID, in.Description, in.Probability, in.TotalQuota, in.DailyQuota,
		)
		if err != nil {
			return fmt.Errorf("insert coupon type %q: %w", in.Description, err)
		}
	}
	return nil
}

// GetCouponTypes returns all coupon types for a campaign, ordered by id.
// Returns an empty slice, not nil, when the campaign has none (including
// when the campaign id does not exist at all).
func (r *CampaignRepository) GetCouponTypes(ctx context.Context, campaignID int32) ([]model.CouponType, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, campaign_id, description, probability, total_quota, daily_quota,
		        current_quota, current_daily_quota, last_drawn_date
		 FROM campaign_coupon_types WHERE campaign_id = $1 ORDER BY id`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("get coupon types for campaign %d: %w", campaignID, err)
	}
	defer rows.Close()

	types := []model.CouponType{}
	for rows.Next() {
		var ct model.CouponType
		if err := rows.Scan(&ct.ID, &ct.CampaignID, &ct.Description, &ct.Probability,
			&ct.TotalQuota, &ct.DailyQuota, &ct.CurrentQuota, &ct.CurrentDailyQuota, &ct.LastDrawnDate); err != nil {
			return nil, fmt.Errorf("scan coupon type row: %w", err)
		}
		types = append(types, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon type rows: %w", err)
	}
	return types, nil
}

// GetCouponTypesTx is the transaction-scoped equivalent of GetCouponTypes,
// used by the draw engine when it needs them inside an open transaction.
func (r *CampaignRepository) GetCouponTypesTx(ctx context.Context, tx database.TxQuerier, campaignID int32) ([]model.CouponType, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, campaign_id, description, probability, total_quota, daily_quota,
		        current_quota, current_daily_quota, last_drawn_date
		 FROM campaign_coupon_types WHERE campaign_id = $1 ORDER BY id`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("get coupon types for campaign %d: %w", campaignID, err)
	}
	defer rows.Close()

	types := []model.CouponType{}
	for rows.Next() {
		var ct model.CouponType
		if err := rows.Scan(&ct.ID, &ct.CampaignID, &ct.Description, &ct.Probability,
			&ct.TotalQuota, &ct.DailyQuota, &ct.CurrentQuota, &ct.CurrentDailyQuota, &ct.LastDrawnDate); err != nil {
			return nil, fmt.Errorf("scan coupon type row: %w", err)
		}
		types = append(types, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon type rows: %w", err)
	}
	return types, nil
}

// CampaignExists reports whether a campaign with the given id exists, within tx.
func (r *CampaignRepository) CampaignExists(ctx context.Context, tx database.TxQuerier, campaignID int32) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM campaigns WHERE id = $1)`, campaignID).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check campaign exists %d: %w", campaignID, err)
	}
	return exists, nil
}
