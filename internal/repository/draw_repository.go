package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lumibyte/coupon-draw-service/internal/service"
	"github.com/lumibyte/coupon-draw-service/pkg/database"
)

// DrawRepository provides data access for draw records.
type DrawRepository struct{}

// NewDrawRepository creates a new DrawRepository.
func NewDrawRepository() *DrawRepository {
	return &DrawRepository{}
}

// Exists reports whether a draw already exists for (userID, campaignID, day), within tx.
func (r *DrawRepository) Exists(ctx context.Context, tx database.TxQuerier, userID, campaignID int32, day time.Time) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM draws WHERE user_id = $1 AND campaign_id = $2 AND date = $3)`,
		userID, campaignID, day,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check draw exists: %w", err)
	}
	return exists, nil
}

// Insert records a draw outcome. couponID is nil for the residual "no
// coupon" outcome. A unique-violation on (user_id, campaign_id, date) is
// reinterpreted as service.ErrAlreadyDrawn, covering the race where two
// concurrent requests both pass the Exists pre-check.
func (r *DrawRepository) Insert(ctx context.Context, tx database.TxQuerier, userID, campaignID int32, couponID *int32) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO draws (user_id, campaign_id, campaign_coupon_id) VALUES ($1, $2, $3)`,
		userID, campaignID, couponID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrAlreadyDrawn
		}
		return fmt.Errorf("insert draw: %w", err)
	}
	return nil
}
