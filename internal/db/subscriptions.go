package db

import (
	"context"
	"fmt"
	"time"
)

// Subscription statuses that grant access to AI features.
const (
	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
)

// HasActiveOrTrialingSubscription reports whether the account with email has
// an active or trialing subscription that has not lapsed.
func (db *DB) HasActiveOrTrialingSubscription(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM subscriptions
		   WHERE email = $1
		     AND status IN ($2, $3)
		     AND (current_period_end IS NULL OR current_period_end > NOW())
		 )`,
		email, SubscriptionActive, SubscriptionTrialing,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return ok, nil
}

// UpsertSubscription records the billing provider's view of a subscription.
func (db *DB) UpsertSubscription(ctx context.Context, email, status string, periodEnd *time.Time) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO subscriptions (email, status, current_period_end)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE
		   SET status = $2, current_period_end = $3, updated_at = NOW()`,
		email, status, periodEnd,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}
