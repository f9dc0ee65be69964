package activity

import (
	"context"
	"time"
)

// ExpiryPurger deletes expired sessions and execution logs. Implemented by
// the Postgres store; DynamoDB expires items with its TTL attribute instead.
type ExpiryPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Maintenance contains housekeeping activities.
type Maintenance struct {
	purger ExpiryPurger
	now    func() time.Time
}

func NewMaintenance(purger ExpiryPurger) *Maintenance {
	return &Maintenance{purger: purger, now: time.Now}
}

// PurgeExpired deletes every row whose expire_at has passed and returns the
// number of rows removed.
func (a *Maintenance) PurgeExpired(ctx context.Context) (int64, error) {
	return a.purger.PurgeExpired(ctx, a.now().UTC())
}
