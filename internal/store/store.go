// Package store provides the durable key/value store backing Traklio.
// Each key holds one whole serialized collection (users, expenses, the
// session marker, the theme preference); there is no partial or indexed
// access. Readers are expected to degrade to empty fallbacks on storage
// faults rather than propagate them into the aggregation path.
package store

import "context"

// Store keys. Each value is read and written as a whole.
const (
	KeyUsers    = "traklio_users"
	KeyExpenses = "traklio_expenses"
	KeySession  = "traklio_current_user"
	KeyTheme    = "traklio_theme"
)

// Store is a durable key/value store with JSON serialization.
type Store interface {
	// Get unmarshals the value under key into v. The boolean reports
	// whether the key was present; an absent key leaves v untouched.
	Get(ctx context.Context, key string, v any) (bool, error)

	// Set marshals v and writes it under key, replacing any prior value.
	Set(ctx context.Context, key string, v any) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
