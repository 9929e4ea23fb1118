// Package expense owns the per-user expense collection. All records for
// all users live under one store key; the repository filters on load and
// merges back on save, a whole-collection last-writer-wins write. Two
// concurrent sessions for the same user can therefore lose updates —
// that behavior is documented, not accidental.
package expense

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"traklio/internal/core"
	"traklio/internal/store"
)

// Repository reads and mutates the active user's expense records.
type Repository struct {
	store  store.Store
	userID string
}

func NewRepository(s store.Store, userID string) *Repository {
	return &Repository{store: s, userID: userID}
}

// Load returns the active user's records, most recent first (adds
// prepend). A storage fault degrades to an empty list so the dashboard
// renders its fallback state instead of failing.
func (r *Repository) Load(ctx context.Context) []core.Expense {
	all, err := r.loadAll(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Load expenses failed, using empty list",
			"user_id", r.userID, "error", err)
		return nil
	}
	var mine []core.Expense
	for _, e := range all {
		if e.UserID == r.userID {
			mine = append(mine, e)
		}
	}
	return mine
}

// NewExpense builds a record for the active user from validated input.
// A category of "Other" takes the user-supplied custom name and the
// custom glyph; otherwise the catalog icon applies.
func (r *Repository) NewExpense(amount core.Money, category, customCategory, description string, date core.Day) (core.Expense, error) {
	name := category
	icon := core.LookupCategory(category).Icon
	if category == core.OtherCategory {
		name = strings.TrimSpace(customCategory)
		if name == "" {
			return core.Expense{}, core.ErrEmptyCategory
		}
		icon = core.CustomIcon
	}
	e := core.Expense{
		ID:          uuid.NewString(),
		Amount:      amount,
		Category:    name,
		Description: strings.TrimSpace(description),
		Date:        date,
		UserID:      r.userID,
		Icon:        icon,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// Add validates e, prepends it to the user's records and merge-saves.
func (r *Repository) Add(ctx context.Context, e core.Expense) error {
	if e.UserID == "" {
		e.UserID = r.userID
	}
	if err := e.Validate(); err != nil {
		return err
	}
	mine := append([]core.Expense{e}, r.Load(ctx)...)
	if err := r.save(ctx, mine); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense added",
		"id", e.ID, "user_id", r.userID,
		"category", e.Category, "amount_cents", e.Amount.Cents, "date", e.Date)
	return nil
}

// Delete removes one record by id. Deleting an absent id is a silent
// no-op.
func (r *Repository) Delete(ctx context.Context, id string) error {
	mine := r.Load(ctx)
	kept := mine[:0]
	for _, e := range mine {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(mine) {
		return nil
	}
	if err := r.save(ctx, kept); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id, "user_id", r.userID)
	return nil
}

// DeleteMany removes a selection set of ids in one save. Absent ids are
// ignored. Returns how many records were actually removed.
func (r *Repository) DeleteMany(ctx context.Context, ids []string) (int, error) {
	selected := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
	}
	mine := r.Load(ctx)
	kept := mine[:0]
	for _, e := range mine {
		if _, ok := selected[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	removed := len(mine) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := r.save(ctx, kept); err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Expenses bulk deleted", "count", removed, "user_id", r.userID)
	return removed, nil
}

// DeleteAll clears every record belonging to the active user.
func (r *Repository) DeleteAll(ctx context.Context) (int, error) {
	mine := r.Load(ctx)
	if len(mine) == 0 {
		return 0, nil
	}
	if err := r.save(ctx, nil); err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "All expenses deleted", "count", len(mine), "user_id", r.userID)
	return len(mine), nil
}

// save re-reads the full cross-user collection, drops the active user's
// records and appends the given slice, then writes the whole collection
// back.
func (r *Repository) save(ctx context.Context, mine []core.Expense) error {
	all, err := r.loadAll(ctx)
	if err != nil {
		return err
	}
	merged := make([]core.Expense, 0, len(all)+len(mine))
	for _, e := range all {
		if e.UserID != r.userID {
			merged = append(merged, e)
		}
	}
	merged = append(merged, mine...)
	if err := r.store.Set(ctx, store.KeyExpenses, merged); err != nil {
		return fmt.Errorf("save expenses: %w", err)
	}
	return nil
}

func (r *Repository) loadAll(ctx context.Context) ([]core.Expense, error) {
	var all []core.Expense
	if _, err := r.store.Get(ctx, store.KeyExpenses, &all); err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return all, nil
}

// Search filters records whose description or category contains query,
// case-insensitively. An empty query returns the input unchanged. Pure:
// the input slice is never modified.
func Search(records []core.Expense, query string) []core.Expense {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return records
	}
	var out []core.Expense
	for _, e := range records {
		if strings.Contains(strings.ToLower(e.Description), query) ||
			strings.Contains(strings.ToLower(e.Category), query) {
			out = append(out, e)
		}
	}
	return out
}
