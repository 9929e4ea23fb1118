// Package services orchestrates expense operations across the
// persistent store and the optional event publisher.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"traklio/internal/core"
	"traklio/internal/events"
	"traklio/internal/expense"
	"traklio/internal/store"
)

// ExpenseService mutates expense records locally first and publishes
// events best-effort: a broker failure never fails the user's request.
type ExpenseService struct {
	store     store.Store
	publisher *events.Publisher
}

func NewExpenseService(s store.Store, publisher *events.Publisher) *ExpenseService {
	return &ExpenseService{store: s, publisher: publisher}
}

func (s *ExpenseService) repoFor(userID string) *expense.Repository {
	return expense.NewRepository(s.store, userID)
}

// List returns the user's records, optionally filtered by a search
// query, most recent first.
func (s *ExpenseService) List(ctx context.Context, userID, query string) []core.Expense {
	return expense.Search(s.repoFor(userID).Load(ctx), query)
}

// Create builds, validates and persists a new expense, then publishes
// the created event.
func (s *ExpenseService) Create(ctx context.Context, userID string, amount core.Money, category, customCategory, description string, date core.Day) (core.Expense, error) {
	repo := s.repoFor(userID)
	e, err := repo.NewExpense(amount, category, customCategory, description, date)
	if err != nil {
		return core.Expense{}, err
	}
	if err := repo.Add(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishExpenseCreated(ctx, userID, e.ID, e.Amount.Cents, e.Category); err != nil {
			slog.ErrorContext(ctx, "Failed to publish created event",
				"id", e.ID, "error", err)
			// Expense is saved locally; the event is best-effort.
		}
	}
	return e, nil
}

// Delete removes one record; absent ids are silent no-ops and publish
// nothing.
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	repo := s.repoFor(userID)
	before := len(repo.Load(ctx))
	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if len(repo.Load(ctx)) == before {
		return nil
	}
	s.publishDeleted(ctx, userID, []string{id})
	return nil
}

// DeleteMany removes a selection set and reports how many records went.
func (s *ExpenseService) DeleteMany(ctx context.Context, userID string, ids []string) (int, error) {
	removed, err := s.repoFor(userID).DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete expenses: %w", err)
	}
	if removed > 0 {
		s.publishDeleted(ctx, userID, ids)
	}
	return removed, nil
}

// DeleteAll clears the user's records.
func (s *ExpenseService) DeleteAll(ctx context.Context, userID string) (int, error) {
	removed, err := s.repoFor(userID).DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all expenses: %w", err)
	}
	if removed > 0 {
		s.publishDeleted(ctx, userID, nil)
	}
	return removed, nil
}

func (s *ExpenseService) publishDeleted(ctx context.Context, userID string, ids []string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseDeleted(ctx, userID, ids); err != nil {
		slog.ErrorContext(ctx, "Failed to publish deleted event",
			"user_id", userID, "error", err)
	}
}

// Close releases the publisher, if any.
func (s *ExpenseService) Close() error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
