package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"traklio/internal/core"
	"traklio/internal/store"
)

const (
	demoUserID   = "demo123"
	demoEmail    = "demo@test.com"
	demoPassword = "demo123"
)

func demoExpenses() []core.Expense {
	return []core.Expense{
		{ID: "exp1", Amount: core.Money{Cents: 25000}, Category: "Food", Description: "Lunch at restaurant", Date: "2025-07-28", UserID: demoUserID},
		{ID: "exp2", Amount: core.Money{Cents: 5000}, Category: "Transport", Description: "Bus fare", Date: "2025-07-28", UserID: demoUserID},
		{ID: "exp3", Amount: core.Money{Cents: 15000}, Category: "Groceries", Description: "Weekly groceries", Date: "2025-07-27", UserID: demoUserID},
		{ID: "exp4", Amount: core.Money{Cents: 30000}, Category: "Entertainment", Description: "Movie tickets", Date: "2025-07-26", UserID: demoUserID},
		{ID: "exp5", Amount: core.Money{Cents: 10000}, Category: "Snacks", Description: "Coffee and snacks", Date: "2025-07-25", UserID: demoUserID},
		{ID: "exp6", Amount: core.Money{Cents: 20000}, Category: "Bills", Description: "Electricity bill", Date: "2025-07-24", UserID: demoUserID},
		{ID: "exp7", Amount: core.Money{Cents: 8000}, Category: "Mobile Recharge", Description: "Phone recharge", Date: "2025-07-23", UserID: demoUserID},
	}
}

// seedDemo makes sure the demo account and its sample expenses exist.
// It is idempotent: existing demo data is left untouched.
func seedDemo(ctx context.Context, st store.Store) error {
	var users []core.User
	if _, err := st.Get(ctx, store.KeyUsers, &users); err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	hasDemoUser := false
	for _, u := range users {
		if strings.EqualFold(u.Email, demoEmail) {
			hasDemoUser = true
			break
		}
	}
	if !hasDemoUser {
		hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash demo password: %w", err)
		}
		users = append(users, core.User{
			ID:           demoUserID,
			Name:         "Demo User",
			Email:        demoEmail,
			PasswordHash: string(hash),
		})
		if err := st.Set(ctx, store.KeyUsers, users); err != nil {
			return fmt.Errorf("save users: %w", err)
		}
		slog.InfoContext(ctx, "Seeded demo user", "email", demoEmail)
	}

	var expenses []core.Expense
	if _, err := st.Get(ctx, store.KeyExpenses, &expenses); err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}
	for _, e := range expenses {
		if e.UserID == demoUserID {
			return nil
		}
	}
	expenses = append(expenses, demoExpenses()...)
	if err := st.Set(ctx, store.KeyExpenses, expenses); err != nil {
		return fmt.Errorf("save expenses: %w", err)
	}
	slog.InfoContext(ctx, "Seeded demo expenses", "count", len(demoExpenses()))
	return nil
}
