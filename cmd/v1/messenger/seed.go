package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/peergrid/messenger/internal/v1/auth"
	"github.com/peergrid/messenger/internal/v1/store"
)

// seedSampleData creates two demo accounts with an approved contact pair
// for local development. Running it against an already-seeded database is
// a no-op.
func seedSampleData(ctx context.Context, st *store.Store, hasher *auth.Hasher) error {
	if _, err := st.GetUserByUsername(ctx, "user1"); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return err
	}

	user1, err := seedUser(ctx, st, hasher, "user1", "user1@email.com", "user1user1")
	if err != nil {
		return err
	}
	user2, err := seedUser(ctx, st, hasher, "user2", "user2@email.com", "user2user2")
	if err != nil {
		return err
	}

	if _, err := st.AddContact(ctx, user1.ID, user2.ID, store.StatusApproved); err != nil {
		return fmt.Errorf("seeding contact: %w", err)
	}
	if _, err := st.AddContact(ctx, user2.ID, user1.ID, store.StatusApproved); err != nil {
		return fmt.Errorf("seeding contact: %w", err)
	}

	return nil
}

func seedUser(ctx context.Context, st *store.Store, hasher *auth.Hasher, username, email, password string) (*store.User, error) {
	salt, err := auth.NewSalt()
	if err != nil {
		return nil, err
	}
	user, err := st.CreateUser(ctx, username, email, hex.EncodeToString(salt), hasher.Hash(password, salt))
	if err != nil {
		return nil, fmt.Errorf("seeding user %s: %w", username, err)
	}
	return user, nil
}
