// Copyright (C) 2025 karan10i
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/karan10i/scaling-sniffle/backend/models"
	"github.com/karan10i/scaling-sniffle/backend/storage"
)

func (s *Store) RegisterKeys(ctx context.Context, userID string, reg models.KeyRegistration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO identity_keys (user_id, identity_key, signing_key)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET identity_key = $2, signing_key = $3, created_at = CURRENT_TIMESTAMP`,
		userID, reg.IdentityKey, reg.SigningKey)
	if err != nil {
		return fmt.Errorf("failed to save identity keys: %w", err)
	}

	for _, prekey := range reg.OneTimePreKeys {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO one_time_pre_keys (user_id, key_id, public_key, used)
			VALUES ($1, $2, $3, FALSE)
			ON CONFLICT (user_id, key_id) DO NOTHING`,
			userID, prekey.KeyID, prekey.PublicKey)
		if err != nil {
			return fmt.Errorf("failed to save one-time pre-key: %w", err)
		}
	}

	return tx.Commit()
}

// GetPreKeyBundle serves the user's public keys plus at most one unused
// one-time pre-key. The pre-key is locked and marked used in the same
// transaction so each one is consumable exactly once.
func (s *Store) GetPreKeyBundle(ctx context.Context, userID string) (*models.PreKeyBundle, error) {
	bundle := &models.PreKeyBundle{}
	err := s.db.QueryRowContext(ctx, `
		SELECT identity_key, signing_key FROM identity_keys WHERE user_id = $1`,
		userID).Scan(&bundle.IdentityKey, &bundle.SigningKey)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity keys: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var prekey models.OneTimePreKey
	err = tx.QueryRowContext(ctx, `
		SELECT key_id, public_key FROM one_time_pre_keys
		WHERE user_id = $1 AND used = FALSE
		ORDER BY key_id LIMIT 1
		FOR UPDATE SKIP LOCKED`, userID).Scan(&prekey.KeyID, &prekey.PublicKey)
	if err == nil {
		prekey.UserID = userID
		_, err = tx.ExecContext(ctx, `
			UPDATE one_time_pre_keys SET used = TRUE
			WHERE user_id = $1 AND key_id = $2`,
			userID, prekey.KeyID)
		if err != nil {
			return nil, fmt.Errorf("failed to mark pre-key used: %w", err)
		}
		bundle.OneTimePreKey = &prekey
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get one-time pre-key: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit pre-key consumption: %w", err)
	}

	return bundle, nil
}

func (s *Store) AddOneTimePreKeys(ctx context.Context, userID string, prekeys []models.OneTimePreKey) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, prekey := range prekeys {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO one_time_pre_keys (user_id, key_id, public_key, used)
			VALUES ($1, $2, $3, FALSE)
			ON CONFLICT (user_id, key_id) DO NOTHING`,
			userID, prekey.KeyID, prekey.PublicKey)
		if err != nil {
			return fmt.Errorf("failed to add one-time pre-key: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) UnusedPreKeyCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM one_time_pre_keys
		WHERE user_id = $1 AND used = FALSE`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pre-keys: %w", err)
	}
	return count, nil
}
