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

	"github.com/google/uuid"

	"github.com/karan10i/scaling-sniffle/backend/models"
	"github.com/karan10i/scaling-sniffle/backend/storage"
)

const vaultColumns = `id, sender_id, receiver_id, content, saved_by_sender, saved_by_receiver, created_at`

// UpsertSave sets role's flag on the row identified by (sender, receiver,
// content), creating it with only that flag when absent. The single
// INSERT .. ON CONFLICT .. DO UPDATE statement rides on the unique
// constraint, so two participants saving the same message concurrently
// serialize on the row and converge to one record with both flags true.
func (s *Store) UpsertSave(ctx context.Context, senderID, receiverID, content string, role models.SaveRole) (*models.VaultMessage, error) {
	bySender := role == models.RoleSender

	msg := &models.VaultMessage{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO vault_messages (id, sender_id, receiver_id, content, saved_by_sender, saved_by_receiver)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (sender_id, receiver_id, content) DO UPDATE
		SET saved_by_sender = vault_messages.saved_by_sender OR EXCLUDED.saved_by_sender,
		    saved_by_receiver = vault_messages.saved_by_receiver OR EXCLUDED.saved_by_receiver
		RETURNING `+vaultColumns,
		uuid.New().String(), senderID, receiverID, content, bySender, !bySender).Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content,
		&msg.SavedBySender, &msg.SavedByReceiver, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert vault message: %w", err)
	}
	return msg, nil
}

// ClearSave drops actor's flag and deletes the row the instant both flags
// are false. The row lock from FOR UPDATE keeps a concurrent clear from the
// other participant from resurrecting or double-deleting it.
func (s *Store) ClearSave(ctx context.Context, messageID, actorID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	msg := models.VaultMessage{}
	err = tx.QueryRowContext(ctx, `
		SELECT `+vaultColumns+` FROM vault_messages WHERE id = $1 FOR UPDATE`,
		messageID).Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content,
		&msg.SavedBySender, &msg.SavedByReceiver, &msg.CreatedAt)
	if err == sql.ErrNoRows {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load vault message: %w", err)
	}

	switch {
	case msg.SenderID == actorID && msg.SavedBySender:
		msg.SavedBySender = false
	case msg.ReceiverID == actorID && msg.SavedByReceiver:
		msg.SavedByReceiver = false
	default:
		return storage.ErrNotSaved
	}

	if !msg.SavedBySender && !msg.SavedByReceiver {
		_, err = tx.ExecContext(ctx, `DELETE FROM vault_messages WHERE id = $1`, messageID)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE vault_messages SET saved_by_sender = $2, saved_by_receiver = $3
			WHERE id = $1`,
			messageID, msg.SavedBySender, msg.SavedByReceiver)
	}
	if err != nil {
		return fmt.Errorf("failed to update vault message: %w", err)
	}

	return tx.Commit()
}

func (s *Store) Get(ctx context.Context, messageID string) (*models.VaultMessage, error) {
	msg := &models.VaultMessage{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+vaultColumns+` FROM vault_messages WHERE id = $1`,
		messageID).Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content,
		&msg.SavedBySender, &msg.SavedByReceiver, &msg.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vault message: %w", err)
	}
	return msg, nil
}

// ListSaved returns every vault row where actor is a participant and their
// own flag is set. Descending for vault browsing, ascending for replay.
func (s *Store) ListSaved(ctx context.Context, actorID string, order storage.SortOrder) ([]models.VaultMessage, error) {
	direction := "DESC"
	if order == storage.OldestFirst {
		direction = "ASC"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+vaultColumns+` FROM vault_messages
		WHERE (sender_id = $1 AND saved_by_sender)
		   OR (receiver_id = $1 AND saved_by_receiver)
		ORDER BY created_at `+direction, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vault messages: %w", err)
	}
	defer rows.Close()

	return scanVaultRows(rows)
}

// ListConversation returns the requester's vaulted history with other,
// oldest first, for merging into the conversation view.
func (s *Store) ListConversation(ctx context.Context, requesterID, otherID string) ([]models.VaultMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+vaultColumns+` FROM vault_messages
		WHERE (sender_id = $1 AND receiver_id = $2 AND saved_by_sender)
		   OR (sender_id = $2 AND receiver_id = $1 AND saved_by_receiver)
		ORDER BY created_at ASC`, requesterID, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation vault messages: %w", err)
	}
	defer rows.Close()

	return scanVaultRows(rows)
}

func scanVaultRows(rows *sql.Rows) ([]models.VaultMessage, error) {
	var msgs []models.VaultMessage
	for rows.Next() {
		var msg models.VaultMessage
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content,
			&msg.SavedBySender, &msg.SavedByReceiver, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vault row: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
