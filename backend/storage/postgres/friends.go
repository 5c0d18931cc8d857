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
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/karan10i/scaling-sniffle/backend/models"
	"github.com/karan10i/scaling-sniffle/backend/storage"
)

func (s *Store) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO friend_requests (id, from_user_id, to_user_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		req.ID, req.FromUserID, req.ToUserID, req.Status).Scan(&req.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to create friend request: %w", err)
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	req := &models.FriendRequest{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, from_user_id, to_user_id, status, created_at
		FROM friend_requests WHERE id = $1`, id).Scan(
		&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friend request: %w", err)
	}
	return req, nil
}

func (s *Store) FindRequest(ctx context.Context, fromUserID, toUserID string) (*models.FriendRequest, error) {
	req := &models.FriendRequest{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, from_user_id, to_user_id, status, created_at
		FROM friend_requests WHERE from_user_id = $1 AND to_user_id = $2`,
		fromUserID, toUserID).Scan(
		&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find friend request: %w", err)
	}
	return req, nil
}

// AcceptRequest flips the request to accepted and creates both directed
// edges in one transaction. The status guard in the UPDATE makes repeat
// acceptance fail cleanly instead of duplicating edges.
func (s *Store) AcceptRequest(ctx context.Context, req *models.FriendRequest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE friend_requests SET status = 'accepted'
		WHERE id = $1 AND status = 'pending'`, req.ID)
	if err != nil {
		return fmt.Errorf("failed to accept friend request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to accept friend request: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotPending
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO friend_edges (user_id, friend_id)
		VALUES ($1, $2), ($2, $1)
		ON CONFLICT (user_id, friend_id) DO NOTHING`,
		req.FromUserID, req.ToUserID)
	if err != nil {
		return fmt.Errorf("failed to create friend edges: %w", err)
	}

	return tx.Commit()
}

func (s *Store) RejectRequest(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE friend_requests SET status = 'rejected'
		WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("failed to reject friend request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to reject friend request: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotPending
	}
	return nil
}

// AddEdge creates a single directed edge, idempotently. The request flow
// always produces symmetric pairs; a direct add may stay asymmetric.
func (s *Store) AddEdge(ctx context.Context, userID, friendID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO friend_edges (user_id, friend_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, friend_id) DO NOTHING`,
		userID, friendID)
	if err != nil {
		return fmt.Errorf("failed to add friend edge: %w", err)
	}
	return nil
}

func (s *Store) EdgeExists(ctx context.Context, userID, friendID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM friend_edges WHERE user_id = $1 AND friend_id = $2)`,
		userID, friendID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friend edge: %w", err)
	}
	return exists, nil
}

func (s *Store) ListFriends(ctx context.Context, userID string) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.user_id, p.username, p.display_name, p.created_at
		FROM friend_edges f
		JOIN profiles p ON p.user_id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY p.username`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.UserID, &p.Username, &p.DisplayName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend row: %w", err)
		}
		friends = append(friends, p)
	}
	return friends, rows.Err()
}

func (s *Store) ListPendingRequests(ctx context.Context, toUserID string) ([]models.FriendRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_user_id, to_user_id, status, created_at
		FROM friend_requests
		WHERE to_user_id = $1 AND status = 'pending'
		ORDER BY created_at`, toUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var reqs []models.FriendRequest
	for rows.Next() {
		var req models.FriendRequest
		if err := rows.Scan(&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request row: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
