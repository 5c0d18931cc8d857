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

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/karan10i/scaling-sniffle/backend/apperr"
	"github.com/karan10i/scaling-sniffle/backend/models"
	"github.com/karan10i/scaling-sniffle/backend/storage"
)

// FriendService enforces the request state machine that gates who may open
// a channel at all.
type FriendService struct {
	friends storage.FriendStore
	users   storage.UserStore
	log     *slog.Logger
}

func NewFriendService(friends storage.FriendStore, users storage.UserStore, log *slog.Logger) *FriendService {
	return &FriendService{friends: friends, users: users, log: log}
}

// SendRequest creates a pending request from -> to. Self-requests, existing
// friendships and existing requests (whatever their status) all conflict.
func (s *FriendService) SendRequest(ctx context.Context, fromID, toID string) (*models.FriendRequest, error) {
	if toID == "" {
		return nil, apperr.InvalidArg("to_user_id is required")
	}
	if fromID == toID {
		return nil, apperr.Conflict("cannot send a friend request to yourself")
	}
	if _, err := s.users.GetProfile(ctx, toID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to resolve user", err)
	}

	isFriend, err := s.friends.EdgeExists(ctx, fromID, toID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to check friendship", err)
	}
	if isFriend {
		return nil, apperr.Conflict("already friends")
	}

	if existing, err := s.friends.FindRequest(ctx, fromID, toID); err == nil {
		return nil, apperr.Conflict(fmt.Sprintf("request already %s", existing.Status))
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to check existing request", err)
	}

	req := &models.FriendRequest{
		ID:         uuid.New().String(),
		FromUserID: fromID,
		ToUserID:   toID,
		Status:     models.RequestPending,
	}
	if err := s.friends.CreateRequest(ctx, req); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// Lost the race with an identical request; same answer.
			return nil, apperr.Conflict("request already pending")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to create friend request", err)
	}
	return req, nil
}

// Accept resolves a pending request addressed to actor, creating both
// directed edges. Transitions out of pending are terminal.
func (s *FriendService) Accept(ctx context.Context, actorID, requestID string) error {
	req, err := s.loadAddressedRequest(ctx, actorID, requestID)
	if err != nil {
		return err
	}
	if req.Status != models.RequestPending {
		return apperr.Conflict("request is not pending")
	}

	if err := s.friends.AcceptRequest(ctx, req); err != nil {
		if errors.Is(err, storage.ErrNotPending) {
			return apperr.Conflict("request is not pending")
		}
		return apperr.Wrap(apperr.CodeInternal, "failed to accept friend request", err)
	}
	s.log.Info("friend request accepted", "request_id", req.ID, "from", req.FromUserID, "to", req.ToUserID)
	return nil
}

// Reject resolves a pending request addressed to actor. No edges are
// created.
func (s *FriendService) Reject(ctx context.Context, actorID, requestID string) error {
	req, err := s.loadAddressedRequest(ctx, actorID, requestID)
	if err != nil {
		return err
	}
	if req.Status != models.RequestPending {
		return apperr.Conflict("request is not pending")
	}

	if err := s.friends.RejectRequest(ctx, req.ID); err != nil {
		if errors.Is(err, storage.ErrNotPending) {
			return apperr.Conflict("request is not pending")
		}
		return apperr.Wrap(apperr.CodeInternal, "failed to reject friend request", err)
	}
	return nil
}

// AddFriend creates the single directed edge owner -> friend, bypassing the
// request flow. The edge stays asymmetric unless the other side adds back.
func (s *FriendService) AddFriend(ctx context.Context, ownerID, friendID string) error {
	if friendID == "" {
		return apperr.InvalidArg("friend_id is required")
	}
	if ownerID == friendID {
		return apperr.Conflict("cannot add yourself as a friend")
	}
	if _, err := s.users.GetProfile(ctx, friendID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Wrap(apperr.CodeInternal, "failed to resolve user", err)
	}

	isFriend, err := s.friends.EdgeExists(ctx, ownerID, friendID)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to check friendship", err)
	}
	if isFriend {
		return apperr.Conflict("already friends")
	}

	if err := s.friends.AddEdge(ctx, ownerID, friendID); err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to add friend", err)
	}
	return nil
}

func (s *FriendService) IsFriend(ctx context.Context, userID, friendID string) (bool, error) {
	return s.friends.EdgeExists(ctx, userID, friendID)
}

func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]models.Profile, error) {
	friends, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list friends", err)
	}
	return friends, nil
}

func (s *FriendService) ListPending(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	reqs, err := s.friends.ListPendingRequests(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list pending requests", err)
	}
	return reqs, nil
}

func (s *FriendService) loadAddressedRequest(ctx context.Context, actorID, requestID string) (*models.FriendRequest, error) {
	if requestID == "" {
		return nil, apperr.InvalidArg("request_id is required")
	}
	req, err := s.friends.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("request not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load friend request", err)
	}
	// A request is only actionable by its addressee; anyone else sees the
	// same NotFound as a nonexistent id.
	if req.ToUserID != actorID {
		return nil, apperr.NotFound("request not found")
	}
	return req, nil
}
