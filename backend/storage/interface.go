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

package storage

import (
	"context"
	"errors"

	"github.com/karan10i/scaling-sniffle/backend/models"
)

// Store-neutral sentinel errors. Implementations translate their driver
// errors into these so callers never depend on sql or redis error types.
var (
	ErrNotFound   = errors.New("not found")
	ErrNotPending = errors.New("request is not pending")
	ErrNotSaved   = errors.New("message is not saved by this user")
	ErrDuplicate  = errors.New("already exists")
)

type SortOrder string

const (
	OldestFirst SortOrder = "ASC"
	NewestFirst SortOrder = "DESC"
)

// FriendStore persists the friend graph: directed edges plus the request
// state machine rows. State-machine preconditions live in the service layer;
// the store only guarantees row-level invariants (uniqueness, idempotent
// edge creation, transactional accept).
type FriendStore interface {
	CreateRequest(ctx context.Context, req *models.FriendRequest) error
	GetRequest(ctx context.Context, id string) (*models.FriendRequest, error)
	FindRequest(ctx context.Context, fromUserID, toUserID string) (*models.FriendRequest, error)
	// AcceptRequest flips the row to accepted and creates both directed
	// edges in one transaction. Returns ErrNotPending if the row already
	// left the pending state.
	AcceptRequest(ctx context.Context, req *models.FriendRequest) error
	RejectRequest(ctx context.Context, id string) error
	AddEdge(ctx context.Context, userID, friendID string) error
	EdgeExists(ctx context.Context, userID, friendID string) (bool, error)
	ListFriends(ctx context.Context, userID string) ([]models.Profile, error)
	ListPendingRequests(ctx context.Context, toUserID string) ([]models.FriendRequest, error)
}

// ChannelStore is the transient tier: a TTL-bound ordered list per directed
// (sender, receiver) pair. It is not a source of truth for anything that
// must outlive a TTL window.
type ChannelStore interface {
	// Append pushes to the channel tail and resets the channel expiry to
	// the default TTL.
	Append(ctx context.Context, msg models.EphemeralMessage) error
	// Read returns the full ordered list without mutating contents. When
	// shortenTTL is set the whole channel's expiry drops to the read grace
	// window, modeling "disappears shortly after being seen".
	Read(ctx context.Context, senderID, receiverID string, shortenTTL bool) ([]models.EphemeralMessage, error)
	// RemoveOne removes the first entry with exactly matching content.
	// Absent entries are a no-op, never an error: a concurrent vaulting may
	// have removed it already.
	RemoveOne(ctx context.Context, msg models.EphemeralMessage) error
	Purge(ctx context.Context, senderID, receiverID string) error
}

// VaultStore is the durable tier: per-message records with one independent
// save flag per participant role.
type VaultStore interface {
	// UpsertSave merges into the row identified by (sender, receiver,
	// content), setting role's flag; concurrent calls from both roles must
	// converge on a single row.
	UpsertSave(ctx context.Context, senderID, receiverID, content string, role models.SaveRole) (*models.VaultMessage, error)
	// ClearSave drops actor's flag and deletes the row once both flags are
	// false. Returns ErrNotSaved when actor is not a participant with their
	// flag set.
	ClearSave(ctx context.Context, messageID, actorID string) error
	Get(ctx context.Context, messageID string) (*models.VaultMessage, error)
	ListSaved(ctx context.Context, actorID string, order SortOrder) ([]models.VaultMessage, error)
	// ListConversation returns the requester's vaulted history with other,
	// oldest first, for conversation replay.
	ListConversation(ctx context.Context, requesterID, otherID string) ([]models.VaultMessage, error)
}

// UserStore reads the profile directory maintained by the account service.
type UserStore interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	// SearchProfiles matches username or display name by substring,
	// excluding the requester. Queries shorter than 2 characters are
	// rejected upstream.
	SearchProfiles(ctx context.Context, query, excludeUserID string) ([]models.Profile, error)
}

// KeyStore persists opaque public key material for the client-side
// encryption handshake.
type KeyStore interface {
	RegisterKeys(ctx context.Context, userID string, reg models.KeyRegistration) error
	// GetPreKeyBundle serves the user's keys plus at most one unused
	// one-time pre-key, marking it used in the same transaction.
	GetPreKeyBundle(ctx context.Context, userID string) (*models.PreKeyBundle, error)
	AddOneTimePreKeys(ctx context.Context, userID string, prekeys []models.OneTimePreKey) error
	UnusedPreKeyCount(ctx context.Context, userID string) (int, error)
}
