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

// Package chat implements the message lifecycle: messages start in the
// ephemeral channel tier and become durable only when a participant saves
// them to the vault. The coordinator composes the two store tiers and is
// the only place that knows both exist.
package chat

import (
	"context"
	"errors"
	"log/slog"

	"github.com/karan10i/scaling-sniffle/backend/apperr"
	"github.com/karan10i/scaling-sniffle/backend/models"
	"github.com/karan10i/scaling-sniffle/backend/storage"
)

type Coordinator struct {
	friends storage.FriendStore
	vault   storage.VaultStore
	channel storage.ChannelStore
	users   storage.UserStore
	log     *slog.Logger
}

func NewCoordinator(friends storage.FriendStore, vault storage.VaultStore, channel storage.ChannelStore, users storage.UserStore, log *slog.Logger) *Coordinator {
	return &Coordinator{
		friends: friends,
		vault:   vault,
		channel: channel,
		users:   users,
		log:     log,
	}
}

// Conversation is the merged per-requester view. Degraded is set when the
// ephemeral tier was unreachable and only vaulted history is included.
type Conversation struct {
	Messages []models.ConversationItem `json:"messages"`
	Degraded bool                      `json:"degraded,omitempty"`
}

// Send appends to the ephemeral channel keyed (sender, receiver). The vault
// is untouched; durability is the participants' explicit choice later.
func (c *Coordinator) Send(ctx context.Context, senderID, receiverID, content string) error {
	if receiverID == "" || content == "" {
		return apperr.InvalidArg("receiver_id and content are required")
	}

	if _, err := c.users.GetProfile(ctx, receiverID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("receiver not found")
		}
		return apperr.Wrap(apperr.CodeInternal, "failed to resolve receiver", err)
	}

	// Gate on the directed edge only: sender->receiver authorizes sending
	// regardless of the reverse edge.
	isFriend, err := c.friends.EdgeExists(ctx, senderID, receiverID)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to check friendship", err)
	}
	if !isFriend {
		return apperr.Forbidden("you can only message friends")
	}

	msg := models.EphemeralMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := c.channel.Append(ctx, msg); err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to send message", err)
	}
	return nil
}

// FetchConversation merges three views: the requester's own vaulted history
// with other, incoming ephemeral traffic (other -> requester), and the
// requester's not-yet-expired outgoing copy (requester -> other). Both
// channel reads shorten the TTL to the grace window. An unreachable
// ephemeral tier degrades the response to vault-only rather than failing:
// vaulted history stays authoritative.
func (c *Coordinator) FetchConversation(ctx context.Context, requesterID, otherID string) (*Conversation, error) {
	if otherID == "" {
		return nil, apperr.InvalidArg("user_id is required")
	}
	if _, err := c.users.GetProfile(ctx, otherID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to resolve user", err)
	}

	vaulted, err := c.vault.ListConversation(ctx, requesterID, otherID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load vault history", err)
	}

	conv := &Conversation{Messages: make([]models.ConversationItem, 0, len(vaulted))}
	for i := range vaulted {
		conv.Messages = append(conv.Messages, vaultItem(&vaulted[i]))
	}

	incoming, err := c.channel.Read(ctx, otherID, requesterID, true)
	if err != nil {
		c.log.Warn("ephemeral read failed, serving vault only",
			"requester", requesterID, "other", otherID, "err", err)
		conv.Degraded = true
		return conv, nil
	}
	outgoing, err := c.channel.Read(ctx, requesterID, otherID, true)
	if err != nil {
		c.log.Warn("ephemeral read failed, serving vault only",
			"requester", requesterID, "other", otherID, "err", err)
		conv.Degraded = true
		return conv, nil
	}

	for _, msg := range incoming {
		conv.Messages = append(conv.Messages, ephemeralItem(msg))
	}
	for _, msg := range outgoing {
		conv.Messages = append(conv.Messages, ephemeralItem(msg))
	}
	return conv, nil
}

// SaveToVault promotes a message to durability. The direction is resolved
// from actorIsSender, and removal targets the channel that originally
// carried the message, not the actor's view. A failed removal is logged and
// tolerated: once vaulted, the ephemeral copy is expiring residue.
func (c *Coordinator) SaveToVault(ctx context.Context, actorID, otherID, content string, actorIsSender bool) (*models.VaultMessage, error) {
	if otherID == "" || content == "" {
		return nil, apperr.InvalidArg("other_user_id and content are required")
	}
	if _, err := c.users.GetProfile(ctx, otherID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to resolve user", err)
	}

	senderID, receiverID := otherID, actorID
	role := models.RoleReceiver
	if actorIsSender {
		senderID, receiverID = actorID, otherID
		role = models.RoleSender
	}

	msg, err := c.vault.UpsertSave(ctx, senderID, receiverID, content, role)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to save message to vault", err)
	}

	err = c.channel.RemoveOne(ctx, models.EphemeralMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	})
	if err != nil {
		// The entry self-expires via TTL; the vault write is what counts.
		c.log.Warn("ephemeral removal after vaulting failed",
			"sender", senderID, "receiver", receiverID, "err", err)
	}

	return msg, nil
}

// UnsaveFromVault clears the actor's save flag. The store deletes the row
// when no flag remains; nothing is resurrected into the ephemeral tier.
func (c *Coordinator) UnsaveFromVault(ctx context.Context, actorID, messageID string) error {
	if messageID == "" {
		return apperr.InvalidArg("message_id is required")
	}
	if err := c.vault.ClearSave(ctx, messageID, actorID); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return apperr.NotFound("message not found")
		case errors.Is(err, storage.ErrNotSaved):
			return apperr.Forbidden("message is not saved by you")
		default:
			return apperr.Wrap(apperr.CodeInternal, "failed to remove message from vault", err)
		}
	}
	return nil
}

// ListVault returns the actor's saved messages, newest first.
func (c *Coordinator) ListVault(ctx context.Context, actorID string) ([]models.VaultMessage, error) {
	msgs, err := c.vault.ListSaved(ctx, actorID, storage.NewestFirst)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list vault", err)
	}
	return msgs, nil
}

// Cleanup purges the incoming channel (other -> actor), invoked when a
// client stops watching a conversation live.
func (c *Coordinator) Cleanup(ctx context.Context, actorID, otherID string) error {
	if otherID == "" {
		return apperr.InvalidArg("friend_id is required")
	}
	if err := c.channel.Purge(ctx, otherID, actorID); err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to clean up channel", err)
	}
	return nil
}

func vaultItem(msg *models.VaultMessage) models.ConversationItem {
	created := msg.CreatedAt
	return models.ConversationItem{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
		CreatedAt:  &created,
		Saved:      true,
		Source:     models.SourceVault,
	}
}

func ephemeralItem(msg models.EphemeralMessage) models.ConversationItem {
	return models.ConversationItem{
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
		Saved:      false,
		Source:     models.SourceEphemeral,
	}
}
