// Copyright (C) 2025 karan10i
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/karan10i/scaling-sniffle/backend/models"
)

const (
	// DefaultChannelTTL keeps an unread channel alive for a week.
	DefaultChannelTTL = 7 * 24 * time.Hour
	// ReadGraceTTL is the short window a channel survives after being read.
	ReadGraceTTL = 10 * time.Second

	channelPrefix = "channel:" // channel:{sender_id}:{receiver_id} - ordered list of entries
)

// ChannelStore holds ephemeral message traffic as one Redis list per
// directed (sender, receiver) pair. The TTL is per channel, not per entry:
// the only transitions that matter are "pending delivery" (long TTL) and
// "seen at least once" (grace TTL).
type ChannelStore struct {
	rdb        *redis.Client
	defaultTTL time.Duration
	graceTTL   time.Duration
}

func NewChannelStore(rdb *redis.Client, defaultTTL, graceTTL time.Duration) *ChannelStore {
	if defaultTTL <= 0 {
		defaultTTL = DefaultChannelTTL
	}
	if graceTTL <= 0 {
		graceTTL = ReadGraceTTL
	}
	return &ChannelStore{
		rdb:        rdb,
		defaultTTL: defaultTTL,
		graceTTL:   graceTTL,
	}
}

func channelKey(senderID, receiverID string) string {
	return fmt.Sprintf("%s%s:%s", channelPrefix, senderID, receiverID)
}

// Append pushes to the channel tail and resets the expiry to the default
// TTL. Push and expire run in one MULTI/EXEC so a concurrent append cannot
// observe the key without a TTL.
func (s *ChannelStore) Append(ctx context.Context, msg models.EphemeralMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal channel entry: %w", err)
	}

	key := channelKey(msg.SenderID, msg.ReceiverID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.defaultTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to channel: %w", err)
	}
	return nil
}

// Read returns the full ordered list without deleting entries. With
// shortenTTL the whole channel's expiry drops to the grace window, so a
// later read past that window sees an empty channel even though the
// original TTL had not elapsed.
func (s *ChannelStore) Read(ctx context.Context, senderID, receiverID string, shortenTTL bool) ([]models.EphemeralMessage, error) {
	key := channelKey(senderID, receiverID)

	raw, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read channel: %w", err)
	}

	msgs := make([]models.EphemeralMessage, 0, len(raw))
	for _, entry := range raw {
		var msg models.EphemeralMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			continue // skip malformed entries
		}
		msgs = append(msgs, msg)
	}

	if shortenTTL && len(raw) > 0 {
		if err := s.rdb.Expire(ctx, key, s.graceTTL).Err(); err != nil {
			return nil, fmt.Errorf("failed to shorten channel ttl: %w", err)
		}
	}

	return msgs, nil
}

// RemoveOne removes the first entry whose content matches exactly. A miss is
// a no-op: a concurrent vaulting race, or expiry, may already have taken the
// entry.
func (s *ChannelStore) RemoveOne(ctx context.Context, msg models.EphemeralMessage) error {
	key := channelKey(msg.SenderID, msg.ReceiverID)

	raw, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to scan channel: %w", err)
	}

	for _, entry := range raw {
		var candidate models.EphemeralMessage
		if err := json.Unmarshal([]byte(entry), &candidate); err != nil {
			continue
		}
		if candidate.Content == msg.Content {
			if err := s.rdb.LRem(ctx, key, 1, entry).Err(); err != nil {
				return fmt.Errorf("failed to remove channel entry: %w", err)
			}
			break
		}
	}
	return nil
}

// Purge deletes the channel outright, regardless of TTL state.
func (s *ChannelStore) Purge(ctx context.Context, senderID, receiverID string) error {
	if err := s.rdb.Del(ctx, channelKey(senderID, receiverID)).Err(); err != nil {
		return fmt.Errorf("failed to purge channel: %w", err)
	}
	return nil
}
