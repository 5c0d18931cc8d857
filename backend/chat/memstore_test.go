// Copyright (C) 2025 karan10i
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package chat

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/karan10i/scaling-sniffle/backend/models"
	"github.com/karan10i/scaling-sniffle/backend/storage"
)

// In-memory store doubles. They implement the same contracts the postgres
// and redis stores do, including the sentinel errors, so coordinator tests
// exercise real lifecycle semantics without backing services.

type memUsers struct {
	profiles map[string]models.Profile
}

func newMemUsers(ids ...string) *memUsers {
	m := &memUsers{profiles: make(map[string]models.Profile)}
	for _, id := range ids {
		m.profiles[id] = models.Profile{UserID: id, Username: id, DisplayName: id}
	}
	return m
}

func (m *memUsers) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (m *memUsers) SearchProfiles(_ context.Context, query, excludeUserID string) ([]models.Profile, error) {
	var out []models.Profile
	for id, p := range m.profiles {
		if id != excludeUserID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memFriends struct {
	mu       sync.Mutex
	edges    map[string]bool
	requests map[string]*models.FriendRequest
	users    *memUsers
}

func newMemFriends(users *memUsers) *memFriends {
	return &memFriends{
		edges:    make(map[string]bool),
		requests: make(map[string]*models.FriendRequest),
		users:    users,
	}
}

func edgeKey(userID, friendID string) string { return userID + "->" + friendID }

func (m *memFriends) CreateRequest(_ context.Context, req *models.FriendRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.requests {
		if existing.FromUserID == req.FromUserID && existing.ToUserID == req.ToUserID {
			return storage.ErrDuplicate
		}
	}
	req.CreatedAt = time.Now()
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *memFriends) GetRequest(_ context.Context, id string) (*models.FriendRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (m *memFriends) FindRequest(_ context.Context, fromUserID, toUserID string) (*models.FriendRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.requests {
		if req.FromUserID == fromUserID && req.ToUserID == toUserID {
			cp := *req
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memFriends) AcceptRequest(_ context.Context, req *models.FriendRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.requests[req.ID]
	if !ok || stored.Status != models.RequestPending {
		return storage.ErrNotPending
	}
	stored.Status = models.RequestAccepted
	m.edges[edgeKey(req.FromUserID, req.ToUserID)] = true
	m.edges[edgeKey(req.ToUserID, req.FromUserID)] = true
	return nil
}

func (m *memFriends) RejectRequest(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.requests[id]
	if !ok || stored.Status != models.RequestPending {
		return storage.ErrNotPending
	}
	stored.Status = models.RequestRejected
	return nil
}

func (m *memFriends) AddEdge(_ context.Context, userID, friendID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[edgeKey(userID, friendID)] = true
	return nil
}

func (m *memFriends) EdgeExists(_ context.Context, userID, friendID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.edges[edgeKey(userID, friendID)], nil
}

func (m *memFriends) ListFriends(_ context.Context, userID string) ([]models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Profile
	for id, p := range m.users.profiles {
		if m.edges[edgeKey(userID, id)] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *memFriends) ListPendingRequests(_ context.Context, toUserID string) ([]models.FriendRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FriendRequest
	for _, req := range m.requests {
		if req.ToUserID == toUserID && req.Status == models.RequestPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

type memVault struct {
	mu   sync.Mutex
	rows map[string]*models.VaultMessage
	seq  int
}

func newMemVault() *memVault {
	return &memVault{rows: make(map[string]*models.VaultMessage)}
}

func (m *memVault) UpsertSave(_ context.Context, senderID, receiverID, content string, role models.SaveRole) (*models.VaultMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.SenderID == senderID && row.ReceiverID == receiverID && row.Content == content {
			if role == models.RoleSender {
				row.SavedBySender = true
			} else {
				row.SavedByReceiver = true
			}
			cp := *row
			return &cp, nil
		}
	}
	m.seq++
	row := &models.VaultMessage{
		ID:              fmt.Sprintf("vault-%d", m.seq),
		SenderID:        senderID,
		ReceiverID:      receiverID,
		Content:         content,
		SavedBySender:   role == models.RoleSender,
		SavedByReceiver: role == models.RoleReceiver,
		CreatedAt:       time.Now().Add(time.Duration(m.seq) * time.Millisecond),
	}
	m.rows[row.ID] = row
	cp := *row
	return &cp, nil
}

func (m *memVault) ClearSave(_ context.Context, messageID, actorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[messageID]
	if !ok {
		return storage.ErrNotFound
	}
	switch {
	case row.SenderID == actorID && row.SavedBySender:
		row.SavedBySender = false
	case row.ReceiverID == actorID && row.SavedByReceiver:
		row.SavedByReceiver = false
	default:
		return storage.ErrNotSaved
	}
	if !row.SavedBySender && !row.SavedByReceiver {
		delete(m.rows, messageID)
	}
	return nil
}

func (m *memVault) Get(_ context.Context, messageID string) (*models.VaultMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[messageID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *memVault) ListSaved(_ context.Context, actorID string, order storage.SortOrder) ([]models.VaultMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.VaultMessage
	for _, row := range m.rows {
		if row.SavedBy(actorID) {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if order == storage.NewestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memVault) ListConversation(_ context.Context, requesterID, otherID string) ([]models.VaultMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.VaultMessage
	for _, row := range m.rows {
		ownSent := row.SenderID == requesterID && row.ReceiverID == otherID && row.SavedBySender
		ownReceived := row.SenderID == otherID && row.ReceiverID == requesterID && row.SavedByReceiver
		if ownSent || ownReceived {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memChannels struct {
	mu        sync.Mutex
	channels  map[string][]models.EphemeralMessage
	readErr   error
	removeErr error
}

func newMemChannels() *memChannels {
	return &memChannels{channels: make(map[string][]models.EphemeralMessage)}
}

func chanKey(senderID, receiverID string) string { return senderID + ":" + receiverID }

func (m *memChannels) Append(_ context.Context, msg models.EphemeralMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := chanKey(msg.SenderID, msg.ReceiverID)
	m.channels[key] = append(m.channels[key], msg)
	return nil
}

func (m *memChannels) Read(_ context.Context, senderID, receiverID string, _ bool) ([]models.EphemeralMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return append([]models.EphemeralMessage(nil), m.channels[chanKey(senderID, receiverID)]...), nil
}

func (m *memChannels) RemoveOne(_ context.Context, msg models.EphemeralMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	key := chanKey(msg.SenderID, msg.ReceiverID)
	for i, entry := range m.channels[key] {
		if entry.Content == msg.Content {
			m.channels[key] = append(m.channels[key][:i], m.channels[key][i+1:]...)
			break
		}
	}
	return nil
}

func (m *memChannels) Purge(_ context.Context, senderID, receiverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.channels, chanKey(senderID, receiverID))
	return nil
}

func (m *memChannels) len(senderID, receiverID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.channels[chanKey(senderID, receiverID)])
}
