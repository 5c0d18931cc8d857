// Copyright (C) 2025 karan10i
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package models

import "time"

// EphemeralMessage is the record serialized into a channel list entry.
// It has no server-assigned id and no timestamp; duplicates are legal and
// distinguishable only by list position.
type EphemeralMessage struct {
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

// VaultMessage is the durable record a message becomes once either
// participant saves it. A row with both flags false must not exist; it is
// deleted the moment the second flag clears.
type VaultMessage struct {
	ID              string    `json:"id" db:"id"`
	SenderID        string    `json:"sender_id" db:"sender_id"`
	ReceiverID      string    `json:"receiver_id" db:"receiver_id"`
	Content         string    `json:"content" db:"content"`
	SavedBySender   bool      `json:"saved_by_sender" db:"saved_by_sender"`
	SavedByReceiver bool      `json:"saved_by_receiver" db:"saved_by_receiver"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// SavedBy reports whether userID is a participant with their own flag set.
func (m *VaultMessage) SavedBy(userID string) bool {
	return (m.SenderID == userID && m.SavedBySender) ||
		(m.ReceiverID == userID && m.SavedByReceiver)
}

// SaveRole names which side of the conversation is acting on the vault.
type SaveRole string

const (
	RoleSender   SaveRole = "sender"
	RoleReceiver SaveRole = "receiver"
)

// MessageSource is the provenance tag on merged conversation views.
type MessageSource string

const (
	SourceVault     MessageSource = "vault"
	SourceEphemeral MessageSource = "ephemeral"
)

// ConversationItem is one entry of the merged vault + ephemeral view.
// Ephemeral items carry no id and no timestamp.
type ConversationItem struct {
	ID         string        `json:"id,omitempty"`
	SenderID   string        `json:"sender_id"`
	ReceiverID string        `json:"receiver_id"`
	Content    string        `json:"content"`
	CreatedAt  *time.Time    `json:"timestamp,omitempty"`
	Saved      bool          `json:"is_saved"`
	Source     MessageSource `json:"source"`
}
