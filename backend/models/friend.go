// Copyright (C) 2025 karan10i
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package models

import "time"

type FriendRequestStatus string

const (
	RequestPending  FriendRequestStatus = "pending"
	RequestAccepted FriendRequestStatus = "accepted"
	RequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest moves pending -> accepted or pending -> rejected, nothing
// else. Only the addressed recipient may resolve it.
type FriendRequest struct {
	ID         string              `json:"request_id" db:"id"`
	FromUserID string              `json:"from_user_id" db:"from_user_id"`
	ToUserID   string              `json:"to_user_id" db:"to_user_id"`
	Status     FriendRequestStatus `json:"status" db:"status"`
	CreatedAt  time.Time           `json:"created_at" db:"created_at"`
}

// FriendEdge is a one-way "may message" authorization. Accepting a request
// creates both directions; a direct add may create just one.
type FriendEdge struct {
	UserID    string    `json:"user_id" db:"user_id"`
	FriendID  string    `json:"friend_id" db:"friend_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
