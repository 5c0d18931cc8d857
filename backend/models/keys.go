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

package models

import "time"

// Key material is opaque to the server: it is stored and served verbatim for
// client-side encryption, never parsed or validated here.

type IdentityKeys struct {
	UserID      string    `json:"user_id" db:"user_id"`
	IdentityKey []byte    `json:"identity_key" db:"identity_key"`
	SigningKey  []byte    `json:"signing_key" db:"signing_key"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// OneTimePreKey is consumable exactly once: handed out in a single bundle
// and marked used in the same transaction.
type OneTimePreKey struct {
	UserID    string    `json:"user_id" db:"user_id"`
	KeyID     int       `json:"key_id" db:"key_id"`
	PublicKey []byte    `json:"public_key" db:"public_key"`
	Used      bool      `json:"used" db:"used"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type PreKeyBundle struct {
	IdentityKey   []byte         `json:"identity_key"`
	SigningKey    []byte         `json:"signing_key"`
	OneTimePreKey *OneTimePreKey `json:"one_time_pre_key,omitempty"`
}

type KeyRegistration struct {
	IdentityKey    []byte          `json:"identity_key"`
	SigningKey     []byte          `json:"signing_key"`
	OneTimePreKeys []OneTimePreKey `json:"one_time_pre_keys"`
}
