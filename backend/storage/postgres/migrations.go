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

func (s *Store) Migrate() error {
	migrations := []string{
		// Profile directory. Rows are owned by the account service; this
		// backend only reads them.
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id VARCHAR(255) PRIMARY KEY,
			username VARCHAR(150) NOT NULL UNIQUE,
			display_name VARCHAR(150) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Directed friend edges. Accepting a request creates both
		// directions; a direct add may create one.
		`CREATE TABLE IF NOT EXISTS friend_edges (
			user_id VARCHAR(255) NOT NULL,
			friend_id VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, friend_id)
		)`,

		// Friend requests: at most one per ordered (from, to) pair,
		// whatever its status.
		`CREATE TABLE IF NOT EXISTS friend_requests (
			id VARCHAR(255) PRIMARY KEY,
			from_user_id VARCHAR(255) NOT NULL,
			to_user_id VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'accepted', 'rejected')),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_request_pair UNIQUE (from_user_id, to_user_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_pending_requests
		ON friend_requests(to_user_id)
		WHERE status = 'pending'`,

		// Vault messages. The uniqueness constraint on (sender, receiver,
		// content) is what makes the save-from-both-sides race converge on
		// a single row: upserts conflict here and merge flags instead of
		// inserting a second row.
		`CREATE TABLE IF NOT EXISTS vault_messages (
			id VARCHAR(255) PRIMARY KEY,
			sender_id VARCHAR(255) NOT NULL,
			receiver_id VARCHAR(255) NOT NULL,
			content TEXT NOT NULL,
			saved_by_sender BOOLEAN NOT NULL DEFAULT FALSE,
			saved_by_receiver BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_vault_message UNIQUE (sender_id, receiver_id, content)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_vault_by_sender
		ON vault_messages(sender_id, created_at DESC)
		WHERE saved_by_sender`,

		`CREATE INDEX IF NOT EXISTS idx_vault_by_receiver
		ON vault_messages(receiver_id, created_at DESC)
		WHERE saved_by_receiver`,

		// Key directory: one identity/signing key pair per user plus a
		// pool of single-use pre-keys. Contents are opaque to the server.
		`CREATE TABLE IF NOT EXISTS identity_keys (
			user_id VARCHAR(255) PRIMARY KEY,
			identity_key BYTEA NOT NULL,
			signing_key BYTEA NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS one_time_pre_keys (
			user_id VARCHAR(255) NOT NULL,
			key_id INTEGER NOT NULL,
			public_key BYTEA NOT NULL,
			used BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, key_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_unused_prekeys
		ON one_time_pre_keys(user_id, used)
		WHERE used = FALSE`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
