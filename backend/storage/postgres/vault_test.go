// Copyright (C) 2025 karan10i
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karan10i/scaling-sniffle/backend/models"
	"github.com/karan10i/scaling-sniffle/backend/storage"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewStore(db), mock, db
}

func vaultRow(id string, bySender, byReceiver bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "sender_id", "receiver_id", "content",
		"saved_by_sender", "saved_by_receiver", "created_at",
	}).AddRow(id, "alice", "bob", "hello", bySender, byReceiver, time.Now())
}

func TestUpsertSave_InsertsWithRoleFlag(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO vault_messages .+ ON CONFLICT \(sender_id, receiver_id, content\) DO UPDATE`).
		WithArgs(sqlmock.AnyArg(), "alice", "bob", "hello", true, false).
		WillReturnRows(vaultRow("m1", true, false))

	msg, err := store.UpsertSave(context.Background(), "alice", "bob", "hello", models.RoleSender)
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.True(t, msg.SavedBySender)
	assert.False(t, msg.SavedByReceiver)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSave_ReceiverRoleSetsReceiverFlag(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO vault_messages`).
		WithArgs(sqlmock.AnyArg(), "alice", "bob", "hello", false, true).
		WillReturnRows(vaultRow("m1", true, true))

	msg, err := store.UpsertSave(context.Background(), "alice", "bob", "hello", models.RoleReceiver)
	require.NoError(t, err)
	assert.True(t, msg.SavedBySender)
	assert.True(t, msg.SavedByReceiver)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearSave_KeepsRowWhileOtherFlagSet(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM vault_messages WHERE id = \$1 FOR UPDATE`).
		WithArgs("m1").
		WillReturnRows(vaultRow("m1", true, true))
	mock.ExpectExec(`UPDATE vault_messages SET saved_by_sender = \$2, saved_by_receiver = \$3`).
		WithArgs("m1", false, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.ClearSave(context.Background(), "m1", "alice"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearSave_DeletesRowWhenLastFlagClears(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FOR UPDATE`).
		WithArgs("m1").
		WillReturnRows(vaultRow("m1", false, true))
	mock.ExpectExec(`DELETE FROM vault_messages WHERE id = \$1`).
		WithArgs("m1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.ClearSave(context.Background(), "m1", "bob"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearSave_NotParticipantOrFlagUnset(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	// carol is not a participant at all.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FOR UPDATE`).
		WithArgs("m1").
		WillReturnRows(vaultRow("m1", true, true))
	mock.ExpectRollback()

	err := store.ClearSave(context.Background(), "m1", "carol")
	assert.ErrorIs(t, err, storage.ErrNotSaved)

	// alice is the sender but her flag is already clear.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FOR UPDATE`).
		WithArgs("m1").
		WillReturnRows(vaultRow("m1", false, true))
	mock.ExpectRollback()

	err = store.ClearSave(context.Background(), "m1", "alice")
	assert.ErrorIs(t, err, storage.ErrNotSaved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearSave_MissingRow(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FOR UPDATE`).
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := store.ClearSave(context.Background(), "gone", "alice")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGet_MissingRow(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM vault_messages WHERE id = \$1`).
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "gone")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListSaved_OrderFollowsCaller(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WithArgs("alice").
		WillReturnRows(vaultRow("m1", true, false))

	msgs, err := store.ListSaved(context.Background(), "alice", storage.NewestFirst)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	mock.ExpectQuery(`ORDER BY created_at ASC`).
		WithArgs("alice").
		WillReturnRows(vaultRow("m1", true, false))

	_, err = store.ListSaved(context.Background(), "alice", storage.OldestFirst)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListConversation_ScopesToPairAndOwnFlags(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`\(sender_id = \$1 AND receiver_id = \$2 AND saved_by_sender\)\s+OR \(sender_id = \$2 AND receiver_id = \$1 AND saved_by_receiver\)`).
		WithArgs("alice", "bob").
		WillReturnRows(vaultRow("m1", true, false))

	msgs, err := store.ListConversation(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
