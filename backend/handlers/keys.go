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

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/karan10i/scaling-sniffle/backend/apperr"
	"github.com/karan10i/scaling-sniffle/backend/models"
	"github.com/karan10i/scaling-sniffle/backend/storage"
)

// KeyHandler stores and serves opaque public key material for client-side
// encryption. The server never inspects it.
type KeyHandler struct {
	store storage.KeyStore
}

func NewKeyHandler(store storage.KeyStore) *KeyHandler {
	return &KeyHandler{store: store}
}

func (h *KeyHandler) RegisterKeys(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var registration models.KeyRegistration
	if err := json.NewDecoder(r.Body).Decode(&registration); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(registration.IdentityKey) == 0 || len(registration.SigningKey) == 0 {
		writeError(w, apperr.InvalidArg("identity_key and signing_key are required"))
		return
	}

	if err := h.store.RegisterKeys(r.Context(), userID, registration); err != nil {
		writeError(w, apperr.Wrap(apperr.CodeInternal, "failed to register keys", err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "keys registered"})
}

func (h *KeyHandler) GetPreKeyBundle(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}

	userID := mux.Vars(r)["user_id"]
	bundle, err := h.store.GetPreKeyBundle(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, apperr.NotFound("user has no registered keys"))
			return
		}
		writeError(w, apperr.Wrap(apperr.CodeInternal, "failed to load key bundle", err))
		return
	}

	writeJSON(w, http.StatusOK, bundle)
}

func (h *KeyHandler) ReplenishPreKeys(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var prekeys []models.OneTimePreKey
	if err := json.NewDecoder(r.Body).Decode(&prekeys); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.store.AddOneTimePreKeys(r.Context(), userID, prekeys); err != nil {
		writeError(w, apperr.Wrap(apperr.CodeInternal, "failed to add pre-keys", err))
		return
	}

	count, err := h.store.UnusedPreKeyCount(r.Context(), userID)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.CodeInternal, "failed to count pre-keys", err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int{
		"added":  len(prekeys),
		"unused": count,
	})
}
