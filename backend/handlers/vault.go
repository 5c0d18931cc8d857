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
	"net/http"

	"github.com/gorilla/mux"

	"github.com/karan10i/scaling-sniffle/backend/chat"
)

type VaultHandler struct {
	coordinator *chat.Coordinator
}

func NewVaultHandler(coordinator *chat.Coordinator) *VaultHandler {
	return &VaultHandler{coordinator: coordinator}
}

// Save promotes an ephemeral message to the vault. Either participant may
// call it; is_sender tells the coordinator which side is acting.
func (h *VaultHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req struct {
		OtherUserID string `json:"other_user_id"`
		Content     string `json:"content"`
		IsSender    bool   `json:"is_sender"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.coordinator.SaveToVault(r.Context(), userID, req.OtherUserID, req.Content, req.IsSender)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status":     "saved",
		"message_id": msg.ID,
	})
}

// List returns the caller's vaulted messages, newest first.
func (h *VaultHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	msgs, err := h.coordinator.ListVault(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": msgs,
		"count":    len(msgs),
	})
}

// Delete clears the caller's save flag; the row disappears once neither
// participant keeps it.
func (h *VaultHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	messageID := mux.Vars(r)["message_id"]
	if err := h.coordinator.UnsaveFromVault(r.Context(), userID, messageID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
