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

	"github.com/karan10i/scaling-sniffle/backend/chat"
)

type MessageHandler struct {
	coordinator *chat.Coordinator
}

func NewMessageHandler(coordinator *chat.Coordinator) *MessageHandler {
	return &MessageHandler{coordinator: coordinator}
}

// Send appends an ephemeral message; nothing becomes durable here.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req struct {
		ReceiverID string `json:"receiver_id"`
		Content    string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.coordinator.Send(r.Context(), userID, req.ReceiverID, req.Content); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "sent",
		"message": map[string]string{
			"sender_id":   userID,
			"receiver_id": req.ReceiverID,
			"content":     req.Content,
		},
	})
}

// GetConversation returns the merged vault + ephemeral view with the other
// user, tagged with provenance.
func (h *MessageHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	otherID := r.URL.Query().Get("user_id")
	conv, err := h.coordinator.FetchConversation(r.Context(), userID, otherID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": conv.Messages,
		"count":    len(conv.Messages),
		"degraded": conv.Degraded,
	})
}

// Cleanup purges incoming ephemeral traffic from a friend, called when the
// client navigates away from that conversation.
func (h *MessageHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req struct {
		FriendID string `json:"friend_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.coordinator.Cleanup(r.Context(), userID, req.FriendID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleaned"})
}
