// Copyright (C) 2025 karan10i
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package handlers

import (
	"net/http"

	"github.com/karan10i/scaling-sniffle/backend/apperr"
	"github.com/karan10i/scaling-sniffle/backend/storage"
)

type UserHandler struct {
	users storage.UserStore
}

func NewUserHandler(users storage.UserStore) *UserHandler {
	return &UserHandler{users: users}
}

// Search resolves a human-entered query into participant identities.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	if len(query) < 2 {
		writeError(w, apperr.InvalidArg("query must be at least 2 characters"))
		return
	}

	results, err := h.users.SearchProfiles(r.Context(), query, userID)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.CodeInternal, "failed to search users", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}
