// Copyright (C) 2025 karan10i
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/karan10i/scaling-sniffle/backend/apperr"
	"github.com/karan10i/scaling-sniffle/backend/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP. Internal causes are logged
// here and flattened to a generic message for the caller.
func writeError(w http.ResponseWriter, err error) {
	if apperr.CodeOf(err) == apperr.CodeInternal {
		slog.Error("request failed", "err", err)
	}
	writeJSON(w, apperr.HTTPStatus(err), map[string]interface{}{
		"error": map[string]string{
			"code":    string(apperr.CodeOf(err)),
			"message": apperr.MessageOf(err),
		},
	})
}

// callerID pulls the verified identity injected by the auth middleware.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}
