// Copyright (C) 2025 karan10i
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("no such user")))
	assert.Equal(t, CodeConflict, CodeOf(fmt.Errorf("outer: %w", Conflict("already friends"))))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("pq: connection refused")))
}

func TestMessageOf_FlattensInternal(t *testing.T) {
	assert.Equal(t, "no such user", MessageOf(NotFound("no such user")))
	assert.Equal(t, "internal server error", MessageOf(Wrap(CodeInternal, "vault upsert", errors.New("pq: timeout"))))
	assert.Equal(t, "internal server error", MessageOf(errors.New("raw store error")))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeInternal, "channel read", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "channel read")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{InvalidArg("empty content"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Forbidden("not friends"), http.StatusForbidden},
		{Conflict("duplicate request"), http.StatusConflict},
		{New(CodeUnauthenticated, "bad token"), http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), "err=%v", tc.err)
	}
}
