package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/esport-arena/services"
	"github.com/Dosada05/esport-arena/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{services.ErrTournamentNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", services.ErrMatchNotFound), http.StatusNotFound},
		{services.ErrUserNotFound, http.StatusNotFound},
		{services.ErrTournamentFull, http.StatusConflict},
		{services.ErrMatchLocked, http.StatusConflict},
		{services.ErrVetoMapAlreadyUsed, http.StatusConflict},
		{services.ErrMessageTooLong, http.StatusBadRequest},
		{services.ErrScoreTie, http.StatusBadRequest},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrCaptainActionForbidden, http.StatusForbidden},
		{services.ErrRegistrationNotOpen, http.StatusForbidden},
		{storage.ErrUnsupportedContentType, http.StatusUnsupportedMediaType},
		{storage.ErrUploadsDisabled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestMapServiceErrorHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: connection refused"))
	assert.NotContains(t, rec.Body.String(), "pq:")
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"name":"arena"}`, ""},
		{"empty", ``, "body must not be empty"},
		{"malformed", `{"name":`, "badly-formed JSON"},
		{"unknown field", `{"nick":"x"}`, "unknown key"},
		{"wrong type", `{"name":1}`, "incorrect JSON type"},
		{"two values", `{"name":"a"}{"name":"b"}`, "single JSON value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst payload
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := readJSON(httptest.NewRecorder(), r, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "arena", dst.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeAndValidate(t *testing.T) {
	var input services.UpdateScoreInput
	rec := httptest.NewRecorder()
	ok := decodeAndValidate(rec, httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"score1":-2,"score2":1}`)), &input)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "score1")

	rec = httptest.NewRecorder()
	ok = decodeAndValidate(rec, httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"score1":2,"score2":1,"complete":true}`)), &input)
	assert.True(t, ok)
	assert.True(t, input.Complete)
}

func TestGetIDFromURL(t *testing.T) {
	id := uuid.New()
	withParam := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("matchID", value)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	got, err := getIDFromURL(withParam(id.String()), "matchID")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = getIDFromURL(withParam("42"), "matchID")
	assert.Error(t, err)

	_, err = getIDFromURL(withParam(""), "matchID")
	assert.Error(t, err)
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=25&offset=-1&bad=x", nil)

	v, err := queryInt(r, "limit", 1)
	require.NoError(t, err)
	assert.Equal(t, 25, v)

	v, err = queryInt(r, "missing", 1)
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = queryInt(r, "offset", 0)
	assert.Error(t, err)
	_, err = queryInt(r, "bad", 0)
	assert.Error(t, err)
}
