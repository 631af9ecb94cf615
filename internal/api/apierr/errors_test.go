package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gamematch/internal/model"
)

func TestWriteErrorMapsKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", model.ErrPlayerNotFound, http.StatusNotFound, CodeNotFound, "player not found"},
		{"conflict", model.ErrMatchFull, http.StatusConflict, CodeConflict, "match is full (max 4 players)"},
		{"validation", model.Validationf("missing scores for players: %s", "b"), http.StatusBadRequest, CodeValidation, "missing scores for players: b"},
		{"wrapped", fmt.Errorf("joining: %w", model.ErrAlreadyInMatch), http.StatusConflict, CodeConflict, "player is already in a match"},
		{"invalid request", NewInvalidRequestError("invalid request body"), http.StatusBadRequest, CodeInvalidRequest, "invalid request body"},
		{"internal", errors.New("dial tcp 10.0.0.1:5432: connection refused"), http.StatusInternalServerError, CodeInternalError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.status, StatusOf(tt.err))
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}
}
