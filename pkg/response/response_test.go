package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/segyhp/pledge-callcenter/pkg/errors"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"invalid schedule", customError.InvalidSchedule("payment count must be at least 1"), http.StatusUnprocessableEntity, customError.ErrCodeInvalidSchedule},
		{"no template body", customError.NoTemplateBody("welcome"), http.StatusUnprocessableEntity, customError.ErrCodeNoTemplateBody},
		{"donor not found", customError.WrapDonorNotFound(7), http.StatusNotFound, customError.ErrCodeDonorNotFound},
		{"active plan", customError.WrapActivePlanExists(7), http.StatusConflict, customError.ErrCodeActivePlanExists},
		{"plan not active", customError.WrapPlanNotActive("p-1", "cancelled"), http.StatusConflict, customError.ErrCodePlanNotActive},
		{"queue entry conflict", customError.WrapQueueEntryConflict(9), http.StatusConflict, customError.ErrCodeQueueEntryConflict},
		{"validation", customError.WrapValidation(errors.New("bad")), http.StatusBadRequest, customError.ErrCodeValidation},
		{"database", customError.WrapDatabaseError(errors.New("down")), http.StatusInternalServerError, customError.ErrCodeDatabaseError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			FromError(w, "request failed", tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.expectedCode, body.Code)
			assert.Equal(t, "request failed", body.Message)
		})
	}
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()
	Created(w, map[string]string{"id": "42"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "42", body.Data["id"])
}
