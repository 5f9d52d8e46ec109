package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"roboquest_backend/pkg/kvstore"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err     error
		status  int
		message string
	}{
		{ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials: unauthenticated"},
		{ErrForbidden, http.StatusForbidden, "Admin access required"},
		{ErrCourseNotFound, http.StatusNotFound, "course not found"},
		{fmt.Errorf("%w: title is required", ErrValidation), http.StatusBadRequest, "validation failed: title is required"},
		{ErrInvalidFileType, http.StatusBadRequest, "invalid file type: validation failed"},
		{ErrEmailRegistered, http.StatusConflict, "email already registered"},
		{fmt.Errorf("get: %w", kvstore.ErrUnavailable), http.StatusServiceUnavailable, "Service temporarily unavailable"},
		{kvstore.ErrConflict, http.StatusServiceUnavailable, "Service temporarily unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.status, resp.Code)
			assert.Equal(t, tc.message, resp.Message)
		})
	}
}

func TestNotFoundHierarchy(t *testing.T) {
	for _, err := range []error{ErrContentNotFound, ErrTutorialNotFound, ErrCourseNotFound, ErrModuleNotFound, ErrProjectNotFound} {
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.NotErrorIs(t, ErrInvalidCredentials, ErrNotFound)
}
