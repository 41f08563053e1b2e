package serializer

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/framekeep/framekeep/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "not found",
			err:        fmt.Errorf("asset abc: %w", apperr.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "forbidden",
			err:        fmt.Errorf("asset.delete on 3 asset(s): %w", apperr.ErrForbidden),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "invalid request",
			err:        apperr.ErrInvalidRequest,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unclassified errors are internal",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, res := FromError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantStatus, res.Code)
		})
	}
}
