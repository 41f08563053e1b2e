package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/framekeep/framekeep/internal/modules/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockTrashService is a mock implementation of TrashService
type MockTrashService struct {
	mock.Mock
}

func (m *MockTrashService) RestoreAll(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockTrashService) EmptyAll(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func setupTrashRouter(h *TrashHandler, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	withUser := func(fn gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set("user", &model.User{ID: userID})
			fn(c)
		}
	}
	r.POST("/trash/restore", withUser(h.RestoreTrash))
	r.POST("/trash/empty", withUser(h.EmptyTrash))
	return r
}

func TestTrashHandler_RestoreTrash(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		setup          func(*MockTrashService)
		expectedStatus int
		expectedCount  float64
	}{
		{
			name: "successful restore",
			setup: func(svc *MockTrashService) {
				svc.On("RestoreAll", mock.Anything, userID).Return(42, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  42,
		},
		{
			name: "service error",
			setup: func(svc *MockTrashService) {
				svc.On("RestoreAll", mock.Anything, userID).Return(0, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockTrashService{}
			tt.setup(mockService)
			handler := NewTrashHandler(mockService)

			router := setupTrashRouter(handler, userID)

			req := httptest.NewRequest("POST", "/trash/restore", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var response map[string]interface{}
				err := sonic.Unmarshal(w.Body.Bytes(), &response)
				assert.NoError(t, err)
				data := response["data"].(map[string]interface{})
				assert.Equal(t, tt.expectedCount, data["count"])
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestTrashHandler_EmptyTrash(t *testing.T) {
	userID := uuid.New()

	mockService := &MockTrashService{}
	mockService.On("EmptyAll", mock.Anything, userID).Return(7, nil)
	handler := NewTrashHandler(mockService)

	router := setupTrashRouter(handler, userID)

	req := httptest.NewRequest("POST", "/trash/empty", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := sonic.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["count"])

	mockService.AssertExpectations(t)
}
