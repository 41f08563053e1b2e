package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/framekeep/framekeep/internal/modules/model"
	"github.com/framekeep/framekeep/internal/modules/service"
	"github.com/framekeep/framekeep/internal/pkg/apperr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockStackService is a mock implementation of StackService
type MockStackService struct {
	mock.Mock
}

func (m *MockStackService) ApplyStackMutation(ctx context.Context, userID uuid.UUID, in service.StackMutationInput) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func setupStackRouter(h *StackHandler, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/asset/stack", func(c *gin.Context) {
		c.Set("user", &model.User{ID: userID})
		h.UpdateStack(c)
	})
	return r
}

func TestStackHandler_UpdateStack(t *testing.T) {
	userID := uuid.New()
	assetID := uuid.New()
	parentID := uuid.New()

	tests := []struct {
		name           string
		body           string
		setup          func(*MockStackService)
		expectedStatus int
	}{
		{
			name: "successful stack mutation",
			body: `{"ids": ["` + assetID.String() + `"], "stack_parent_id": "` + parentID.String() + `"}`,
			setup: func(svc *MockStackService) {
				svc.On("ApplyStackMutation", mock.Anything, userID, mock.MatchedBy(func(in service.StackMutationInput) bool {
					return len(in.AssetIDs) == 1 &&
						in.AssetIDs[0] == assetID &&
						!in.RemoveParent &&
						in.StackParentID != nil && *in.StackParentID == parentID
				})).Return([]uuid.UUID{parentID, assetID}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "remove parent",
			body: `{"ids": ["` + assetID.String() + `"], "remove_parent": true}`,
			setup: func(svc *MockStackService) {
				svc.On("ApplyStackMutation", mock.Anything, userID, mock.MatchedBy(func(in service.StackMutationInput) bool {
					return in.RemoveParent && in.StackParentID == nil
				})).Return([]uuid.UUID{assetID}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing ids",
			body:           `{"remove_parent": true}`,
			setup:          func(*MockStackService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed asset id",
			body:           `{"ids": ["not-a-uuid"], "remove_parent": true}`,
			setup:          func(*MockStackService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed parent id",
			body:           `{"ids": ["` + assetID.String() + `"], "stack_parent_id": "nope"}`,
			setup:          func(*MockStackService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "conflicting selectors rejected by the service",
			body: `{"ids": ["` + assetID.String() + `"], "remove_parent": true, "stack_parent_id": "` + parentID.String() + `"}`,
			setup: func(svc *MockStackService) {
				svc.On("ApplyStackMutation", mock.Anything, userID, mock.Anything).
					Return(nil, apperr.ErrInvalidRequest)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "forbidden",
			body: `{"ids": ["` + assetID.String() + `"], "remove_parent": true}`,
			setup: func(svc *MockStackService) {
				svc.On("ApplyStackMutation", mock.Anything, userID, mock.Anything).
					Return(nil, apperr.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockStackService{}
			tt.setup(mockService)
			handler := NewStackHandler(mockService)

			router := setupStackRouter(handler, userID)

			req := httptest.NewRequest("PUT", "/asset/stack", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var response map[string]interface{}
				err := sonic.Unmarshal(w.Body.Bytes(), &response)
				assert.NoError(t, err)
				assert.NotNil(t, response["data"])
			}

			mockService.AssertExpectations(t)
		})
	}
}
