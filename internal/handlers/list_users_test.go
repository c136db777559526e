package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/user-registry/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	deleted := models.UserStatusDeleted
	page := &models.UserPage{
		Items:   []models.User{{ID: 11, Username: "k", Email: "k@x.com", Status: models.UserStatusActive}},
		Total:   25,
		Limit:   10,
		Offset:  10,
		HasMore: true,
		Pages:   3,
	}

	tests := []struct {
		name         string
		query        string
		mockSetup    func(m *MockUserLister)
		expectedCode int
		field        string
	}{
		{
			name:  "defaults",
			query: "",
			mockSetup: func(m *MockUserLister) {
				m.EXPECT().ListUsers(gomock.Any(), models.ListUsersInput{}).Return(page, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:  "paging and filter",
			query: "?limit=10&offset=10&status_filter=deleted",
			mockSetup: func(m *MockUserLister) {
				m.EXPECT().
					ListUsers(gomock.Any(), models.ListUsersInput{Limit: 10, Offset: 10, StatusFilter: &deleted}).
					Return(page, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "non numeric limit",
			query:        "?limit=ten",
			mockSetup:    func(m *MockUserLister) {},
			expectedCode: http.StatusBadRequest,
			field:        "limit",
		},
		{
			name:         "non numeric offset",
			query:        "?offset=-x",
			mockSetup:    func(m *MockUserLister) {},
			expectedCode: http.StatusBadRequest,
			field:        "offset",
		},
		{
			name:  "unknown status",
			query: "?status_filter=archived",
			mockSetup: func(m *MockUserLister) {
				m.EXPECT().
					ListUsers(gomock.Any(), gomock.Any()).
					Return(nil, models.NewValidationError("status_filter", "must be one of active, inactive, deleted"))
			},
			expectedCode: http.StatusBadRequest,
			field:        "status_filter",
		},
		{
			name:  "store unavailable",
			query: "",
			mockSetup: func(m *MockUserLister) {
				m.EXPECT().ListUsers(gomock.Any(), gomock.Any()).Return(nil, models.ErrStoreUnavailable)
			},
			expectedCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockUserLister(ctrl)
			tt.mockSetup(mockSvc)

			req := httptest.NewRequest(http.MethodGet, "/users"+tt.query, nil)
			w := httptest.NewRecorder()

			NewListUsersHandler(mockSvc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)

			if tt.expectedCode == http.StatusOK {
				var got models.UserPage
				require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
				assert.EqualValues(t, 25, got.Total)
				assert.True(t, got.HasMore)
				assert.Len(t, got.Items, 1)
				return
			}

			if tt.field != "" {
				var resp ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Contains(t, resp.Fields, tt.field)
			}
		})
	}
}
