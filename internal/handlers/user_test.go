package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/user-registry/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockUserGetter(ctrl)
	r := chi.NewRouter()
	r.Get("/users/{id}", NewGetUserHandler(mockSvc))

	mockSvc.EXPECT().GetUser(gomock.Any(), int64(7)).
		Return(&models.User{ID: 7, Status: models.UserStatusDeleted}, nil)
	mockSvc.EXPECT().GetUser(gomock.Any(), int64(8)).
		Return(nil, models.ErrUserNotFound)

	tests := []struct {
		name         string
		path         string
		expectedCode int
	}{
		{"deleted user is returned", "/users/7", http.StatusOK},
		{"unknown user", "/users/8", http.StatusNotFound},
		{"non numeric id", "/users/abc", http.StatusBadRequest},
		{"zero id", "/users/0", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/users/7", nil)
	mockSvc.EXPECT().GetUser(gomock.Any(), int64(7)).
		Return(&models.User{ID: 7, Status: models.UserStatusDeleted}, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var got models.User
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, models.UserStatusDeleted, got.Status)
}

func TestUpdateUserHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	name := "jane"
	inactive := models.UserStatusInactive

	tests := []struct {
		name         string
		method       string
		path         string
		body         string
		mockSetup    func(m *MockUserUpdater)
		expectedCode int
		expectedErr  string
	}{
		{
			name:   "put",
			method: http.MethodPut,
			path:   "/users/3",
			body:   `{"username":"jane","status":"inactive"}`,
			mockSetup: func(m *MockUserUpdater) {
				m.EXPECT().
					UpdateUser(gomock.Any(), int64(3), models.UserUpdate{Username: &name, Status: &inactive}).
					Return(&models.User{ID: 3, Username: "jane", Status: inactive}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "patch with user data",
			method: http.MethodPatch,
			path:   "/users/3",
			body:   `{"user_data":{"k":"v"}}`,
			mockSetup: func(m *MockUserUpdater) {
				m.EXPECT().
					UpdateUser(gomock.Any(), int64(3), models.UserUpdate{UserData: models.UserData(`{"k":"v"}`)}).
					Return(&models.User{ID: 3}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "email taken",
			method: http.MethodPut,
			path:   "/users/3",
			body:   `{"email":"taken@x.com"}`,
			mockSetup: func(m *MockUserUpdater) {
				m.EXPECT().UpdateUser(gomock.Any(), int64(3), gomock.Any()).Return(nil, models.ErrDuplicateEmail)
			},
			expectedCode: http.StatusConflict,
			expectedErr:  "Email already registered",
		},
		{
			name:   "deleted user",
			method: http.MethodPut,
			path:   "/users/3",
			body:   `{"username":"x"}`,
			mockSetup: func(m *MockUserUpdater) {
				m.EXPECT().UpdateUser(gomock.Any(), int64(3), gomock.Any()).Return(nil, models.ErrUserDeleted)
			},
			expectedCode: http.StatusConflict,
			expectedErr:  "User is deleted",
		},
		{
			name:   "unknown user",
			method: http.MethodPut,
			path:   "/users/99",
			body:   `{"username":"x"}`,
			mockSetup: func(m *MockUserUpdater) {
				m.EXPECT().UpdateUser(gomock.Any(), int64(99), gomock.Any()).Return(nil, models.ErrUserNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedErr:  "User not found",
		},
		{
			name:         "invalid json",
			method:       http.MethodPut,
			path:         "/users/3",
			body:         `[`,
			mockSetup:    func(m *MockUserUpdater) {},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Validation failed",
		},
		{
			name:         "body too large",
			method:       http.MethodPatch,
			path:         "/users/3",
			body:         `{"username":"` + strings.Repeat("j", maxBodyBytes+1) + `"}`,
			mockSetup:    func(m *MockUserUpdater) {},
			expectedCode: http.StatusRequestEntityTooLarge,
			expectedErr:  "Request body too large",
		},
		{
			name:         "invalid id",
			method:       http.MethodPatch,
			path:         "/users/-1",
			body:         `{"username":"x"}`,
			mockSetup:    func(m *MockUserUpdater) {},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockUserUpdater(ctrl)
			tt.mockSetup(mockSvc)

			r := chi.NewRouter()
			r.Put("/users/{id}", NewUpdateUserHandler(mockSvc))
			r.Patch("/users/{id}", NewUpdateUserHandler(mockSvc))

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedErr != "" {
				var resp ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tt.expectedErr, resp.Error)
			}
		})
	}
}

func TestDeleteUserHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockUserDeleter(ctrl)
	r := chi.NewRouter()
	r.Delete("/users/{id}", NewDeleteUserHandler(mockSvc))

	mockSvc.EXPECT().DeleteUser(gomock.Any(), int64(5)).
		Return(&models.User{ID: 5, Status: models.UserStatusDeleted}, nil).
		Times(2)
	mockSvc.EXPECT().DeleteUser(gomock.Any(), int64(6)).
		Return(nil, models.ErrUserNotFound)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/5", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var got models.User
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, models.UserStatusDeleted, got.Status)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/6", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
