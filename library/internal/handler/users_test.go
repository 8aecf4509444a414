package handler_test

import (
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

func TestHandler_GetUser(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		caller       model.User
		target       string
		mockBehavior func(m *mocks)
		expectedCode int
		expectedMsg  string
	}{
		{
			name:   "ok. own profile",
			caller: reader,
			target: reader.ID.String(),
			mockBehavior: func(m *mocks) {
				m.users.EXPECT().GetUser(gomock.Any(), reader.ID).Return(reader, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "ok. staff reads anyone",
			caller: staff,
			target: reader.ID.String(),
			mockBehavior: func(m *mocks) {
				m.users.EXPECT().GetUser(gomock.Any(), reader.ID).Return(reader, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "err. other profile",
			caller:       reader,
			target:       admin.ID.String(),
			mockBehavior: func(m *mocks) {},
			expectedCode: http.StatusForbidden,
			expectedMsg:  "You can only view your own profile or must be staff/admin",
		},
		{
			name:         "err. bad id",
			caller:       staff,
			target:       "42",
			mockBehavior: func(m *mocks) {},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "Invalid id",
		},
		{
			name:   "err. unknown",
			caller: staff,
			target: uuid.Nil.String(),
			mockBehavior: func(m *mocks) {
				m.users.EXPECT().GetUser(gomock.Any(), uuid.Nil).Return(model.User{}, errs.ErrUserNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedMsg:  "User not found",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, m := newRouter(t)
			m.signIn(tt.caller)
			tt.mockBehavior(m)

			w := serve(e, request{method: http.MethodGet, target: "/api/users/" + tt.target, signedIn: true})
			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedMsg, gjson.Get(w.Body.String(), "message").String())
			if w.Code == http.StatusOK {
				require.Equal(t, reader.ID.String(), gjson.Get(w.Body.String(), "data.id").String())
			}
		})
	}
}

func TestHandler_UpdateUser(t *testing.T) {
	t.Parallel()
	name := "Rina S."
	tests := []struct {
		name         string
		caller       model.User
		body         string
		mockBehavior func(m *mocks)
		expectedCode int
		expectedMsg  string
	}{
		{
			name:   "ok. own name",
			caller: reader,
			body:   `{"name":"Rina S."}`,
			mockBehavior: func(m *mocks) {
				m.users.EXPECT().UpdateUser(gomock.Any(), reader.ID, model.UpdateUserRequest{Name: &name}).Return(reader, nil)
			},
			expectedCode: http.StatusOK,
			expectedMsg:  "User updated successfully",
		},
		{
			name:         "err. own role",
			caller:       reader,
			body:         `{"role":"ADMIN"}`,
			mockBehavior: func(m *mocks) {},
			expectedCode: http.StatusForbidden,
			expectedMsg:  "Only admin can change role or active status",
		},
		{
			name:         "err. staff deactivates",
			caller:       staff,
			body:         `{"isActive":false}`,
			mockBehavior: func(m *mocks) {},
			expectedCode: http.StatusForbidden,
			expectedMsg:  "Only admin can change role or active status",
		},
		{
			name:   "ok. admin changes role",
			caller: admin,
			body:   `{"role":"STAFF"}`,
			mockBehavior: func(m *mocks) {
				m.users.EXPECT().UpdateUser(gomock.Any(), reader.ID, gomock.Any()).Return(reader, nil)
			},
			expectedCode: http.StatusOK,
			expectedMsg:  "User updated successfully",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, m := newRouter(t)
			m.signIn(tt.caller)
			tt.mockBehavior(m)

			w := serve(e, request{method: http.MethodPut, target: "/api/users/" + reader.ID.String(), body: tt.body, signedIn: true})
			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedMsg, gjson.Get(w.Body.String(), "message").String())
		})
	}
}

func TestHandler_DeactivateUser_AdminOnly(t *testing.T) {
	t.Parallel()
	e, m := newRouter(t)
	m.signIn(staff)

	w := serve(e, request{method: http.MethodDelete, target: "/api/users/" + reader.ID.String(), signedIn: true})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, `{"success":false,"message":"Admin access required"}`, trimmed(w))
}

func TestHandler_Membership(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		method       string
		mockBehavior func(m *mocks)
		expectedCode int
		expectedMsg  string
	}{
		{
			name:   "ok. activated",
			method: http.MethodPut,
			mockBehavior: func(m *mocks) {
				m.users.EXPECT().ActivateMembership(gomock.Any(), reader.ID).
					Return(model.MembershipResult{Membership: model.Membership{MembershipNumber: "NRT0001"}, PeriodDays: 30}, nil)
			},
			expectedCode: http.StatusOK,
			expectedMsg:  "Membership activated for 30 days",
		},
		{
			name:   "ok. extended",
			method: http.MethodPut,
			mockBehavior: func(m *mocks) {
				m.users.EXPECT().ActivateMembership(gomock.Any(), reader.ID).
					Return(model.MembershipResult{Membership: model.Membership{MembershipNumber: "NRT0001"}, Extended: true, PeriodDays: 30}, nil)
			},
			expectedCode: http.StatusOK,
			expectedMsg:  "Membership extended by 30 days",
		},
		{
			name:   "ok. configured period",
			method: http.MethodPut,
			mockBehavior: func(m *mocks) {
				m.users.EXPECT().ActivateMembership(gomock.Any(), reader.ID).
					Return(model.MembershipResult{Membership: model.Membership{MembershipNumber: "NRT0002"}, PeriodDays: 90}, nil)
			},
			expectedCode: http.StatusOK,
			expectedMsg:  "Membership activated for 90 days",
		},
		{
			name:   "err. nothing to deactivate",
			method: http.MethodDelete,
			mockBehavior: func(m *mocks) {
				m.users.EXPECT().DeactivateMembership(gomock.Any(), reader.ID).Return(model.Membership{}, errs.ErrNoActiveMembership)
			},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "User does not have an active membership",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, m := newRouter(t)
			m.signIn(staff)
			tt.mockBehavior(m)

			w := serve(e, request{method: tt.method, target: "/api/users/" + reader.ID.String() + "/membership", signedIn: true})
			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedMsg, gjson.Get(w.Body.String(), "message").String())
		})
	}
}
