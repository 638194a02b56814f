package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"locallibrary/catalog/internal/handler"
	"locallibrary/catalog/internal/model"
	"locallibrary/pkg/auth"
	"locallibrary/pkg/validate"

	service_mocks "locallibrary/catalog/internal/handler/mocks"
)

func makeAuthors(n int) []model.Author {
	authors := make([]model.Author, 0, n)
	for i := 0; i < n; i++ {
		authors = append(authors, model.Author{
			ID:        i + 1,
			FirstName: fmt.Sprintf("Christian %d", i),
			LastName:  fmt.Sprintf("Surname %d", i),
		})
	}
	return authors
}

func sessionCookie(t *testing.T, username, role string) *http.Cookie {
	t.Helper()
	token, _, err := auth.NewSessionToken(username, role, "", time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.SessionCookieName, Value: token}
}

func TestHandler_ListAuthors(t *testing.T) {
	t.Parallel()
	type input struct {
		pageQuery string
	}
	type response struct {
		expectedCode  int
		expectedItems int
		expectedTotal int
	}
	type mockBehavior func(r *service_mocks.MockCatalogService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
		expectedBody string
		wantErr      bool
	}{
		{
			name: "first page holds ten of thirteen",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					ListAuthors(context.Background(), 1, 10).
					Return(model.ListAuthors{
						Paging: model.Paging{Page: 1, PageSize: 10, TotalElements: 13},
						Items:  makeAuthors(10),
					}, nil)
			},
			input: input{pageQuery: ""},
			response: response{
				expectedCode:  http.StatusOK,
				expectedItems: 10,
				expectedTotal: 13,
			},
		},
		{
			name: "second page holds the remaining three",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					ListAuthors(context.Background(), 2, 10).
					Return(model.ListAuthors{
						Paging: model.Paging{Page: 2, PageSize: 10, TotalElements: 13},
						Items:  makeAuthors(3),
					}, nil)
			},
			input: input{pageQuery: "?page=2"},
			response: response{
				expectedCode:  http.StatusOK,
				expectedItems: 3,
				expectedTotal: 13,
			},
		},
		{
			name:         "err. page invalid",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			input:        input{pageQuery: "?page=abc"},
			response:     response{expectedCode: http.StatusBadRequest},
			expectedBody: `{"message":"page is invalid"}`,
			wantErr:      true,
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					ListAuthors(context.Background(), 1, 10).
					Return(model.ListAuthors{}, errors.New("db internal"))
			},
			input:        input{pageQuery: ""},
			response:     response{expectedCode: http.StatusInternalServerError},
			expectedBody: `{"message":"db internal"}`,
			wantErr:      true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockCatalogService(c)
			authSvc := service_mocks.NewMockAuthService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, authSvc, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.GET("/catalog/authors/", h.ListAuthors)

			r := httptest.NewRequest(http.MethodGet, "/catalog/authors/"+tt.input.pageQuery, http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.wantErr {
				require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
				return
			}
			var got model.ListAuthors
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			require.Len(t, got.Items, tt.response.expectedItems)
			require.Equal(t, tt.response.expectedTotal, got.TotalElements)
		})
	}
}

func TestHandler_AuthorCreateForm_PermissionGate(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name         string
		role         string
		mockBehavior func(r *service_mocks.MockCatalogService)
		expectedCode int
		checkBody    func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:         "not logged in redirects to login with next",
			role:         "",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			expectedCode: http.StatusFound,
			checkBody: func(t *testing.T, w *httptest.ResponseRecorder) {
				require.Equal(t, "/accounts/login/?next=/catalog/authors/create/", w.Header().Get(echo.HeaderLocation))
			},
		},
		{
			name:         "logged in without permission",
			role:         auth.RoleMember,
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			expectedCode: http.StatusForbidden,
		},
		{
			name: "librarian sees form with default death date",
			role: auth.RoleLibrarian,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().AuthorForm().Return(model.AuthorForm{
					DateOfDeath: model.NewDate(time.Date(2016, time.October, 12, 0, 0, 0, 0, time.UTC)),
				})
			},
			expectedCode: http.StatusOK,
			checkBody: func(t *testing.T, w *httptest.ResponseRecorder) {
				require.JSONEq(t, `{"dateOfDeath":"2016-10-12"}`, w.Body.String())
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockCatalogService(c)
			authSvc := service_mocks.NewMockAuthService(c)
			h := handler.New(svc, authSvc, zap.NewExample().Named("test"))
			e := h.NewRouter()

			r := httptest.NewRequest(http.MethodGet, "/catalog/authors/create/", http.NoBody)
			if tt.role != "" {
				r.AddCookie(sessionCookie(t, "testuser1", tt.role))
			}
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			if tt.checkBody != nil {
				tt.checkBody(t, w)
			}
		})
	}
}

func TestHandler_CreateAuthor(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name         string
		body         string
		role         string
		mockBehavior func(r *service_mocks.MockCatalogService)
		expectedCode int
		expectedLoc  string
	}{
		{
			name: "created with location header",
			body: `{"firstName":"Michael","lastName":"Walters","dateOfBirth":"1950-02-04"}`,
			role: auth.RoleLibrarian,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					CreateAuthor(gomock.Any(), gomock.Any()).
					Return(model.Author{ID: 5, FirstName: "Michael", LastName: "Walters"}, nil)
			},
			expectedCode: http.StatusCreated,
			expectedLoc:  "/catalog/authors/5",
		},
		{
			name:         "missing last name",
			body:         `{"firstName":"Michael"}`,
			role:         auth.RoleLibrarian,
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "member is forbidden",
			body:         `{"firstName":"Michael","lastName":"Walters"}`,
			role:         auth.RoleMember,
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			expectedCode: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockCatalogService(c)
			authSvc := service_mocks.NewMockAuthService(c)
			h := handler.New(svc, authSvc, zap.NewExample().Named("test"))
			e := h.NewRouter()

			r := httptest.NewRequest(http.MethodPost, "/catalog/authors/", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			r.AddCookie(sessionCookie(t, "testuser2", tt.role))
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedLoc != "" {
				require.Equal(t, tt.expectedLoc, w.Header().Get(echo.HeaderLocation))
			}
		})
	}
}
