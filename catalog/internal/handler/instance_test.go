package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"locallibrary/catalog/internal/errs"
	"locallibrary/catalog/internal/handler"
	"locallibrary/catalog/internal/model"
	"locallibrary/pkg/auth"

	service_mocks "locallibrary/catalog/internal/handler/mocks"
)

const testInstanceUid = "f7cdc58f-2caf-4b15-9727-f89dcc629b27"

func newTestRouter(t *testing.T) (*echo.Echo, *service_mocks.MockCatalogService) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	svc := service_mocks.NewMockCatalogService(c)
	authSvc := service_mocks.NewMockAuthService(c)
	h := handler.New(svc, authSvc, zap.NewExample().Named("test"))
	return h.NewRouter(), svc
}

func TestHandler_RenewForm(t *testing.T) {
	t.Parallel()

	renewPath := func(uid string) string {
		return fmt.Sprintf("/catalog/bookinstances/%s/renew", uid)
	}

	t.Run("not logged in redirects to login", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestRouter(t)

		r := httptest.NewRequest(http.MethodGet, renewPath(testInstanceUid), http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusFound, w.Code)
		require.True(t, strings.HasPrefix(w.Header().Get(echo.HeaderLocation), "/accounts/login/"))
	})

	t.Run("logged in without permission", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestRouter(t)

		r := httptest.NewRequest(http.MethodGet, renewPath(testInstanceUid), http.NoBody)
		r.AddCookie(sessionCookie(t, "testuser1", auth.RoleMember))
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("form pre-filled three weeks ahead", func(t *testing.T) {
		t.Parallel()
		e, svc := newTestRouter(t)

		proposed := model.Today().AddDays(21)
		svc.EXPECT().
			RenewalForm(gomock.Any(), testInstanceUid).
			Return(model.RenewalForm{InstanceUid: testInstanceUid, RenewalDate: proposed}, nil)

		r := httptest.NewRequest(http.MethodGet, renewPath(testInstanceUid), http.NoBody)
		r.AddCookie(sessionCookie(t, "testuser2", auth.RoleLibrarian))
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var form model.RenewalForm
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &form))
		require.Equal(t, testInstanceUid, form.InstanceUid)
		require.Equal(t, proposed.Format(time.DateOnly), form.RenewalDate.Format(time.DateOnly))
	})

	t.Run("unknown instance uid", func(t *testing.T) {
		t.Parallel()
		e, svc := newTestRouter(t)

		svc.EXPECT().
			RenewalForm(gomock.Any(), "706e2b04-6c3a-4dbb-b5a9-fc934e4f22a5").
			Return(model.RenewalForm{}, errs.ErrNotFound)

		r := httptest.NewRequest(http.MethodGet, renewPath("706e2b04-6c3a-4dbb-b5a9-fc934e4f22a5"), http.NoBody)
		r.AddCookie(sessionCookie(t, "testuser2", auth.RoleLibrarian))
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_RenewInstance(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
		expectedLoc  string
	}
	type mockBehavior func(r *service_mocks.MockCatalogService)

	renewalDate := func(days int) string {
		return model.Today().AddDays(days).Format(time.DateOnly)
	}

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "valid date redirects to all-borrowed",
			body: fmt.Sprintf(`{"renewalDate":%q}`, renewalDate(14)),
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					RenewInstance(gomock.Any(), testInstanceUid, gomock.Any()).
					Return(nil)
			},
			response: response{
				expectedCode: http.StatusSeeOther,
				expectedLoc:  "/catalog/borrowed/",
			},
		},
		{
			name: "err. renewal in past",
			body: fmt.Sprintf(`{"renewalDate":%q}`, renewalDate(-7)),
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					RenewInstance(gomock.Any(), testInstanceUid, gomock.Any()).
					Return(errs.ErrRenewalInPast)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Invalid date - renewal in past"}`,
			},
		},
		{
			name: "err. renewal more than 4 weeks ahead",
			body: fmt.Sprintf(`{"renewalDate":%q}`, renewalDate(35)),
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					RenewInstance(gomock.Any(), testInstanceUid, gomock.Any()).
					Return(errs.ErrRenewalTooFarAhead)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Invalid date - renewal more than 4 weeks ahead"}`,
			},
		},
		{
			name: "err. unknown instance uid",
			body: fmt.Sprintf(`{"renewalDate":%q}`, renewalDate(14)),
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					RenewInstance(gomock.Any(), testInstanceUid, gomock.Any()).
					Return(errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
			},
		},
		{
			name:         "err. missing renewal date",
			body:         `{}`,
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)

			r := httptest.NewRequest(http.MethodPost,
				fmt.Sprintf("/catalog/bookinstances/%s/renew", testInstanceUid), strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			r.AddCookie(sessionCookie(t, "testuser2", auth.RoleLibrarian))
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
			if tt.response.expectedLoc != "" {
				require.Equal(t, tt.response.expectedLoc, w.Header().Get(echo.HeaderLocation))
			}
		})
	}
}

func TestHandler_MyBooks(t *testing.T) {
	t.Parallel()

	t.Run("redirects to login with next", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestRouter(t)

		r := httptest.NewRequest(http.MethodGet, "/catalog/mybooks/", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, "/accounts/login/?next=/catalog/mybooks/", w.Header().Get(echo.HeaderLocation))
	})

	t.Run("only own loans ordered by due date", func(t *testing.T) {
		t.Parallel()
		e, svc := newTestRouter(t)

		borrower := "testuser1"
		items := make([]model.BookInstance, 0, 10)
		for i := 0; i < 10; i++ {
			due := model.Today().AddDays(i / 2)
			items = append(items, model.BookInstance{
				InstanceUid: fmt.Sprintf("uid-%d", i),
				Title:       "Book Title",
				Imprint:     "Unlikely Imprint, 2016",
				Status:      model.StatusOnLoan,
				DueBack:     &due,
				Borrower:    &borrower,
			})
		}
		svc.EXPECT().
			ListBorrowed(gomock.Any(), borrower, 1, 10).
			Return(model.ListInstances{
				Paging: model.Paging{Page: 1, PageSize: 10, TotalElements: 15},
				Items:  items,
			}, nil)

		r := httptest.NewRequest(http.MethodGet, "/catalog/mybooks/", http.NoBody)
		r.AddCookie(sessionCookie(t, borrower, auth.RoleMember))
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var got model.ListInstances
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got.Items, 10)

		var lastDue time.Time
		for _, item := range got.Items {
			require.Equal(t, model.StatusOnLoan, item.Status)
			require.NotNil(t, item.Borrower)
			require.Equal(t, borrower, *item.Borrower)
			require.NotNil(t, item.DueBack)
			if !lastDue.IsZero() {
				require.False(t, item.DueBack.Before(lastDue))
			}
			lastDue = item.DueBack.Time
		}
	})
}

func TestHandler_BorrowInstance(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
	}
	type mockBehavior func(r *service_mocks.MockCatalogService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				due := model.Today().AddDays(21)
				borrower := "testuser1"
				r.EXPECT().
					BorrowInstance(gomock.Any(), testInstanceUid, "testuser1").
					Return(model.BookInstance{
						InstanceUid: testInstanceUid,
						Status:      model.StatusOnLoan,
						DueBack:     &due,
						Borrower:    &borrower,
					}, nil)
			},
			response: response{expectedCode: http.StatusOK},
		},
		{
			name: "err. unknown instance uid",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					BorrowInstance(gomock.Any(), testInstanceUid, "testuser1").
					Return(model.BookInstance{}, errs.ErrNotFound)
			},
			response: response{expectedCode: http.StatusNotFound},
		},
		{
			name: "err. copy not available",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					BorrowInstance(gomock.Any(), testInstanceUid, "testuser1").
					Return(model.BookInstance{}, errs.ErrNotAvailable)
			},
			response: response{expectedCode: http.StatusConflict},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)

			r := httptest.NewRequest(http.MethodPost,
				fmt.Sprintf("/catalog/bookinstances/%s/borrow", testInstanceUid), http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			r.AddCookie(sessionCookie(t, "testuser1", auth.RoleMember))
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
		})
	}
}

func TestHandler_GetInstance(t *testing.T) {
	t.Parallel()

	t.Run("unknown uid is 404", func(t *testing.T) {
		t.Parallel()
		e, svc := newTestRouter(t)

		svc.EXPECT().
			GetInstance(gomock.Any(), testInstanceUid).
			Return(model.BookInstance{}, errs.ErrNotFound)

		r := httptest.NewRequest(http.MethodGet, "/catalog/bookinstances/"+testInstanceUid, http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("available copy has no borrower", func(t *testing.T) {
		t.Parallel()
		e, svc := newTestRouter(t)

		svc.EXPECT().
			GetInstance(gomock.Any(), testInstanceUid).
			Return(model.BookInstance{
				InstanceUid: testInstanceUid,
				Title:       "Book Title",
				Imprint:     "Unlikely Imprint, 2016",
				Status:      model.StatusAvailable,
			}, nil)

		r := httptest.NewRequest(http.MethodGet, "/catalog/bookinstances/"+testInstanceUid, http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var got model.BookInstance
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Nil(t, got.Borrower)
		require.Nil(t, got.DueBack)
	})
}
