package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/quickorder/storefront/internal/core/domain"
)

type stubAuthenticator struct {
	token string
	err   error
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.Session, *domain.User, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	if token != s.token {
		return nil, nil, domain.ErrUnauthenticated
	}
	return &domain.Session{ID: "sess-1"}, &domain.User{ID: "u-1", Role: domain.RoleSeller, ManagedStoreID: "teja-shop"}, nil
}

func runAuth(t *testing.T, mw echo.MiddlewareFunc, req *http.Request, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")

	called := false
	rec := runAuth(t, Auth(stubAuthenticator{token: "good"}), req, func(c echo.Context) error {
		called = true
		user := UserFrom(c)
		if user == nil || user.ManagedStoreID != "teja-shop" {
			t.Fatalf("user not set: %+v", user)
		}
		if s := SessionFrom(c); s == nil || s.ID != "sess-1" {
			t.Fatalf("session not set: %+v", s)
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?access_token=good", nil)

	rec := runAuth(t, Auth(stubAuthenticator{token: "good"}), req, func(c echo.Context) error {
		if UserFrom(c) == nil {
			t.Fatalf("user not set")
		}
		return c.NoContent(http.StatusOK)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Token good",
		"bad token":      "Bearer not-a-token",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := runAuth(t, Auth(stubAuthenticator{token: "good"}), req, func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_StoreFailureIsNotUnauthorized(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")

	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	boom := &domain.PersistenceError{Op: "load session", Err: errors.New("redis down")}
	err := Auth(stubAuthenticator{err: boom})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})(c)

	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected persistence error to propagate, got %v", err)
	}
}

func TestOptionalAuth_AnonymousPassesThrough(t *testing.T) {
	for _, header := range []string{"", "Bearer expired"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		called := false
		rec := runAuth(t, OptionalAuth(stubAuthenticator{token: "good"}), req, func(c echo.Context) error {
			called = true
			if UserFrom(c) != nil {
				t.Fatalf("expected anonymous request")
			}
			return c.NoContent(http.StatusOK)
		})
		if !called || rec.Code != http.StatusOK {
			t.Fatalf("header %q: expected pass-through, got %d", header, rec.Code)
		}
	}
}
