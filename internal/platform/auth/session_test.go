package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(42, []string{RoleDoctor}, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != RoleDoctor {
		t.Errorf("expected roles [doctor], got %v", claims.Roles)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := IssueToken(42, nil, testSecret, time.Hour)
	if _, err := ParseToken(token, []byte("another-secret-another-secret-xx")); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, _ := IssueToken(42, nil, testSecret, -time.Minute)
	if _, err := ParseToken(token, testSecret); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestSessionMiddleware_BearerToken(t *testing.T) {
	e := echo.New()
	token, _ := IssueToken(7, []string{RoleDoctor}, testSecret, time.Hour)

	var gotID int64
	var gotRoles []string
	handler := SessionMiddleware(testSecret, nil)(func(c echo.Context) error {
		gotID = UserIDFromContext(c.Request().Context())
		gotRoles = RolesFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != 7 {
		t.Errorf("expected user id 7, got %d", gotID)
	}
	if len(gotRoles) != 1 || gotRoles[0] != RoleDoctor {
		t.Errorf("expected [doctor], got %v", gotRoles)
	}
}

func TestSessionMiddleware_Cookie(t *testing.T) {
	e := echo.New()
	token, _ := IssueToken(7, []string{RolePatient}, testSecret, time.Hour)

	handler := SessionMiddleware(testSecret, nil)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/historial/P0000000007", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSessionMiddleware_MissingToken(t *testing.T) {
	e := echo.New()
	handler := SessionMiddleware(testSecret, nil)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler(c)
	if err == nil {
		t.Fatal("expected error for missing token")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestSessionMiddleware_Skipper(t *testing.T) {
	e := echo.New()
	handler := SessionMiddleware(testSecret, PublicPathSkipper())(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler(c); err != nil {
		t.Fatalf("expected login path to skip auth, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := RequireRole(RoleDoctor)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// doctor passes
	req := httptest.NewRequest(http.MethodPost, "/actualizar-historial", nil)
	req = req.WithContext(WithUser(context.Background(), 1, []string{RoleDoctor}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := handler(c); err != nil {
		t.Fatalf("expected doctor to pass, got %v", err)
	}

	// patient is rejected
	req = httptest.NewRequest(http.MethodPost, "/actualizar-historial", nil)
	req = req.WithContext(WithUser(context.Background(), 2, []string{RolePatient}))
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403 for patient role, got %v", err)
	}
}

func TestCanReadPatient(t *testing.T) {
	doctor := WithUser(context.Background(), 1, []string{RoleDoctor})
	patient := WithUser(context.Background(), 5, []string{RolePatient})

	if !CanReadPatient(doctor, 99) {
		t.Error("doctor should read any patient record")
	}
	if !CanReadPatient(patient, 5) {
		t.Error("patient should read its own record")
	}
	if CanReadPatient(patient, 6) {
		t.Error("patient must not read another record")
	}
}
