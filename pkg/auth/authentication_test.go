package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/planweek/planweek-backend/pkg/communication"
	"github.com/planweek/planweek-backend/pkg/logger"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("could not sign test token: %v", err)
	}
	return token
}

func TestVerifyToken(t *testing.T) {
	valid := signTestToken(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	userID, err := VerifyToken(valid, testSecret)
	if err != nil {
		t.Fatalf("VerifyToken returned error: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("VerifyToken subject = %q, want \"user-1\"", userID)
	}
}

func TestVerifyTokenRejections(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "garbage token",
			token: "not.a.token",
		},
		{
			name: "wrong secret",
			token: signTestToken(t, "other-secret", jwt.MapClaims{
				"sub": "user-1",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name: "expired token",
			token: signTestToken(t, testSecret, jwt.MapClaims{
				"sub": "user-1",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			name: "no subject",
			token: signTestToken(t, testSecret, jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := VerifyToken(test.token, testSecret); err == nil {
				t.Error("VerifyToken should reject the token")
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	middleware := AuthenticationMiddleware{
		Secret:          testSecret,
		ResponseManager: &communication.ResponseManager{Logger: logger.Logger{}},
	}

	var seenUserID string
	handler := middleware.Middleware(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seenUserID = UserID(request.Context())
		writer.WriteHeader(http.StatusOK)
	}))

	valid := signTestToken(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantUserID string
	}{
		{name: "valid bearer token", authHeader: "Bearer " + valid, wantStatus: http.StatusOK, wantUserID: "user-1"},
		{name: "missing header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "not a bearer token", authHeader: "Basic dXNlcjpwdw==", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", authHeader: "Bearer not.a.token", wantStatus: http.StatusUnauthorized},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			seenUserID = ""

			request := httptest.NewRequest(http.MethodGet, "/v1/week", nil)
			if test.authHeader != "" {
				request.Header.Set("Authorization", test.authHeader)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			if recorder.Code != test.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, test.wantStatus)
			}
			if seenUserID != test.wantUserID {
				t.Errorf("handler saw user %q, want %q", seenUserID, test.wantUserID)
			}
		})
	}
}
