package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/planweek/planweek-backend/pkg/communication"
)

// ErrUnauthenticated is returned when no valid identity is attached to a request
var ErrUnauthenticated = errors.New("no valid identity")

type key string

// KeyUserID is the request context key carrying the authenticated user id
const KeyUserID key = "userID"

// AuthenticationMiddleware checks if the user login token is valid and responds with an error if it's not the case
type AuthenticationMiddleware struct {
	Secret          string
	ResponseManager *communication.ResponseManager
}

// Middleware gets called when a request needs to be authenticated
func (m *AuthenticationMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, r *http.Request) {
		extractedToken, err := extractTokenStringFromHeader(r)
		if err != nil {
			m.ResponseManager.RespondWithError(writer, http.StatusUnauthorized, "No authorization", err)
			return
		}

		userID, err := VerifyToken(extractedToken, m.Secret)
		if err != nil {
			m.ResponseManager.RespondWithError(writer, http.StatusUnauthorized, "Token invalid", err)
			return
		}

		newContext := context.WithValue(r.Context(), KeyUserID, userID)
		next.ServeHTTP(writer, r.WithContext(newContext))
	})
}

// VerifyToken validates an HS256 token and returns its subject
func VerifyToken(tokenString string, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", errors.Wrap(ErrUnauthenticated, err.Error())
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", errors.Wrap(ErrUnauthenticated, "token has no subject")
	}

	return subject, nil
}

// UserID reads the authenticated user id off a request context
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(KeyUserID).(string)
	return userID
}

func extractTokenStringFromHeader(r *http.Request) (string, error) {
	nonformatted := r.Header.Get("Authorization")
	if strings.TrimSpace(nonformatted) == "" {
		return "", errors.New("no authorization token specified")
	}

	tokenParts := strings.Fields(nonformatted)
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return "", errors.New("token must be a bearer token")
	}

	return tokenParts[1], nil
}
