package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"financetracker/backend/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// TokenVerifier checks a Firebase ID token. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// NewFirebaseVerifier initializes the Firebase Admin SDK from the configured
// service account. It returns nil when no credentials are configured, which
// disables authentication.
func NewFirebaseVerifier(ctx context.Context, cfg config.FirebaseConfig, logger zerolog.Logger) (TokenVerifier, error) {
	if !cfg.Enabled() {
		logger.Info().Msg("No Firebase credentials configured, API authentication disabled")
		return nil, nil
	}

	credentials := []byte(cfg.CredentialsJSON)
	if len(credentials) == 0 {
		decoded, err := base64.StdEncoding.DecodeString(cfg.CredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 Firebase credentials: %w", err)
		}
		credentials = decoded
	}

	var firebaseConfig *firebase.Config
	if cfg.ProjectID != "" {
		firebaseConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, firebaseConfig, option.WithCredentialsJSON(credentials))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase Auth client: %w", err)
	}

	logger.Info().Msg("Firebase Admin SDK initialized")
	return client, nil
}

// Auth rejects requests without a valid Firebase ID token in the
// Authorization header. A nil verifier lets every request through.
func Auth(verifier TokenVerifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			idToken := extractToken(r.Header.Get("Authorization"))
			if idToken == "" {
				writeUnauthorized(w, "Authorization header is required")
				return
			}

			token, err := verifier.VerifyIDToken(r.Context(), idToken)
			if err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Error verifying token")
				writeUnauthorized(w, "Unauthorized: Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, token.UID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken gets the token from the Authorization header
func extractToken(authHeader string) string {
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// GetUserIDFromContext retrieves the user ID from the request context
func GetUserIDFromContext(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}
