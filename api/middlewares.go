package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// requireAuth authenticates the session cookie and loads the account it is
// bound to. Every failure mode answers with the same 401 so callers learn
// nothing about why a session was rejected.
func (app *application) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			writeError(w, errors.New("Unauthorized"), http.StatusUnauthorized)
			return
		}
		token, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(app.config.jwtSecret), nil
		})
		if err != nil {
			writeError(w, errors.New("Unauthorized"), http.StatusUnauthorized)
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			writeError(w, errors.New("Unauthorized"), http.StatusUnauthorized)
			return
		}
		userID, ok := claims["user_id"].(float64)
		if !ok {
			writeError(w, errors.New("Unauthorized"), http.StatusUnauthorized)
			return
		}
		expiresAtStr, ok := claims["expires_at"].(string)
		if !ok {
			writeError(w, errors.New("Unauthorized"), http.StatusUnauthorized)
			return
		}
		expiresAt, err := time.Parse(time.RFC822, expiresAtStr)
		if err != nil {
			writeError(w, errors.New("Unauthorized"), http.StatusUnauthorized)
			return
		}
		if app.now().After(expiresAt) {
			writeError(w, errors.New("Unauthorized"), http.StatusUnauthorized)
			return
		}
		u, err := app.storage.getUserByID(int(userID))
		if err != nil {
			log.Println(err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
			return
		}
		if u == nil {
			writeError(w, errors.New("Unauthorized"), http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// enableCORS lets the browser frontend on another port send the session
// cookie along, hence Allow-Credentials and an exact origin match.
func (app *application) enableCORS(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		origin := r.Header.Get("Origin")
		if origin != "" && origin == app.config.cors.trustedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			// preflight request
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, GET, POST, PATCH, DELETE")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.WriteHeader(http.StatusOK)
				return
			}
		}
		next.ServeHTTP(w, r)
	}
}

type userContext string

const userContextKey userContext = "userContextKey"

func getUserFromRequest(r *http.Request) *user {
	u, _ := r.Context().Value(userContextKey).(*user)
	return u
}
