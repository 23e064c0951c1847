package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/turnapp-dev/scheduling-console/backend/internal/domain"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("request handled", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // slog would mangle the multi-line trace
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type AuthClaims struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// token comes in the Authorization header, issued by the identity provider
		authHeader := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			h.errorResponse(w, r, "user is not logged in")
			return
		}

		claims := &AuthClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		})
		if err != nil {
			h.errorResponse(w, r, "invalid token")
			return
		}

		// attach the identity claims to the context
		ctx := r.Context()
		ctx = context.WithValue(ctx, RoleCtxKey, claims.Role)
		ctx = context.WithValue(ctx, SubCtxKey, claims.Subject)
		ctx = context.WithValue(ctx, NameCtxKey, claims.Name)
		ctx = context.WithValue(ctx, EmailCtxKey, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roleCtx := r.Context().Value(RoleCtxKey).(string)
		if domain.Role(roleCtx) != domain.RoleAdmin {
			h.errorResponse(w, r, "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) wizardSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")

		sess, ok := h.sessions.Get(sessionID)
		if !ok {
			h.errorResponse(w, r, "wizard session does not exist or has expired")
			return
		}

		ctx := context.WithValue(r.Context(), SessionCtxKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
