package utils

import (
	"net/http"

	"foodgram/globals"
)

// GetUserIDFromRequest returns the authenticated user id, or 0 for anonymous
// callers.
func GetUserIDFromRequest(r *http.Request) int64 {
	id, _ := r.Context().Value(globals.UserIDKey).(int64)
	return id
}

func GetRoleFromRequest(r *http.Request) string {
	role, _ := r.Context().Value(globals.RoleKey).(string)
	return role
}

func GetTokenIDFromRequest(r *http.Request) string {
	id, _ := r.Context().Value(globals.TokenIDKey).(string)
	return id
}
