// Package auth implements token issuance and path-based authorization for the HTTP API.
package auth

import (
	"net/http"
	"strings"
)

const (
	// RoleAdmin can call every endpoint.
	RoleAdmin = "admin"

	// RoleViewer can additionally read the dashboard, bills and users.
	RoleViewer = "viewer"
)

// Access is the minimum privilege an endpoint requires.
type Access int

const (
	AccessPublic Access = iota
	AccessViewer
	AccessAdmin
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessViewer:
		return "viewer"
	default:
		return "admin"
	}
}

func isRead(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// underPrefix matches prefix itself and anything below it.
func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// RequiredAccess classifies a request.
func RequiredAccess(method, path string) Access {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	switch {
	case path == "/health" || path == "/ready" || path == "/live" || path == "/metrics":
		return AccessPublic
	case path == "/auth/token":
		return AccessPublic
	// 買い物客はログインせずにカート・チェックアウトを使う
	case underPrefix(path, "/cart"):
		return AccessPublic
	case strings.HasPrefix(path, "/analysis/") && method == http.MethodPost:
		return AccessPublic
	case strings.HasPrefix(path, "/telemetry/") && isRead(method):
		return AccessPublic
	case (underPrefix(path, "/products") || underPrefix(path, "/machinery") || underPrefix(path, "/videos")) && isRead(method):
		return AccessPublic
	case (path == "/dashboard" || underPrefix(path, "/bills") || underPrefix(path, "/users")) && isRead(method):
		return AccessViewer
	default:
		return AccessAdmin
	}
}

// Allowed reports whether role satisfies access.
func Allowed(role string, access Access) bool {
	switch access {
	case AccessPublic:
		return true
	case AccessViewer:
		return role == RoleViewer || role == RoleAdmin
	default:
		return role == RoleAdmin
	}
}
