// Package pathutil normalizes request paths for metric labels and parses
// path parameters.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern maps concrete paths to a low-cardinality template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

const uuidRe = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/products/\d+$`), Template: "/products/:id"},
	{Pattern: regexp.MustCompile(`^/machinery/\d+$`), Template: "/machinery/:id"},
	{Pattern: regexp.MustCompile(`^/videos/\d+$`), Template: "/videos/:id"},
	{Pattern: regexp.MustCompile(`^/users/\d+$`), Template: "/users/:id"},
	{Pattern: regexp.MustCompile(`^/bills/\d+$`), Template: "/bills/:id"},

	// カートIDはクライアント保持のUUID
	{Pattern: regexp.MustCompile(`^/cart/` + uuidRe + `$`), Template: "/cart/:cartId"},
	{Pattern: regexp.MustCompile(`^/cart/` + uuidRe + `/items$`), Template: "/cart/:cartId/items"},
	{Pattern: regexp.MustCompile(`^/cart/` + uuidRe + `/items/\d+$`), Template: "/cart/:cartId/items/:productId"},
	{Pattern: regexp.MustCompile(`^/cart/` + uuidRe + `/checkout$`), Template: "/cart/:cartId/checkout"},

	// Malformed IDs collapse too so scanners can't blow up label cardinality.
	{Pattern: regexp.MustCompile(`^/(products|machinery|videos|users|bills)/[^/]+$`), Template: "/:resource/:invalid"},
	{Pattern: regexp.MustCompile(`^/cart/[^/]+(/.*)?$`), Template: "/cart/:invalid"},
}

var staticPaths = map[string]struct{}{
	"/health": {}, "/ready": {}, "/live": {}, "/metrics": {}, "/auth/token": {},
	"/products": {}, "/products/search": {}, "/machinery": {}, "/videos": {}, "/videos/search": {},
	"/users": {}, "/bills": {}, "/cart": {}, "/dashboard": {},
	"/analysis/soil": {}, "/analysis/disease": {}, "/analysis/crops": {}, "/analysis/yield": {},
	"/telemetry/latest": {}, "/telemetry/history": {},
}

// NormalizePath strips the query and trailing slash and replaces IDs with
// placeholders. Unknown paths become "/other".
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if _, ok := staticPaths[path]; ok {
		return path
	}
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			if p.Template == "/:resource/:invalid" {
				return "/" + strings.SplitN(path[1:], "/", 2)[0] + "/:invalid"
			}
			return p.Template
		}
	}
	return "/other"
}

// GetExpectedCardinality is an upper bound on distinct NormalizePath results.
func GetExpectedCardinality() int {
	// ID templates, one ":invalid" label per resource, the cart ":invalid" label and "/other"
	return len(staticPaths) + (len(pathPatterns) - 2) + 5 + 1 + 1
}
