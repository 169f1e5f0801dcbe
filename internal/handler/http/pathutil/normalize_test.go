package pathutil

import "testing"

func TestNormalizePath(t *testing.T) {
	const cart = "6f1c2a8e-4b7d-4e59-9a3f-0c2d8e7b1a55"
	tests := []struct {
		path     string
		expected string
	}{
		{"/products", "/products"},
		{"/products/", "/products"},
		{"/products/12", "/products/:id"},
		{"/products/12?fields=name", "/products/:id"},
		{"/products/search?q=urea", "/products/search"},
		{"/machinery/3", "/machinery/:id"},
		{"/videos/99/", "/videos/:id"},
		{"/users/1", "/users/:id"},
		{"/bills/450", "/bills/:id"},
		{"/bills/abc", "/bills/:invalid"},
		{"/products/../../etc", "/other"},
		{"/cart", "/cart"},
		{"/cart/" + cart, "/cart/:cartId"},
		{"/cart/" + cart + "/items", "/cart/:cartId/items"},
		{"/cart/" + cart + "/items/7", "/cart/:cartId/items/:productId"},
		{"/cart/" + cart + "/checkout", "/cart/:cartId/checkout"},
		{"/cart/not-a-uuid/checkout", "/cart/:invalid"},
		{"/analysis/soil", "/analysis/soil"},
		{"/telemetry/history?limit=50", "/telemetry/history"},
		{"/health", "/health"},
		{"/wp-admin.php", "/other"},
		{"/", "/other"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := NormalizePath(tt.path); got != tt.expected {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestNormalizePath_BoundedCardinality(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 1000; i++ {
		for _, p := range []string{"/products/", "/videos/", "/bills/", "/random/"} {
			seen[NormalizePath(p+string(rune('a'+i%26))+"x")] = struct{}{}
		}
	}
	if len(seen) > GetExpectedCardinality() {
		t.Errorf("got %d distinct labels, expected at most %d", len(seen), GetExpectedCardinality())
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{" 42 ", 42, false},
		{"9223372036854775807", 9223372036854775807, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"9223372036854775808", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseID(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseID(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
