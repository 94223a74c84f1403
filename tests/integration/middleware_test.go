//go:build integration

package integration

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"
)

func doWithHeaders(t *testing.T, method, path, token string, headers map[string]string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, baseURL+path, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func rateRemaining(t *testing.T, resp *http.Response) (limit, remaining int) {
	t.Helper()

	limit, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
	if err != nil {
		t.Fatalf("X-RateLimit-Limit = %q: %v", resp.Header.Get("X-RateLimit-Limit"), err)
	}
	remaining, err = strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	if err != nil {
		t.Fatalf("X-RateLimit-Remaining = %q: %v", resp.Header.Get("X-RateLimit-Remaining"), err)
	}
	return limit, remaining
}

// Each bearer token drains its own bucket; a busy shopper does not eat into
// the admin's allowance.
func TestRateLimit_BucketPerToken(t *testing.T) {
	shopper := login(t, "shopper", shopperPassword)
	admin := login(t, "admin", adminPassword)

	var limit, shopperLeft int
	for range 3 {
		resp := doRequest(t, http.MethodGet, "/auth/getmenutems", shopper, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("shopper menu: status %d", resp.StatusCode)
		}
		limit, shopperLeft = rateRemaining(t, resp)
	}
	if shopperLeft > limit-3 {
		t.Errorf("shopper remaining after 3 calls = %d, want <= %d", shopperLeft, limit-3)
	}

	resp := doRequest(t, http.MethodGet, "/auth/getmenutems", admin, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin menu: status %d", resp.StatusCode)
	}
	_, adminLeft := rateRemaining(t, resp)
	if adminLeft != limit-1 {
		t.Errorf("admin remaining on first call = %d, want %d", adminLeft, limit-1)
	}
	if adminLeft <= shopperLeft {
		t.Errorf("admin bucket (%d) shares shopper bucket (%d)", adminLeft, shopperLeft)
	}
}

// A fresh login is a new client key even for the same user.
func TestRateLimit_NewLoginStartsFullBucket(t *testing.T) {
	first := login(t, "shopper", shopperPassword)
	for range 2 {
		resp := doRequest(t, http.MethodGet, "/auth/getmenutems", first, nil)
		resp.Body.Close()
	}

	second := login(t, "shopper", shopperPassword)
	if second == first {
		t.Fatal("second login returned the same token")
	}
	resp := doRequest(t, http.MethodGet, "/auth/getmenutems", second, nil)
	resp.Body.Close()

	limit, left := rateRemaining(t, resp)
	if left != limit-1 {
		t.Errorf("remaining on second login = %d, want %d", left, limit-1)
	}
}

func TestRequestID_OnRejectedRequests(t *testing.T) {
	shopper := login(t, "shopper", shopperPassword)

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{name: "authed without token", path: "/auth/getmenutems", wantStatus: http.StatusUnauthorized},
		{name: "authed with unknown token", path: "/auth/me", token: "not-a-token", wantStatus: http.StatusUnauthorized},
		{name: "admin route as shopper", path: "/auth/getproduct", token: shopper, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, http.MethodGet, tt.path, tt.token, nil)
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if resp.Header.Get("X-Request-ID") == "" {
				t.Error("X-Request-ID missing on rejected request")
			}
		})
	}
}

func TestRequestID_EchoedOnForbidden(t *testing.T) {
	shopper := login(t, "shopper", shopperPassword)

	resp := doWithHeaders(t, http.MethodGet, "/auth/getproduct", shopper, map[string]string{
		"X-Request-ID": "storefront-trace-42",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Request-ID"); got != "storefront-trace-42" {
		t.Errorf("X-Request-ID = %q, want echoed id", got)
	}
}

// The cart update route takes no token, so browsers hit it with a bare
// preflight before the JSON PUT.
func TestCORS_PreflightCartUpdate(t *testing.T) {
	resp := doWithHeaders(t, http.MethodOptions, "/cart/carts/1", "", map[string]string{
		"Origin":                         "http://storefront.example",
		"Access-Control-Request-Method":  http.MethodPut,
		"Access-Control-Request-Headers": "Content-Type",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("Access-Control-Allow-Origin missing")
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPut) {
		t.Errorf("Access-Control-Allow-Methods = %q, want PUT", got)
	}
	allowHeaders := resp.Header.Get("Access-Control-Allow-Headers")
	for _, h := range []string{"Content-Type", "Authorization"} {
		if !strings.Contains(allowHeaders, h) {
			t.Errorf("Access-Control-Allow-Headers = %q, want %s", allowHeaders, h)
		}
	}
	if resp.Header.Get("X-RateLimit-Limit") != "" {
		t.Error("preflight reached the rate limiter")
	}
}

// Cross-origin clients can read the request id even when the stub rejects
// the call.
func TestCORS_RejectedResponseExposesRequestID(t *testing.T) {
	resp := doWithHeaders(t, http.MethodGet, "/auth/getmenutems", "", map[string]string{
		"Origin": "http://storefront.example",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Error("Access-Control-Allow-Origin missing on 401")
	}
	if got := resp.Header.Get("Access-Control-Expose-Headers"); !strings.Contains(got, "X-Request-ID") {
		t.Errorf("Access-Control-Expose-Headers = %q, want X-Request-ID", got)
	}
}
