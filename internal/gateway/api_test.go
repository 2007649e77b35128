package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestVoidOrderSuccess(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, "cid", "csecret", "5206", "ctoken")
	if err := c.VoidOrder(context.Background(), 42, "tok"); err != nil {
		t.Fatalf("VoidOrder: %v", err)
	}
	if gotPath != "/order_letters/42/order_letters_rejected" {
		t.Fatalf("path = %q", gotPath)
	}
	for _, want := range []string{"user_id=5206", "access_token=tok", "client_id=cid", "client_secret=csecret"} {
		if !strings.Contains(gotQuery, want) {
			t.Fatalf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestVoidOrderWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request reached server without a token")
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, "cid", "csecret", "5206", "ctoken")
	err := c.VoidOrder(context.Background(), 42, "  ")
	var mErr *MutationError
	if !errors.As(err, &mErr) {
		t.Fatalf("error = %v, want MutationError", err)
	}
}

func TestVoidOrderRejectionReasons(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message key", 422, `{"message":"Order sudah final."}`, "Order sudah final."},
		{"error key", 400, `{"error":"invalid_grant"}`, "invalid_grant"},
		{"errors array", 422, `{"errors":["a","b"]}`, "a, b"},
		{"opaque body", 500, `oops`, "HTTP 500"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewAPIClient(srv.URL, "cid", "csecret", "5206", "ctoken")
			err := c.VoidOrder(context.Background(), 1, "tok")
			var mErr *MutationError
			if !errors.As(err, &mErr) {
				t.Fatalf("error = %v, want MutationError", err)
			}
			if mErr.Reason != tc.want {
				t.Fatalf("reason = %q, want %q", mErr.Reason, tc.want)
			}
		})
	}
}

func TestVoidOrderConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewAPIClient(srv.URL, "cid", "csecret", "5206", "ctoken")
	err := c.VoidOrder(context.Background(), 1, "tok")
	var iErr *InfrastructureError
	if !errors.As(err, &iErr) {
		t.Fatalf("error = %v, want InfrastructureError", err)
	}
}

func TestOfficialName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contact_work_experiences" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("user_id") != "20" {
			t.Fatalf("user_id = %q", r.URL.Query().Get("user_id"))
		}
		w.Write([]byte(`{"result":[{"user":{"name":"  Andi Wijaya "}}]}`))
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, "cid", "csecret", "5206", "ctoken")
	name, err := c.OfficialName(context.Background(), 20)
	if err != nil {
		t.Fatalf("OfficialName: %v", err)
	}
	if name != "Andi Wijaya" {
		t.Fatalf("name = %q", name)
	}
}

func TestOfficialNameEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[]}`))
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, "cid", "csecret", "5206", "ctoken")
	name, err := c.OfficialName(context.Background(), 20)
	if err != nil || name != "" {
		t.Fatalf("got (%q, %v), want empty name and nil error", name, err)
	}
}
