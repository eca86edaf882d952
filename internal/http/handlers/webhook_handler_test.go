package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhook_DeliversUpdate(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc, &fakeRegistrar{}, "")

	w := doJSON(t, r, http.MethodPost, "/webhook", map[string]any{"update_id": 42})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if svc.gotUpdateID != 42 {
		t.Fatalf("service got update id %d; want 42", svc.gotUpdateID)
	}
}

func TestWebhook_MalformedBodyAcked(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc, &fakeRegistrar{}, "")

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// A retry cannot fix a malformed payload, so it must be acked.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if svc.gotUpdateID != 0 {
		t.Fatalf("service was invoked for malformed payload")
	}
}

func TestWebhook_StoreError_500(t *testing.T) {
	svc := &fakeService{updateErr: errors.New("redis down")}
	r := newRouter(svc, &fakeRegistrar{}, "")

	w := doJSON(t, r, http.MethodPost, "/webhook", map[string]any{"update_id": 7})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500 so the platform retries", w.Code)
	}
}

func TestSetWebhook_UsesConfiguredBase(t *testing.T) {
	reg := &fakeRegistrar{}
	r := newRouter(&fakeService{}, reg, "https://bridge.example.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set-webhook", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if reg.gotURL != "https://bridge.example.com/webhook" {
		t.Fatalf("registered URL = %q", reg.gotURL)
	}
}

func TestSetWebhook_FallsBackToRequestHost(t *testing.T) {
	reg := &fakeRegistrar{}
	r := newRouter(&fakeService{}, reg, "")

	req := httptest.NewRequest(http.MethodGet, "/set-webhook", nil)
	req.Host = "deploy.example.net"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if reg.gotURL != "https://deploy.example.net/webhook" {
		t.Fatalf("registered URL = %q", reg.gotURL)
	}
}

func TestSetWebhook_RegistrarError_500(t *testing.T) {
	reg := &fakeRegistrar{err: errors.New("telegram unreachable")}
	r := newRouter(&fakeService{}, reg, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set-webhook", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", w.Code)
	}
}
