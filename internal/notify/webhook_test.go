package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fromscratch/blueprint/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify_PostsPayload(t *testing.T) {
	var got notify.Payload
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := notify.NewWebhookNotifier()
	err := n.Notify(context.Background(), srv.URL, notify.Payload{
		RunID:  "run-1",
		Status: "succeeded",
		Result: map[string]any{"export": "doc"},
	})
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "succeeded", got.Status)
}

func TestNotify_Non2xxIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := notify.NewWebhookNotifier()
	err := n.Notify(context.Background(), srv.URL, notify.Payload{RunID: "run-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestNotify_UnreachableEndpoint(t *testing.T) {
	n := notify.NewWebhookNotifier()
	err := n.Notify(context.Background(), "http://127.0.0.1:1/hook", notify.Payload{RunID: "run-1"})
	assert.Error(t, err)
}

func TestNotify_NoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := notify.NewWebhookNotifier()
	_ = n.Notify(context.Background(), srv.URL, notify.Payload{RunID: "run-1"})
	assert.Equal(t, int32(1), calls.Load())
}
