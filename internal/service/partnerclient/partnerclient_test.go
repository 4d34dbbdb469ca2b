package partnerclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPatchOrderState(t *testing.T) {
	var gotKey string
	var gotBody map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		require.Equal(t, "12345", r.PathValue("id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, "partner-secret")

	result, err := client.PatchOrderState(context.Background(), 12345, "Finished")

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, result.StatusCode)
	require.Equal(t, "partner-secret", gotKey)
	require.Equal(t, map[string]string{"state": "Finished"}, gotBody)
}

func TestPatchOrderStateNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, "partner-secret")

	result, err := client.PatchOrderState(context.Background(), 12345, "Finished")

	// не-200 не ошибка транспорта
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, result.StatusCode)
}
