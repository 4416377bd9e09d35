package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/journal/metadata", r.URL.Path)
		_ = json.NewEncoder(w).Encode(JournalMetadata{
			GLAccounts: []GLAccountInfo{{Code: "1000", Name: "Cash at bank", Type: "Asset"}},
			Periods:    []string{"Jan", "Feb"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	meta, err := client.JournalMetadata(context.Background())
	require.NoError(t, err)
	require.Len(t, meta.GLAccounts, 1)
	assert.Equal(t, "1000", meta.GLAccounts[0].Code)
	assert.Equal(t, []string{"Jan", "Feb"}, meta.Periods)
}

func TestPostJournalBatch(t *testing.T) {
	var got []BatchEntry
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/journal/batch-update", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	entries := []BatchEntry{
		{GLAccount: "1000", Period: "Jan", Value: 100},
		{GLAccount: "2000", Period: "Jan", Value: -50},
	}
	require.NoError(t, client.PostJournalBatch(context.Background(), entries))
	assert.Equal(t, entries, got)
}

func TestSubmitMappedDataWrapsPayload(t *testing.T) {
	var body map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/data", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	require.NoError(t, client.SubmitMappedData(context.Background(), []map[string]string{{"glAccount": "1000"}}))
	require.Contains(t, body, "mappedData")
}

func TestSubmitFinancialVariablesWrapsPayload(t *testing.T) {
	var body map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/financialvar-updated", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	vars := []FinancialVariable{{Key: "Current Assets", Current: 150, Previous: 130}}
	require.NoError(t, client.SubmitFinancialVariables(context.Background(), vars))
	require.Contains(t, body, "financialVar1")
}

func TestErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.JournalMetadata(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")

	err = client.PostJournalBatch(context.Background(), []BatchEntry{{GLAccount: "1", Period: "Jan", Value: 1}})
	require.Error(t, err)
}

func TestTextKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/text_keys", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]TextKey{{Key: "company_name", Value: "Acme Ltd"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	keys, err := client.TextKeys(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "Acme Ltd", keys[0].Value)
}
