package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubarchive/ingestion/internal/cache"
)

func TestClient_ResolveClub_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"clubId":12345}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "common-gen5", "club_private", 2*time.Second, cache.NewMemoryOnly())
	id, err := c.ResolveClub(context.Background(), "Some Club")
	require.NoError(t, err)
	assert.Equal(t, "12345", id)
}

func TestClient_ResolveClub_EmptyResultIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "common-gen5", "club_private", 2*time.Second, cache.NewMemoryOnly())
	id, err := c.ResolveClub(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestClient_ResolveClub_Cached(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`[{"clubId":999}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "common-gen5", "club_private", 2*time.Second, cache.NewMemoryOnly())
	_, err := c.ResolveClub(context.Background(), "Cached Club")
	require.NoError(t, err)
	_, err = c.ResolveClub(context.Background(), "Cached Club")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestClient_Get_PermanentErrorOnNon429FourXX(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "common-gen5", "club_private", 2*time.Second, cache.NewMemoryOnly())
	_, err := c.ResolveClub(context.Background(), "Forbidden Club")
	require.Error(t, err)

	var upErr *Error
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, ErrKindPermanent, upErr.Kind)
}

func TestClient_Get_RetriesThenFailsNetworkError(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", "common-gen5", "club_private", 200*time.Millisecond, cache.NewMemoryOnly())
	c.maxRetries = 1
	c.baseDelay = 1 * time.Millisecond

	_, err := c.ResolveClub(context.Background(), "Unreachable Club")
	require.Error(t, err)

	var upErr *Error
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, ErrKindNetwork, upErr.Kind)
}

func TestClient_ListMatches_EmptyBodyIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "common-gen5", "club_private", 2*time.Second, cache.NewMemoryOnly())
	matches, err := c.ListMatches(context.Background(), "12345")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestClient_ListMatches_SkipsEntriesWithoutMatchID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"matchId":"abc","timestamp":1700000000},{"matchId":""}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "common-gen5", "club_private", 2*time.Second, cache.NewMemoryOnly())
	matches, err := c.ListMatches(context.Background(), "12345")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "abc", matches[0].MatchID)
}
