package factsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFact(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    domain.Fact
		wantErr bool
	}{
		{
			name: "All fields",
			body: `{"id":"1","text":"Cats sleep a lot","source":"catfacts.net"}`,
			want: domain.Fact{ID: "1", Text: "Cats sleep a lot", Source: "catfacts.net"},
		},
		{
			name: "Missing source",
			body: `{"id":"2","text":"Bees can fly"}`,
			want: domain.Fact{ID: "2", Text: "Bees can fly", Source: "Unknown"},
		},
		{
			name: "Null source",
			body: `{"id":"3","text":"Owls turn heads","source":null}`,
			want: domain.Fact{ID: "3", Text: "Owls turn heads", Source: "Unknown"},
		},
		{
			name: "Extra fields ignored",
			body: `{"id":"4","text":"t","source":"s","source_url":"http://x","language":"en","permalink":"p"}`,
			want: domain.Fact{ID: "4", Text: "t", Source: "s"},
		},
		{name: "Missing text", body: `{"id":"5"}`, wantErr: true},
		{name: "Missing id", body: `{"text":"no id"}`, wantErr: true},
		{name: "Null text", body: `{"id":"6","text":null}`, wantErr: true},
		{name: "Numeric text", body: `{"id":"7","text":42}`, wantErr: true},
		{name: "Not an object", body: `["id","text"]`, wantErr: true},
		{name: "Truncated", body: `{"id":"8","te`, wantErr: true},
		{name: "Empty", body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeFact([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewClient_Endpoint(t *testing.T) {
	c, err := NewClient("", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://uselessfacts.jsph.pl/api/v2/facts/random?language=en", c.Endpoint())

	c, err = NewClient("http://localhost:9000/", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/api/v2/facts/random?language=en", c.Endpoint())

	_, err = NewClient("ftp://example.com", 0)
	assert.Error(t, err)
}

func TestClient_RandomFact(t *testing.T) {
	var gotQuery, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("language")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","text":"Cats sleep a lot","source":"catfacts.net"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	fact, ok := c.RandomFact(context.Background())
	assert.True(t, ok)
	assert.Equal(t, domain.Fact{ID: "1", Text: "Cats sleep a lot", Source: "catfacts.net"}, fact)
	assert.Equal(t, "/api/v2/facts/random", gotPath)
	assert.Equal(t, "en", gotQuery)
}

func TestClient_RandomFact_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "Server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "Not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "Malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
		{
			name: "Missing text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"id":"9"}`))
			},
		},
		{
			name: "Slow response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
				w.Write([]byte(`{"id":"1","text":"late"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c, err := NewClient(srv.URL, 50*time.Millisecond)
			require.NoError(t, err)

			fact, ok := c.RandomFact(context.Background())
			assert.False(t, ok)
			assert.Equal(t, domain.Fact{}, fact)
		})
	}
}

func TestClient_RandomFact_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"1","text":"x"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := c.RandomFact(ctx)
	assert.False(t, ok)
}

func TestClient_RandomFact_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, time.Second)
	require.NoError(t, err)

	_, ok := c.RandomFact(context.Background())
	assert.False(t, ok)
}
