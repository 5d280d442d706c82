package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySink captures diagnostic artifacts for assertions.
type memorySink struct {
	artifacts map[string][]byte
}

func newMemorySink() *memorySink {
	return &memorySink{artifacts: make(map[string][]byte)}
}

func (s *memorySink) Write(name string, body []byte) {
	s.artifacts[name] = body
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client()).WithBases(srv.URL+"/v1.0", srv.URL+"/beta")
}

func TestResolveMeetingIDReturnsFirstResult(t *testing.T) {
	var gotFilter string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1.0/me/onlineMeetings", r.URL.Path)
		gotFilter = r.URL.Query().Get("$filter")
		fmt.Fprint(w, `{"value":[{"id":"MEETING_1"},{"id":"MEETING_2"},{"id":"MEETING_3"}]}`)
	}))

	id, err := c.ResolveMeetingID(context.Background(), "https://teams.microsoft.com/l/meetup-join/abc123")
	require.NoError(t, err)

	assert.Equal(t, "MEETING_1", id, "first element wins regardless of collection length")
	assert.Equal(t, "JoinWebUrl eq 'https://teams.microsoft.com/l/meetup-join/abc123'", gotFilter)
}

func TestResolveMeetingIDEmptyCollection(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "empty value array",
			body: `{"value":[]}`,
		},
		{
			name: "missing value key",
			body: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			}))

			_, err := c.ResolveMeetingID(context.Background(), "https://example.com/join")
			var resErr *ResolutionError
			require.ErrorAs(t, err, &resErr)
			assert.Equal(t, http.StatusOK, resErr.StatusCode)
		})
	}
}

func TestResolveMeetingIDErrorStatus(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":"Forbidden"}}`)
	}))

	_, err := c.ResolveMeetingID(context.Background(), "https://example.com/join")
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, http.StatusForbidden, resErr.StatusCode)
	assert.Contains(t, resErr.Body, "Forbidden")
}

func TestFetchTranscriptInlineContent(t *testing.T) {
	downloads := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.0/me/onlineMeetings/MEETING_1/transcripts":
			fmt.Fprint(w, `{"value":[{"id":"t1","content":"  Hello team...  "}]}`)
		default:
			downloads++
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	text, err := c.FetchTranscript(context.Background(), "MEETING_1")
	require.NoError(t, err)

	assert.Equal(t, "Hello team...", text, "inline content returned verbatim, trimmed")
	assert.Zero(t, downloads, "no content download when inline content is present")
}

func TestFetchTranscriptAcceptFallback(t *testing.T) {
	var accepts []string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.0/me/onlineMeetings/MEETING_1/transcripts":
			fmt.Fprintf(w, `{"value":[{"id":"t1","transcriptContentUrl":"%s"}]}`,
				"http://"+r.Host+"/content")
		case "/content":
			accept := r.Header.Get("Accept")
			accepts = append(accepts, accept)
			if accept != "application/octet-stream" {
				w.WriteHeader(http.StatusNotAcceptable)
				return
			}
			fmt.Fprint(w, "WEBVTT\n\n00:00 Hello team...")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	text, err := c.FetchTranscript(context.Background(), "MEETING_1")
	require.NoError(t, err)

	assert.Equal(t, "WEBVTT\n\n00:00 Hello team...", text)
	assert.Equal(t, []string{
		"text/plain",
		"text/vtt",
		"application/vnd.ms-teams.vtt",
		"application/octet-stream",
	}, accepts, "accept candidates tried in fixed order, each exactly once")
}

func TestFetchTranscriptDownloadExhausted(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.0/me/onlineMeetings/MEETING_1/transcripts":
			fmt.Fprintf(w, `{"value":[{"id":"t1","transcriptContentUrl":"%s"}]}`,
				"http://"+r.Host+"/content")
		case "/content":
			w.WriteHeader(http.StatusNotAcceptable)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	_, err := c.FetchTranscript(context.Background(), "MEETING_1")
	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Contains(t, dlErr.Error(), "exhausted")
	// The last observed error names the final accept candidate.
	assert.Contains(t, dlErr.Err.Error(), "application/octet-stream")
}

func TestFetchTranscriptBetaFallback(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.0/me/onlineMeetings/MEETING_1/transcripts":
			// 200 with empty collection still falls through to beta.
			fmt.Fprint(w, `{"value":[]}`)
		case "/beta/me/onlineMeetings/MEETING_1/transcripts":
			fmt.Fprint(w, `{"value":[{"id":"t1","content":"Hello from beta"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	text, err := c.FetchTranscript(context.Background(), "MEETING_1")
	require.NoError(t, err)
	assert.Equal(t, "Hello from beta", text)
}

func TestFetchTranscriptPrimaryErrorStatusStillTriesBeta(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.0/me/onlineMeetings/MEETING_1/transcripts":
			// A hard failure on the primary base is recorded, not fatal.
			w.WriteHeader(http.StatusNotFound)
		case "/beta/me/onlineMeetings/MEETING_1/transcripts":
			fmt.Fprint(w, `{"value":[{"id":"t1","content":"Hello from beta"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	text, err := c.FetchTranscript(context.Background(), "MEETING_1")
	require.NoError(t, err)
	assert.Equal(t, "Hello from beta", text)
}

func TestFetchTranscriptNoTranscriptAnywhere(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.0/me/onlineMeetings/MEETING_1/transcripts":
			fmt.Fprint(w, `{"value":[]}`)
		case "/beta/me/onlineMeetings/MEETING_1/transcripts":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	_, err := c.FetchTranscript(context.Background(), "MEETING_1")
	var noErr *NoTranscriptError
	require.ErrorAs(t, err, &noErr)

	assert.Equal(t, "MEETING_1", noErr.MeetingID)
	require.Len(t, noErr.Attempts, 2)
	assert.Equal(t, VersionAttempt{Version: "v1.0", StatusCode: http.StatusOK}, noErr.Attempts[0])
	assert.Equal(t, VersionAttempt{Version: "beta", StatusCode: http.StatusNotFound}, noErr.Attempts[1])

	// Both attempted statuses appear in the message for diagnosis.
	assert.Contains(t, err.Error(), "v1.0: status 200")
	assert.Contains(t, err.Error(), "beta: status 404")
}

func TestFetchTranscriptRelativeContentURL(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.0/me/onlineMeetings/MEETING_1/transcripts":
			fmt.Fprint(w, `{"value":[]}`)
		case "/beta/me/onlineMeetings/MEETING_1/transcripts":
			fmt.Fprint(w, `{"value":[{"id":"t1","transcriptContentUrl":"me/onlineMeetings/MEETING_1/transcripts/t1/content"}]}`)
		case "/beta/me/onlineMeetings/MEETING_1/transcripts/t1/content":
			fmt.Fprint(w, "transcript body")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	text, err := c.FetchTranscript(context.Background(), "MEETING_1")
	require.NoError(t, err)
	assert.Equal(t, "transcript body", text, "relative content URL resolved against the base that produced it")
}

func TestEndToEndJoinURLScenario(t *testing.T) {
	downloads := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.0/me/onlineMeetings":
			fmt.Fprint(w, `{"value":[{"id":"MEETING_1"}]}`)
		case "/v1.0/me/onlineMeetings/MEETING_1/transcripts":
			fmt.Fprint(w, `{"value":[{"content":"Hello team..."}]}`)
		default:
			downloads++
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	id, err := c.ResolveMeetingID(context.Background(), "https://teams.microsoft.com/l/meetup-join/abc123")
	require.NoError(t, err)
	require.Equal(t, "MEETING_1", id)

	text, err := c.FetchTranscript(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Hello team...", text)
	assert.Zero(t, downloads, "zero content-download calls for inline content")
}

func TestDiagnosticArtifactsPersisted(t *testing.T) {
	lookupBody := `{"value":[{"id":"MEETING_1"}]}`
	v1Body := `{"value":[]}`
	betaBody := `{"value":[{"content":"Hello team..."}]}`

	sink := newMemorySink()
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.0/me/onlineMeetings":
			fmt.Fprint(w, lookupBody)
		case "/v1.0/me/onlineMeetings/MEETING_1/transcripts":
			fmt.Fprint(w, v1Body)
		case "/beta/me/onlineMeetings/MEETING_1/transcripts":
			fmt.Fprint(w, betaBody)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})).WithDiagnostics(sink)

	_, err := c.ResolveMeetingID(context.Background(), "https://example.com/join")
	require.NoError(t, err)
	_, err = c.FetchTranscript(context.Background(), "MEETING_1")
	require.NoError(t, err)

	// Artifacts are byte-identical to what was received.
	assert.Equal(t, []byte(lookupBody), sink.artifacts["meeting_lookup.json"])
	assert.Equal(t, []byte(v1Body), sink.artifacts["transcripts_v1.0.json"])
	assert.Equal(t, []byte(betaBody), sink.artifacts["transcripts_beta.json"])
}

func TestDiagnosticArtifactsWrittenOnFailureToo(t *testing.T) {
	errBody := `{"error":{"code":"NotFound"}}`
	sink := newMemorySink()
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, errBody)
	})).WithDiagnostics(sink)

	_, err := c.FetchTranscript(context.Background(), "MEETING_1")
	require.Error(t, err)

	assert.Equal(t, []byte(errBody), sink.artifacts["transcripts_v1.0.json"])
	assert.Equal(t, []byte(errBody), sink.artifacts["transcripts_beta.json"])
}

func TestFileSinkRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)

	body := []byte(`{"value":[{"id":"MEETING_1"}]}`)
	sink.Write("meeting_lookup.json", body)

	got, err := os.ReadFile(filepath.Join(dir, "meeting_lookup.json"))
	require.NoError(t, err)
	assert.Equal(t, body, got)

	// Overwritten on every run.
	sink.Write("meeting_lookup.json", []byte(`{}`))
	got, err = os.ReadFile(filepath.Join(dir, "meeting_lookup.json"))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), got)
}

func TestFileSinkWriteFailureIsNotFatal(t *testing.T) {
	sink := NewFileSink(filepath.Join(t.TempDir(), "does", "not", "exist"))
	// Must not panic; failures are logged, never raised.
	sink.Write("meeting_lookup.json", []byte(`{}`))
}

func TestDecodeTextReplacesInvalidUTF8(t *testing.T) {
	body := []byte{'H', 'i', 0xff, 0xfe, '!'}
	got := decodeText(body)

	assert.Contains(t, got, "Hi")
	assert.Contains(t, got, "�", "undecodable bytes replaced, response never discarded")
	assert.Contains(t, got, "!")
}

func TestFetchTranscriptRequestFailureRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	srv.Close() // every request now fails at the transport level

	c := NewClient(http.DefaultClient).WithBases(srv.URL+"/v1.0", srv.URL+"/beta")

	_, err := c.FetchTranscript(context.Background(), "MEETING_1")
	var noErr *NoTranscriptError
	require.True(t, errors.As(err, &noErr))
	require.Len(t, noErr.Attempts, 2)
	assert.Zero(t, noErr.Attempts[0].StatusCode)
	assert.Contains(t, err.Error(), "request failed")
}
