package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/teemow/teamsbrief/internal/logging"
)

// acceptCandidates is the ordered list of content types tried when
// downloading transcript content. The first one that yields a success
// status with a non-empty body wins; a failed candidate is not retried.
var acceptCandidates = []string{
	"text/plain",
	"text/vtt",
	"application/vnd.ms-teams.vtt",
	"application/octet-stream",
}

// ResolveMeetingID turns a Teams join URL into the meeting's Graph ID by
// querying the onlineMeetings listing filtered on JoinWebUrl. The raw
// response body is persisted as a diagnostic artifact. The first result is
// returned; an empty or missing result collection is a ResolutionError.
func (c *Client) ResolveMeetingID(ctx context.Context, joinURL string) (id string, err error) {
	start := time.Now()
	defer func() { c.recordOperation(ctx, "resolve_meeting_id", start, err) }()

	filter := fmt.Sprintf("JoinWebUrl eq '%s'", joinURL)
	lookupURL := c.baseV1 + "/me/onlineMeetings?$filter=" + url.QueryEscape(filter)

	status, body, err := c.get(ctx, lookupURL, "application/json")
	if err != nil {
		return "", &ResolutionError{JoinURL: joinURL, Err: err}
	}
	c.sink.Write(artifactMeetingLookup, body)

	if status < 200 || status > 299 {
		return "", &ResolutionError{JoinURL: joinURL, StatusCode: status, Body: snippet(body)}
	}

	var listing meetingListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return "", &ResolutionError{JoinURL: joinURL, StatusCode: status, Err: fmt.Errorf("parse listing: %w", err)}
	}
	if len(listing.Value) == 0 {
		return "", &ResolutionError{JoinURL: joinURL, StatusCode: status}
	}

	c.logger.Debug("resolved meeting ID",
		logging.Operation("resolve_meeting_id"),
		logging.Meeting(listing.Value[0].ID),
		slog.Int("results", len(listing.Value)))
	return listing.Value[0].ID, nil
}

// FetchTranscript retrieves transcript text for a meeting, trying the v1.0
// base first and falling back to beta. Each version is an independent
// attempt; a 200 with an empty collection falls through just like a hard
// failure, and a non-2xx listing is recorded rather than fatal because a
// later version may still succeed. Only after all versions are exhausted is
// NoTranscriptError returned, carrying the per-version statuses.
func (c *Client) FetchTranscript(ctx context.Context, meetingID string) (text string, err error) {
	start := time.Now()
	defer func() { c.recordOperation(ctx, "fetch_transcript", start, err) }()

	bases := []struct {
		version string
		base    string
	}{
		{"v1.0", c.baseV1},
		{"beta", c.baseBeta},
	}

	attempts := make([]VersionAttempt, 0, len(bases))
	for _, b := range bases {
		listURL := b.base + "/me/onlineMeetings/" + url.PathEscape(meetingID) + "/transcripts"

		status, body, err := c.get(ctx, listURL, "application/json")
		if err != nil {
			attempts = append(attempts, VersionAttempt{Version: b.version})
			c.logger.Debug("transcript listing request failed",
				logging.Version(b.version), logging.Err(err))
			continue
		}
		c.sink.Write(artifactTranscripts(b.version), body)
		attempts = append(attempts, VersionAttempt{Version: b.version, StatusCode: status})

		if status < 200 || status > 299 {
			c.logger.Debug("transcript listing returned error status",
				logging.Version(b.version), slog.Int("status", status))
			continue
		}

		var listing transcriptListing
		if err := json.Unmarshal(body, &listing); err != nil {
			c.logger.Debug("transcript listing not parseable",
				logging.Version(b.version), logging.Err(err))
			continue
		}
		if len(listing.Value) == 0 {
			c.logger.Debug("transcript listing empty", logging.Version(b.version))
			continue
		}

		// Provider order, first entry wins.
		descriptor := listing.Value[0]

		if content := strings.TrimSpace(descriptor.Content); content != "" {
			c.logger.Info("transcript resolved from inline content",
				logging.Version(b.version), logging.Meeting(meetingID))
			return content, nil
		}

		if descriptor.TranscriptContentURL != "" {
			text, err := c.downloadContent(ctx, b.base, descriptor.TranscriptContentURL)
			if err != nil {
				return "", err
			}
			c.logger.Info("transcript resolved from content URL",
				logging.Version(b.version), logging.Meeting(meetingID))
			return text, nil
		}

		// Descriptor with neither inline content nor a content URL:
		// nothing usable in this version.
	}

	return "", &NoTranscriptError{MeetingID: meetingID, Attempts: attempts}
}

// downloadContent fetches transcript bytes from a content-retrieval URL,
// negotiating the content type through the ordered Accept candidates.
// Exhausting all candidates yields a DownloadError carrying the last
// observed error.
func (c *Client) downloadContent(ctx context.Context, base, contentURL string) (string, error) {
	// Beta listings return the content URL relative to the API base.
	u := contentURL
	if !strings.HasPrefix(u, "http") {
		u = base + "/" + strings.TrimPrefix(u, "/")
	}

	var lastErr error
	for _, accept := range acceptCandidates {
		status, body, err := c.get(ctx, u, accept)
		if err != nil {
			lastErr = fmt.Errorf("accept %q: %w", accept, err)
			continue
		}
		if status >= 200 && status <= 299 && len(body) > 0 {
			return strings.TrimSpace(decodeText(body)), nil
		}
		lastErr = fmt.Errorf("accept %q: status %d: %s", accept, status, snippet(body))
		c.logger.Debug("content download attempt failed",
			slog.String("accept", accept), slog.Int("status", status))
	}
	return "", &DownloadError{URL: u, Err: lastErr}
}

// decodeText decodes a transcript body as UTF-8, replacing undecodable
// bytes instead of discarding the response.
func decodeText(body []byte) string {
	return strings.ToValidUTF8(string(body), "�")
}
