package graph

import (
	"fmt"
	"strings"
)

// meetingListing is the response shape of the onlineMeetings lookup.
type meetingListing struct {
	Value []struct {
		ID string `json:"id"`
	} `json:"value"`
}

// transcriptListing is the response shape of the transcript listing for a
// meeting. Order is provider-assigned; we always select the first entry.
type transcriptListing struct {
	Value []transcriptDescriptor `json:"value"`
}

// transcriptDescriptor is one transcript entry. Depending on API version the
// text arrives inline in Content or must be downloaded from
// TranscriptContentURL.
type transcriptDescriptor struct {
	ID                   string `json:"id"`
	Content              string `json:"content"`
	TranscriptContentURL string `json:"transcriptContentUrl"`
	CreatedDateTime      string `json:"createdDateTime"`
}

// Profile is the subset of the /me resource we care about.
type Profile struct {
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// Mail is an HTML message to submit via the sendMail endpoint.
type Mail struct {
	Subject  string
	HTMLBody string
	To       []string
}

// ResolutionError indicates that a join URL could not be resolved to a
// meeting ID: the lookup failed or returned an empty result collection.
type ResolutionError struct {
	// JoinURL is the meeting join link that was looked up
	JoinURL string

	// StatusCode is the HTTP status of the lookup response, 0 if the
	// request itself failed
	StatusCode int

	// Body is a snippet of the response body for diagnosis
	Body string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("meeting lookup for %q failed: %v", e.JoinURL, e.Err)
	}
	if e.StatusCode != 0 && (e.StatusCode < 200 || e.StatusCode > 299) {
		return fmt.Sprintf("meeting lookup for %q failed: status %d: %s", e.JoinURL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("no meeting found for join URL %q", e.JoinURL)
}

// Unwrap implements the errors.Unwrap interface
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// DownloadError indicates that a transcript content URL was present but
// every Accept-header candidate failed to produce a usable body.
type DownloadError struct {
	// URL is the content-retrieval URL that was exhausted
	URL string

	// Err is the last observed error across the Accept candidates
	Err error
}

// Error implements the error interface
func (e *DownloadError) Error() string {
	return fmt.Sprintf("transcript content download from %s exhausted all content types: %v", e.URL, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *DownloadError) Unwrap() error {
	return e.Err
}

// VersionAttempt records the outcome of one API base version attempt during
// transcript fetching.
type VersionAttempt struct {
	// Version is the Graph API version tried ("v1.0" or "beta")
	Version string

	// StatusCode is the HTTP status of the transcript listing, 0 if the
	// request itself failed
	StatusCode int
}

// NoTranscriptError indicates that no transcript content was obtainable via
// any API version. It carries the per-version statuses to aid diagnosis.
type NoTranscriptError struct {
	// MeetingID is the meeting whose transcripts were requested
	MeetingID string

	// Attempts lists the API versions tried, in order
	Attempts []VersionAttempt
}

// Error implements the error interface
func (e *NoTranscriptError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.StatusCode == 0 {
			parts = append(parts, fmt.Sprintf("%s: request failed", a.Version))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: status %d", a.Version, a.StatusCode))
	}
	return fmt.Sprintf("no transcript content available for meeting %s (%s)", e.MeetingID, strings.Join(parts, ", "))
}
