package summarize

import "fmt"

// maxTranscriptChars caps the transcript sent to the completion endpoint to
// guard against oversized payloads.
const maxTranscriptChars = 120000

// systemPrompt frames the model as a meeting summarizer producing output
// suitable for emailing to stakeholders who did not attend.
const systemPrompt = "You are an expert meeting summarizer. Produce a crisp, factual, " +
	"non-redundant summary suitable to email to stakeholders who did not attend. " +
	"Prefer bullets. Infer assignees/deadlines only if clear."

// userPrompt builds the per-run request around the (possibly truncated)
// transcript.
func userPrompt(transcript string) string {
	return fmt.Sprintf(`Below is a raw transcript from a Microsoft Teams call. Please produce:

1) Executive Summary (3-6 bullets)
2) Key Decisions (with rationale if stated)
3) Open Questions & Risks
4) Action Items (Assignee - Task - Due date if mentioned)
5) Notable Quotes (optional, brief)

Transcript:
---
%s
---
`, truncate(transcript, maxTranscriptChars))
}

// truncate limits s to at most n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
