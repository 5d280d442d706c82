// Package summarize generates meeting summaries from raw transcripts.
//
// A Summarizer wraps an OpenAI-compatible chat-completion endpoint; the
// transcript is length-capped before sending. RenderEmailHTML converts the
// resulting markdown-ish summary into the HTML body of the summary email.
package summarize
