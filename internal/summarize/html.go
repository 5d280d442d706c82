package summarize

import (
	"strings"
	"time"
)

// snippetChars is how much of the transcript is appended below the summary.
const snippetChars = 1000

// timeNow is swapped out in tests.
var timeNow = time.Now

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

func esc(s string) string {
	return htmlEscaper.Replace(s)
}

// RenderEmailHTML converts a markdown-ish summary into the HTML email body:
// "##"/"###" lines become h3 headings, "- "/"* " runs become bullet lists,
// everything else becomes paragraphs. A transcript snippet and a UTC
// timestamp footer are appended.
func RenderEmailHTML(summary, transcript string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:Segoe UI,Arial,sans-serif; line-height:1.5">` + "\n")

	inList := false
	closeList := func() {
		if inList {
			b.WriteString("</ul>\n")
			inList = false
		}
	}

	for _, line := range strings.Split(summary, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "##"):
			closeList()
			heading := strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
			b.WriteString("<h3>" + esc(heading) + "</h3>\n")
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			if !inList {
				b.WriteString("<ul>\n")
				inList = true
			}
			b.WriteString("<li>" + esc(strings.TrimSpace(trimmed[2:])) + "</li>\n")
		case trimmed == "":
			closeList()
			b.WriteString("<br/>\n")
		default:
			closeList()
			b.WriteString("<p>" + esc(trimmed) + "</p>\n")
		}
	}
	closeList()

	b.WriteString("<hr/>\n")
	b.WriteString("<p><strong>Transcript snippet (first ~1,000 chars):</strong></p>\n")
	b.WriteString("<pre style='white-space:pre-wrap'>" + esc(truncate(transcript, snippetChars)) + "</pre>\n")
	b.WriteString("<p style='color:#888'>Sent " + esc(timeNow().UTC().Format("2006-01-02 15:04 UTC")) + "</p>\n")
	b.WriteString("</div>")

	return b.String()
}
