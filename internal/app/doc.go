// Package app sequences the teamsbrief pipeline: obtain a transcript
// (local file or Teams meeting link), summarize it, render the HTML email
// and submit it via Graph. The CLI and the web form both drive this
// package.
package app
