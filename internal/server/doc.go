// Package server provides the web-form frontend for the summarize
// pipeline and a dedicated Prometheus metrics server.
//
// The web server renders a form for submitting a meeting join link or a
// pasted transcript together with recipients and a subject, runs the
// pipeline on submission, and shows the result or an error banner. The
// metrics server runs on its own port so operational metrics stay off
// the user-facing listener.
package server
