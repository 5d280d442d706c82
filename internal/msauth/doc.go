// Package msauth handles Microsoft Graph authentication for teamsbrief.
//
// It implements the OAuth2 device-code flow against Azure AD: the operator
// is shown a verification URL and a short code, and the flow blocks until
// sign-in completes in a browser. Acquired tokens are cached under the user
// cache directory and reused silently on later runs, with automatic refresh
// via the offline_access scope.
package msauth
