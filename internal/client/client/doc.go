// Package client talks to the todo HTTP API on behalf of the CLI.
//
// HTTPClient keeps the token pair issued at login, sends the access token as
// a bearer header and, when a request comes back 401, rotates the pair once
// through /auth/refresh and retries. Failures are reported as sentinel errors
// (ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrConflict, ErrValidation)
// that callers match with errors.Is; *APIError carries the server's message.
package client
