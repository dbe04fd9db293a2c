// Package cli provides the interactive todo command-line client.
//
// It wires configuration, the HTTP API client and a small REPL. Typical flow:
// register or log in, then manage todos with list, add, show, done and
// delete. Passwords are read from the terminal without echo.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends. See App and runREPL for details.
package cli
