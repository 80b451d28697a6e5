// Package cli provides the interactive account command-line client.
//
// It wires configuration and the gRPC client into a small REPL. Commands
// cover the whole account lifecycle:
//   - register / login / logout / refresh
//   - verify (email verify token) / resend
//   - forgot / reset (password reset by emailed token)
//   - passwd (change password) / me (show profile) / avatar (upload picture)
//
// Passwords are read from the terminal without echo.
package cli
