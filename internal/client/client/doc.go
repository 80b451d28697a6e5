// Package client talks to the xbackend AuthService over gRPC.
//
// GRPCClient keeps the current access/refresh pair in memory, attaches the
// access token to protected calls through a unary interceptor and, when the
// server reports an expired access token, refreshes the pair once and
// retries. gRPC status codes are mapped to the sentinel errors in errors.go.
package client
