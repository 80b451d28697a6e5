// Package config loads runtime configuration for the account CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c, -config or
//     $XBCLI_CONFIG. Keys left out of the file keep their defaults.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// The merged result is checked by (*Config).Validate.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-t int      request timeout (seconds)
//	-o string   output format: text or json
//
// # JSON schema
//
// The JSON loader uses timex.Duration, so the timeout can be either a
// string like "5s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "5s",
//	  "output": "json"
//	}
package config
