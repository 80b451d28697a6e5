package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key that
// carries the bearer access token.
const AuthorizationHeaderName = "authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// AuthServiceName is the fully qualified gRPC service name.
const AuthServiceName = "xbackend.v1.AuthService"

// AuthServiceMethod returns the full gRPC method path for name.
func AuthServiceMethod(name string) string {
	return "/" + AuthServiceName + "/" + name
}
