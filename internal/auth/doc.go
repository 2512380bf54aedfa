// Package auth provides bearer token handling and authorisation for the
// Gray Logic AV API.
//
// Tokens are HS256 JWTs minted by an operator tool (see cmd/graylogic-av-token)
// or an upstream identity service sharing the secret. Each token carries a
// subject and a role. Roles map statically to permissions:
//
//	viewer   → route:read
//	operator → route:read, route:operate
//	admin    → route:read, route:operate, destination:lock, preset:manage,
//	           audit:read
//
// There is no user database. Revocation is by secret rotation.
package auth
