// Package sec provides authentication and security primitives for the web
// application.
//
// # Authentication
//
// Sessions are carried in a signed JWT stored in the "authToken" cookie
// (httpOnly, SameSite=Strict, Secure outside dev mode). The session
// middleware verifies the token on every request; a missing or invalid token
// downgrades the request to anonymous rather than rejecting it, and route
// gates decide whether an anonymous or under-privileged request may proceed.
// Credentials are validated against bcrypt password hashes stored in the
// database.
//
// # Components
//
//   - [SignToken], [ParseToken]: session token codec
//   - [Session]: cookie-reading echo middleware attaching an [Identity]
//   - [RequireAuthenticated], [RequireAdmin], [RequireStaff]: route gates
//   - [HashPassword], [ComparePassword]: bcrypt password hashing utilities
package sec
