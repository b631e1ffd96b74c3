// Package auth implements the credential and token manager: registration
// and login validation, bcrypt password handling, bearer-token issuance
// and resolution, and the gin middleware that gates protected routes.
//
// Tokens are opaque 256-bit random values stored in their own relation.
// A user holds at most one live token; each login or registration
// replaces all prior tokens, so a second login silently signs out the
// first session.
package auth
