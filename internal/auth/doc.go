// Package auth holds the credential primitives shared by the HTTP layer:
// bcrypt password hashing and stateless JWT bearer tokens.
//
// Tokens carry only the user id as their subject and an absolute expiry.
// Nothing is stored server side, so a token stays usable until it expires
// or the signing secret changes.
package auth
