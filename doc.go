// Package accounts implements the account and session lifecycle core for a
// consumer storefront: registration, email verification, login, password
// reset and change, bearer token issuance, and inactivity-based session
// expiry.
//
// Lifecycle:
//   - Registration creates a pending record plus a short-lived 6-digit
//     verification challenge; re-registering an abandoned signup overwrites
//     the record in place. No session exists before verification.
//   - Verification, login, and password reset mint stateless HS256 bearer
//     tokens with a long absolute expiry. Validity is signature plus expiry
//     only; there is no revocation list.
//   - ClientSession pairs the persisted token/profile/activity state with a
//     Watchdog that force-ends the session after the idle limit, regardless
//     of the token's own expiry. Forced expiry is a normal transition and is
//     reported distinctly from a manual logout.
//
// Failures cross the public contract as typed results: rich errors carrying
// a closed set of text codes (see errors.go) that callers branch on instead
// of matching message strings. Email delivery is fire-and-forget and never
// fails an operation.
package accounts
