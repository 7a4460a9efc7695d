// Package secrets implements the account, session, and authorization core of
// the Secrets application: local username/password registration, Google and
// Facebook sign-in reconciled into a single account record, opaque server-side
// sessions, and the HTTP controllers that tie it all to routes.
package secrets
