// Package errs defines the failure values raised by handlers and pipeline stages.
//
// Every failure that should reach the client as a 4xx is an *HTTPError with a
// machine-readable Type (and optionally a Code). Anything else is treated as
// unclassified by the error handler and masked as a 500.
//
//   - Return consistent error shapes to API clients ({type, message[, code]}).
//   - Decide per error whether its message is safe to expose.
//   - Play nicely with errors.Is / errors.As from the standard library.
package errs
