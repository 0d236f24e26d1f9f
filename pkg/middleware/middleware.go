// Package middleware provides common gin middleware for the webinsight server.
//
// This package includes:
//   - Recovery: Panic recovery with JSON error response
//   - RequestID: Adds unique request ID to each request
//   - Logger: Structured request logging
//   - CORS: Cross-Origin Resource Sharing support
//   - BearerAuth: Static bearer token authentication
package middleware
