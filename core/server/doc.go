// Package server holds the HTTP server configuration.
//
// The server itself is a Fiber app assembled in cmd/start.go; this package
// only owns the settings (listen port, admin API key) so that core/config
// can aggregate them without importing the command layer.
package server
