// Package server holds the HTTP server configuration.
//
// The start command builds the fiber application; this package only defines
// the listen port and the API key that the auth middleware enforces.
package server
