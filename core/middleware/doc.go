// Package middleware groups the HTTP middleware of the Fiber application.
//
//   - auth: API key check protecting every route but the swagger docs.
//   - rayid: per-request id stored in the context and echoed in the
//     X-Ray-ID response header, picked up by logger.WithRayID.
package middleware
