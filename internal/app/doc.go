// Package app provides the application service layer.
//
// Service.Handle composes alias resolution and redirect resolution into the response
// contract seen by the transport: a 301 with Location, or a 404, both carrying the
// resolved domain. It holds no mutable state and is safe for concurrent use.
package app
