// Package http implements the HTTP transport layer of the annotation server.
//
// It exposes route wiring, request handlers, and middleware used by the REST
// API. Cross-cutting concerns such as request tracing, access logging, and
// response compression are handled in this package before requests are
// delegated to the service layer.
//
// The optimistic-concurrency contract lives here: a mutation whose token no
// longer matches is answered with 409 and a structured body carrying the
// server's current updated_at, never with a bare error page.
package http
