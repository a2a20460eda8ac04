// Package webapp is a batteries-included shell for services built on the
// respond pipeline: environment-driven configuration, zap logging, optional
// OpenTelemetry tracing, request identifiers and an fx-managed HTTP server.
//
// A minimal service:
//
//	webapp.NewApp[webapp.BaseEnvironment](func(m *respond.ServeMux) {
//	    m.HandleFunc("GET /items", listItems)
//	}).Run()
//
// The routing function can request any types provided via fx options, at
// minimum the [*respond.ServeMux] it registers routes on.
package webapp
