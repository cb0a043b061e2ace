// Package httpserver exposes the topic registry as an HTTP surface: REST
// endpoints for the control plane and a WebSocket byte stream per open
// handle for the data plane.
//
// # Control Plane
//
//	POST   /topics                 create a topic {"name": "..."}
//	GET    /topics                 list attribute snapshots
//	GET    /topics/{name}          attribute readback for one topic
//	PATCH  /topics/{name}/config   set {"slot_size": n, "slot_count": n}
//	DELETE /topics/{name}          remove a topic (refused while handles are open)
//
// # Data Plane
//
//	GET /topics/{name}/stream?mode=read   subscribe: each published span
//	                                      arrives as a binary message
//	GET /topics/{name}/stream?mode=write  publish: each binary message is
//	                                      written whole, looping on short
//	                                      writes
//
// Opening a stream opens a topic handle of the corresponding kind; closing
// the socket closes the handle. With nonblock=1 the stream fails fast with a
// policy-violation close code instead of suspending. With hup=1 a read
// stream closes (going away) once it has drained and the last writer has
// departed.
//
// Probes are mounted at GET /health/live and GET /health/ready.
//
// Errors are returned as a JSON envelope {"code", "message"} with the status
// mapping defined in errors.go.
package httpserver
