// Package api implements the HTTP REST API and WebSocket server for the
// Gray Logic AV routing core.
//
// This package provides:
//   - REST endpoints for sources, destinations, routers and routes
//   - Route and lock commands forwarded to the routing dispatcher
//   - WebSocket hub broadcasting route changes and router connectivity
//   - Bearer JWT authentication with ticket-based WebSocket auth
//   - Middleware stack (request ID, logging, recovery, CORS)
//   - Prometheus scrape endpoint and JSON system metrics
//
// # Architecture
//
// The server sits between control surfaces (touch panels, room controllers,
// web admin) and the dispatcher. Commands flow from the API into
// Dispatcher.MakeRoute; route and connectivity events flow back through the
// Hub, which is registered as a routing.Listener.
//
// # Security
//
// Protected routes require an HS256 bearer token signed with
// security.jwt.secret. Tokens are issued by the site's identity service, not
// by this process. WebSocket connections authenticate with single-use
// tickets so tokens never appear in URLs.
package api
