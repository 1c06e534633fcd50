// Package api implements the operator HTTP API and WebSocket server for Limbx Core.
//
// This package provides:
//   - REST endpoints to choose the active circuits and drive live instances by hand
//   - Read and player-assignment access to the outcome archive
//   - Player roster management
//   - WebSocket hub that relays engine events to operator screens
//   - Optional bearer-token auth with ticket-based WebSocket auth
//
// # Architecture
//
// The API server sits between operator screens and the circuit engine.
// Every mutating endpoint is a thin call into engine or roster; state
// transitions and their events stay in the engine. The hub implements
// engine.Notifier, so the same hub is handed to the engine at startup and
// every transition reaches subscribed screens.
//
// # Security
//
// When api.auth.jwt_secret is empty the API is open, which suits a closed
// venue network. With a secret set, protected routes need an HS256 bearer
// token minted by `limbx token`, and WebSocket connections use single-use
// tickets from POST /auth/ws-ticket so tokens never appear in URLs.
package api
