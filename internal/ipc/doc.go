// Package ipc exposes the engine over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management, request/response DTOs, and conversions
// between catalog models and lightweight wire representations. The server
// embeds the engine while the client is a thin call wrapper so CLI commands
// fail fast when cadenzad is offline.
//
// Reuse these types when adding new RPC endpoints to keep the protocol stable
// and compatible with existing command implementations.
package ipc
