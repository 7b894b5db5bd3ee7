// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package link provides the byte transports a test session talks over.
//
// A Channel is one of serial, TCP client, TCP server or UDP. Channels never
// block the caller on send: stream transports hand writes to a per
// connection writer goroutine, and inbound payloads are reported through a
// Handler from the channel's own reader goroutines.
//
// The Manager owns at most one active Channel. Switch always tears down the
// current channel before activating the next one.
package link
