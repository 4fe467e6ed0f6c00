// Package websocket serves the /ws echo endpoint.
//
// Every upgraded connection gets its own Session. A session reads one
// message, writes exactly one text reply ("reply: <text>" for valid UTF-8
// text, a fixed diagnostic for anything else) and only then reads the next
// message. Sessions share nothing with each other.
//
// Handler owns the sessions it starts: Shutdown sends a going-away close
// frame to each open peer and waits for every session goroutine to return.
package websocket
