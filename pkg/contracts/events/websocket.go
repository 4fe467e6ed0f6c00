// Package events contains the wire contract of the /ws echo session.
package events

import "unicode/utf8"

const (
	// ReplyPrefix is prepended to every echoed text message
	ReplyPrefix = "reply: "

	// NotTextReply answers binary frames and text frames that are not valid UTF-8
	NotTextReply = "Error: message is not text"
)

// SessionState is the lifecycle state of one duplex session
type SessionState string

const (
	// SessionStateOpen reads messages and writes replies
	SessionStateOpen SessionState = "open"
	// SessionStateClosing is entered after a write failure; nothing else is sent
	SessionStateClosing SessionState = "closing"
	// SessionStateClosed is final
	SessionStateClosed SessionState = "closed"
)

// Reply returns the frame written in response to one inbound message.
// text reports whether the inbound frame was a text frame.
func Reply(text bool, payload []byte) string {
	if !text || !utf8.Valid(payload) {
		return NotTextReply
	}
	return ReplyPrefix + string(payload)
}
