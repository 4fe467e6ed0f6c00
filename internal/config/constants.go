package config

import "time"

// Application constants
const (
	// Application Info
	AppName = "albumsvc"

	// EnvPrefix namespaces every environment variable, e.g. ALBUMSVC_SERVER_PORT
	EnvPrefix = "ALBUMSVC"

	// Network
	DefaultPort           = 3000
	DefaultRequestTimeout = 30 * time.Second

	// WebSocket
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketMaxMessageSize  = 64 * 1024
	WebSocketWriteWait       = 10 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketPingPeriod      = (WebSocketPongWait * 9) / 10

	// Log Settings
	MaxLogFileSizeMB  = 100
	MaxLogFileAge     = 30 // days
	MaxLogFileBackups = 10
)
