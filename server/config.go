package server

import "time"

// Config is the tunable part of the server
type Config struct {
	IP   string // bind address, v4
	Port int    // 0 lets the kernel pick, see Server.Port
	Dir  string // document root

	Workers     int           // 0 means concurrent.DefaultPoolSize()
	IdleTimeout time.Duration // 0 means engine.DefaultIdleTimeout
}
