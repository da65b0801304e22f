// Package providers contains the dependency injection providers for the
// tento server.
package providers

import "time"

// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
const shutdownTimeout = 30 * time.Second
