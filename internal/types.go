package internal

import (
	"sjsage522/buildorderworker/logger"
	"sjsage522/buildorderworker/services/cache"
	"sjsage522/buildorderworker/services/publisher"
)

// Dependencies holds all service dependencies
type Dependencies struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup closes the services that hold connections
func (d *Dependencies) Cleanup() {
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			logger.LogError("publisher", err, "failed to close publisher")
		}
	}
}
