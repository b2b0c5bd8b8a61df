package util

import (
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
)

// ShutdownChannelDistributor - For letting multiple listeners receive the internal shutdown signal.
type ShutdownChannelDistributor struct {
	mutex          sync.Mutex
	hasShutdown    bool
	outputChannels []chan<- bool
}

// NewShutdownChannelDistributor - Create a distributor which shuts down when the input channel receives a signal.
func NewShutdownChannelDistributor(input <-chan os.Signal) *ShutdownChannelDistributor {
	shutdown := &ShutdownChannelDistributor{}
	if input != nil {
		go func() {
			signal, ok := <-input
			if !ok {
				return
			}
			log.Infof("Received signal: %v", signal)
			shutdown.Shutdown()
		}()
	}
	return shutdown
}

// AddListener - Add a channel to duplicate input to.
// Return false if the shutdown signal has already been sent.
func (shutdown *ShutdownChannelDistributor) AddListener(output chan<- bool) bool {
	shutdown.mutex.Lock()
	defer shutdown.mutex.Unlock()
	if shutdown.hasShutdown {
		return false
	}
	shutdown.outputChannels = append(shutdown.outputChannels, output)
	return true
}

// Shutdown - Send shutdown signal to all listeners. Only the first call has any effect.
func (shutdown *ShutdownChannelDistributor) Shutdown() {
	shutdown.mutex.Lock()
	defer shutdown.mutex.Unlock()
	if shutdown.hasShutdown {
		return
	}
	shutdown.hasShutdown = true
	log.Infof("Sending shutdown signal to %v listeners", len(shutdown.outputChannels))
	for _, output := range shutdown.outputChannels {
		output <- true
	}
}

// HasShutdown - If the shutdown signal has been sent.
func (shutdown *ShutdownChannelDistributor) HasShutdown() bool {
	shutdown.mutex.Lock()
	defer shutdown.mutex.Unlock()
	return shutdown.hasShutdown
}
