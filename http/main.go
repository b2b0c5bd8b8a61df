package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"dev.hon.one/nbsync/common"
	"dev.hon.one/nbsync/util"
)

// StartServer - Start HTTP server in the background, serving metrics from the gatherer.
func StartServer(waitGroup *sync.WaitGroup, shutdown *util.ShutdownChannelDistributor, gatherer prometheus.Gatherer) {
	shutdownChannel := make(chan bool, 1)
	if !shutdown.AddListener(shutdownChannel) {
		return
	}
	waitGroup.Add(1)

	// Configure
	server := &http.Server{
		Addr:    common.GlobalConfig.HTTPEndpoint,
		Handler: NewServeMux(gatherer),
	}

	// Run
	shutdownDone := make(chan struct{})
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("HTTP server failed")
		}
		close(shutdownDone)
		log.Info("HTTP server stopped")
		waitGroup.Done()
	}()

	// Shutdown
	go func() {
		select {
		case <-shutdownChannel:
			shutdownContext, shutdownContextCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownContextCancel()
			if err := server.Shutdown(shutdownContext); err != nil {
				log.WithError(err).Warn("HTTP server shutdown failed")
			}
		case <-shutdownDone:
		}
	}()

	log.Infof("HTTP server started: %v", common.GlobalConfig.HTTPEndpoint)
}

// NewServeMux - Handlers for the info page and metrics.
func NewServeMux(gatherer prometheus.Gatherer) *http.ServeMux {
	metricsHandler := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	var mainServeMux http.ServeMux
	mainServeMux.HandleFunc("/", handleOtherRequest)
	mainServeMux.HandleFunc("/metrics", func(response http.ResponseWriter, request *http.Request) {
		log.WithFields(log.Fields{
			"endpoint": "metrics",
			"client":   request.RemoteAddr,
			"url":      request.URL,
		}).Trace("Request")

		// Delegate final handling to Prometheus
		metricsHandler.ServeHTTP(response, request)
	})
	return &mainServeMux
}

func handleOtherRequest(response http.ResponseWriter, request *http.Request) {
	if request.URL.Path == "/" {
		fmt.Fprintf(response, "%s version %s by %s.\n", common.AppName, common.AppVersion, common.AppAuthor)
		fmt.Fprintf(response, "\nPaths:\n")
		fmt.Fprintf(response, "- Metrics: /metrics\n")
	} else {
		http.Error(response, "404 - Page not found.\n", http.StatusNotFound)
	}
}
