package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rubiojr/hubscout/pkg/api"
	"github.com/rubiojr/hubscout/pkg/log"
	"github.com/urfave/cli/v3"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the search API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Listen address (overrides config)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx, c.String("config"), c.String("listen"))
		},
	}
}

func runServer(ctx context.Context, configPath, listenAddr string) error {
	logger := log.ForService("serve")

	client, cfg, cleanup, err := newClientFromConfig(configPath)
	if err != nil {
		return err
	}
	currentCleanup := cleanup

	if listenAddr == "" {
		listenAddr = cfg.ListenAddr
	}

	server := api.NewServer(client)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	handler := api.CorsMiddleware(api.RequestIDMiddleware(logger)(mux))
	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	// Watch the config file so token and tuning changes are picked up
	// without a restart. Editors often replace files atomically, hence
	// the rename/remove handling.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warnf("failed to create config file watcher: %v", err)
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warnf("failed to close config file watcher: %v", err)
			}
		}()
		if err := watcher.Add(configPath); err != nil {
			logger.Warnf("failed to watch config file %s: %v", configPath, err)
		} else {
			logger.Infof("watching config file for changes: %s", configPath)
		}
	}

	reload := func() {
		newClient, _, newCleanup, err := newClientFromConfig(configPath)
		if err != nil {
			logger.Errorf("reloading configuration: %v", err)
			return
		}
		server.SetClient(newClient)
		currentCleanup()
		currentCleanup = newCleanup
		logger.Infof("configuration reloaded")
	}

	shutdown := func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.CancelAllRequests("server shutting down")
		err := httpServer.Shutdown(shutdownCtx)
		currentCleanup()
		return err
	}

	var watchEvents chan fsnotify.Event
	var watchErrors chan error
	if watcher != nil {
		watchEvents = watcher.Events
		watchErrors = watcher.Errors
	}

	for {
		select {
		case <-ctx.Done():
			return shutdown()
		case err := <-errCh:
			currentCleanup()
			return fmt.Errorf("http server: %w", err)
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				logger.Infof("received SIGHUP, reloading configuration")
				reload()
			case syscall.SIGINT, syscall.SIGTERM:
				logger.Infof("shutting down")
				return shutdown()
			}
		case event, ok := <-watchEvents:
			if !ok {
				watchEvents = nil
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					time.Sleep(200 * time.Millisecond)
					if _, err := os.Stat(configPath); os.IsNotExist(err) {
						logger.Warnf("config file removed, keeping previous configuration")
						continue
					}
					if err := watcher.Add(configPath); err != nil {
						logger.Warnf("failed to re-add config file to watcher: %v", err)
					}
				} else {
					time.Sleep(100 * time.Millisecond)
				}
				logger.Infof("config file changed (%s), reloading", event.Op)
				reload()
			}
		case err, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			logger.Warnf("config file watcher error: %v", err)
		}
	}
}
