package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/pixeliter/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for raster statistics and rescaling",
	Long: `Start an HTTP server that provides a REST API over raw raster samples.

The request body carries the samples, the query string their layout.

Examples:
  # Start server on default port 8080
  pixeliter serve

  # Start server on custom port
  pixeliter serve --port 3000

  # Start server with custom bind address and a 16 MiB body limit
  pixeliter serve --bind 0.0.0.0 --port 8080 --max-body 16777216`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server configuration
	serveCmd.Flags().StringP("bind", "b", "localhost", "bind address")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().Duration("timeout", 30*time.Second, "request timeout")
	serveCmd.Flags().Int64("max-body", server.DefaultMaxBody, "maximum request body size in bytes")

	// Bind flags to viper
	viper.BindPFlag("server.bind", serveCmd.Flags().Lookup("bind"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.timeout", serveCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("server.max-body", serveCmd.Flags().Lookup("max-body"))
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}

	bind := viper.GetString("server.bind")
	port := viper.GetInt("server.port")
	timeout := viper.GetDuration("server.timeout")
	addr := fmt.Sprintf("%s:%d", bind, port)

	apiServer := server.NewServer(version, viper.GetInt64("server.max-body"), log)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.NewRouter(apiServer, timeout),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	// Graceful shutdown
	go func() {
		<-cmd.Context().Done()

		log.Infof("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Errorf("Server shutdown error: %v", err)
		}
	}()

	log.Infof("Starting pixeliter server on %s", addr)
	log.Infof("Health check: http://%s/api/v1/health", addr)
	log.Infof("Stats endpoint: http://%s/api/v1/stats", addr)
	log.Infof("Rescale endpoint: http://%s/api/v1/rescale", addr)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %v", err)
	}
	return nil
}
