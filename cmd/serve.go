package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	httpHdlr "ragchat/handler/http"
	"ragchat/src/core/chat"
	"ragchat/src/infrastructure/events"
	"ragchat/src/infrastructure/log"
	"ragchat/src/storage/weaviate"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat server",
	Long:  `The serve command starts an HTTP server that streams retrieval-augmented answers over SSE.`,
	Run:   RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer(cmd *cobra.Command, args []string) {
	if err := log.Setup(viper.GetBool("server.development")); err != nil {
		log.Error(err, "Failed to configure logging")
		return
	}

	c, err := buildComponents()
	if err != nil {
		log.Error(err, "Failed to build components")
		return
	}
	defer c.Close()

	// In-process pubsub carries the optional session event stream, separate
	// from the per-request answer streams.
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	defer pubsub.Close()
	bus := events.NewBus(pubsub, events.DefaultTopic)

	eventsCtx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()
	messages, err := pubsub.Subscribe(eventsCtx, events.DefaultTopic)
	if err != nil {
		log.Error(err, "Failed to subscribe to session events")
		return
	}
	go func() {
		for msg := range messages {
			log.Debug("session event", "payload", string(msg.Payload))
			msg.Ack()
		}
	}()

	opts := sessionOptions()
	handler := httpHdlr.NewHandler(
		func() *chat.Session {
			return chat.NewSession(c.retriever, c.generator, opts, bus)
		},
		map[string]httpHdlr.Pinger{
			"weaviate": func(ctx context.Context) error {
				_, err := c.weaviateSDK.QueryVectors(ctx, viper.GetString("weaviate.class"), nil, weaviate.QueryConfig{Limit: 1})
				return err
			},
			"elasticsearch": c.keyword.Ping,
			"ollama": func(ctx context.Context) error {
				_, err := c.ollamaClient.Models(ctx)
				return err
			},
		},
	)

	// Setup gin router
	r := gin.Default()

	// Register routes
	handler.RegisterRoutes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
			return
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Parse shutdown timeout
	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
}
