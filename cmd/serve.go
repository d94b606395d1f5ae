package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1handlers "github.com/deepgram/minichat/internal/api/v1/handlers"
	v1mware "github.com/deepgram/minichat/internal/api/v1/middleware"
	"github.com/deepgram/minichat/internal/config"
	"github.com/deepgram/minichat/internal/connections"
	"github.com/deepgram/minichat/internal/services"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API over HTTP and WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svcs := services.InitializeServices(ctx, cmd.OutOrStdout())
			defer svcs.Close()

			conns := connections.NewManager(connections.TimeoutsFor(config.GetWebSocketPongWait()))
			server := &http.Server{
				Addr:              config.GetServerAddr(),
				Handler:           setupRouter(svcs, conns),
				ReadHeaderTimeout: 10 * time.Second,
			}
			// Shutdown does not wait for hijacked connections
			server.RegisterOnShutdown(conns.CloseAll)

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", server.Addr).Bool("auth", config.AuthEnabled()).Msg("Server starting")
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().String("addr", ":8080", "Listen address.")
	_ = viper.BindPFlag("SERVER_ADDR", cmd.Flags().Lookup("addr"))
	return cmd
}

func setupRouter(svcs *services.Services, conns *connections.Manager) http.Handler {
	r := mux.NewRouter()
	v1handlers.RegisterV1Routes(r, svcs, conns)
	return v1mware.CORS(config.GetCORSAllowedOrigins())(r)
}
