package server

import (
	"database/sql"
	"fmt"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/minebridge/minebridge/internal/api"
	"github.com/minebridge/minebridge/internal/auth"
	"github.com/minebridge/minebridge/internal/bridge"
	"github.com/minebridge/minebridge/internal/channel"
	"github.com/minebridge/minebridge/internal/config"
	"github.com/minebridge/minebridge/internal/gateway"
	"github.com/minebridge/minebridge/internal/message"
	"github.com/minebridge/minebridge/internal/sink"
)

type Server struct {
	cfg    *config.Config
	db     *sql.DB
	router chi.Router
	log    *zap.Logger
}

func New(cfg *config.Config, db *sql.DB, log *zap.Logger) (*Server, error) {
	authSvc := auth.NewService(db, cfg.APIToken)
	if err := authSvc.EnsureDefaultUser(cfg.AdminUser, cfg.AdminPass); err != nil {
		return nil, fmt.Errorf("ensure default user: %w", err)
	}

	channels := channel.NewStore(db, cfg.DefaultPreset)
	registry := gateway.NewRegistry()
	messageSink := sink.NewWebhook(cfg.SinkURL, log)

	bridgeSvc := bridge.NewService(registry, messageSink, channels, log)

	gatewayHandler := gateway.NewHandler(
		registry,
		cfg.GatewayToken,
		func(event message.ChatEvent) { bridgeSvc.HandleChatEvent(event) },
		func(channelKey, serverName string) {
			if err := channels.Ensure(channelKey, serverName); err != nil {
				log.Error("channel auto-registration failed",
					zap.String("channel_key", channelKey),
					zap.Error(err))
			}
		},
		log,
	)

	authHandler := api.NewAuthHandler(authSvc)
	bridgeHandler := api.NewBridgeHandler(bridgeSvc)
	channelHandler := api.NewChannelHandler(channels, registry)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(api.AuthMiddleware(authSvc))

			r.Post("/auth/logout", authHandler.Logout)

			r.Route("/channels", func(r chi.Router) {
				r.Get("/", channelHandler.List)
				r.Route("/{key}", func(r chi.Router) {
					r.Get("/", channelHandler.Get)
					r.Put("/", channelHandler.Update)
					r.Post("/rich-text", bridgeHandler.RichText)
					r.Post("/rcon", bridgeHandler.Rcon)
				})
			})
		})
	})

	// WebSocket gateway for companion mods (auth via access token)
	r.Get("/ws/minecraft", gatewayHandler.Handle)

	return &Server{cfg: cfg, db: db, router: r, log: log}, nil
}

func (s *Server) Router() chi.Router {
	return s.router
}
