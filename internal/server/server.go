// Package server wires the HTTP routes and owns the server lifecycle.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/handlers"
)

type Server struct {
	config *config.Config
	router *gin.Engine
	http   *http.Server
}

// New builds the router and wraps it in an http.Server.
func New(h *handlers.Handlers, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), handlers.Observe())

	s := &Server{
		config: cfg,
		router: router,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	s.setupRoutes(h)
	return s
}

func (s *Server) setupRoutes(h *handlers.Handlers) {
	s.router.GET("/health", h.Health)
	s.router.GET("/ready", h.Ready)
	s.router.GET("/version", h.Version)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	// Catalog reads are public; a token still counts when present so admins
	// can see inactive entries.
	api.GET("/products", h.OptionalAuth(), h.ListProducts)
	api.GET("/products/:id", h.GetProduct)

	authed := api.Group("")
	authed.Use(h.RequireAuth())
	{
		authed.GET("/users/me", h.Me)

		authed.GET("/cart", h.GetCart)
		authed.POST("/cart/items", h.AddCartItem)
		authed.PATCH("/cart/items/:id", h.UpdateCartItem)
		authed.DELETE("/cart/items/:id", h.RemoveCartItem)

		authed.POST("/orders", h.Checkout)
		authed.GET("/orders", h.ListOrders)
		authed.GET("/orders/:id", h.GetOrder)
	}

	admin := api.Group("")
	admin.Use(h.RequireAuth(), h.RequireAdmin())
	{
		admin.POST("/products", h.CreateProduct)
		admin.PATCH("/products/:id", h.UpdateProduct)
		admin.DELETE("/products/:id", h.DeleteProduct)

		admin.GET("/admin/users", h.ListUsers)
		admin.PATCH("/admin/users/:id", h.SetAdminStatus)
	}
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
