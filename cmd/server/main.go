package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/sketchpad/internal/auth"
	"github.com/inamate/sketchpad/internal/collab"
	"github.com/inamate/sketchpad/internal/config"
	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/drawing"
	"github.com/inamate/sketchpad/internal/editor"
	"github.com/inamate/sketchpad/internal/export"
	mw "github.com/inamate/sketchpad/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	presets, err := config.LoadPresets(cfg.PresetsFile)
	if err != nil {
		slog.Error("load presets", "error", err)
		os.Exit(1)
	}

	// The hub's room factory and the service share canvas settings.
	var drawingService *drawing.Service
	hub := collab.NewHub(func(id string) *document.Drawing {
		return drawingService.NewDrawing(id)
	}, editor.WithToolbar(presets.Toolbar))
	hub.SetRoomLimits(cfg.MaxRooms, cfg.RoomIdleTTL)
	drawingService = drawing.NewService(hub, drawing.Canvas{
		Width:      cfg.CanvasWidth,
		Height:     cfg.CanvasHeight,
		Background: cfg.CanvasBackground,
	})
	go hub.Run()

	if err := drawingService.OpenPlayground(context.Background()); err != nil {
		slog.Error("open playground", "error", err)
		os.Exit(1)
	}

	drawingHandler := drawing.NewHandler(drawingService)
	exportHandler := export.NewHandler(hub)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))
	r.Use(auth.Identity)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/drawings", drawingHandler.List).Methods("GET")
	r.HandleFunc("/drawings", drawingHandler.Create).Methods("POST", "OPTIONS")
	r.HandleFunc("/drawings/{drawingId}", drawingHandler.Get).Methods("GET")
	r.HandleFunc("/drawings/{drawingId}/export/{format}", exportHandler.ExportDrawing).Methods("GET")

	// Stateless conversions for the single-user editor
	r.HandleFunc("/export/{format}", exportHandler.ExportDocument).Methods("POST", "OPTIONS")
	r.HandleFunc("/import/svg", exportHandler.ImportSVG).Methods("POST", "OPTIONS")

	// WebSocket endpoint
	r.HandleFunc("/ws/drawing/{drawingId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, cfg.Origins())
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stopping the hub closes every client's queue so write pumps return.
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "playground", drawing.PlaygroundID)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, origins []string) {
	drawingID := mux.Vars(r)["drawingId"]
	if err := drawing.ValidateID(drawingID); err != nil {
		http.Error(w, "invalid drawing id", http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	displayName := auth.DisplayNameFromContext(r.Context())

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := collab.NewClient(hub, conn, userID, displayName, drawingID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
