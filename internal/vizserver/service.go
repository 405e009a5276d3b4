// Package vizserver streams a running playground to browsers over
// websockets.
//
// One goroutine owns the playground and advances it on a ticker; it is
// the only goroutine that touches the world. Each frame is encoded once
// and fanned out through a Hub to every connected watcher. Viewer input
// travels the other way over a channel and is applied between frames.
package vizserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/scene"
)

const (
	writeWait  = 5 * time.Second
	commandBuf = 32
)

type VizService struct {
	addr   string
	cfg    *config.Config
	preset string
	logger *log.Logger

	hub      *Hub
	commands chan ClientMessage
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	latest []byte
}

func NewVizService(addr string, cfg *config.Config, preset string, logger *log.Logger) *VizService {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &VizService{
		addr:     addr,
		cfg:      cfg,
		preset:   preset,
		logger:   logger,
		hub:      NewHub(),
		commands: make(chan ClientMessage, commandBuf),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (viz *VizService) Hub() *Hub { return viz.hub }

func (viz *VizService) info() SceneInfo {
	return SceneInfo{
		Preset:  viz.preset,
		Width:   viz.cfg.Scene.Width,
		Height:  viz.cfg.Scene.Height,
		FPS:     viz.cfg.Run.FPS,
		Gravity: viz.cfg.Gravity,
	}
}

// Handler routes the HTTP API. Every route gets combined access logging.
func (viz *VizService) Handler() http.Handler {
	access := viz.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel}).Writer()

	router := mux.NewRouter()
	router.Handle("/", handlers.CombinedLoggingHandler(access,
		http.HandlerFunc(viz.home),
	)).Methods("GET")
	router.Handle("/scene", handlers.CombinedLoggingHandler(access,
		http.HandlerFunc(viz.scene),
	)).Methods("GET")
	router.Handle("/frame", handlers.CombinedLoggingHandler(access,
		http.HandlerFunc(viz.frame),
	)).Methods("GET")
	router.Handle("/ws", handlers.CombinedLoggingHandler(access,
		http.HandlerFunc(viz.websocket),
	)).Methods("GET")

	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(router)
}

// Run drives the playground until ctx is done.
func (viz *VizService) Run(ctx context.Context) error {
	pg, err := scene.New(viz.cfg, scene.WithLogger(viz.logger.WithPrefix("scene")))
	if err != nil {
		return err
	}
	defer pg.Close()

	go viz.hub.Run(ctx)

	ticker := time.NewTicker(time.Second / time.Duration(max(1, viz.cfg.Run.FPS)))
	defer ticker.Stop()

	var pointer *dynamo.Vec2
	debug := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-viz.commands:
			switch cmd.Type {
			case "pointer":
				p := dynamo.V(cmd.X, cmd.Y)
				if p.IsFinite() {
					pointer = &p
				}
			case "reset":
				if err := pg.Reset(); err != nil {
					viz.logger.Error("reset failed", "err", err)
				}
			case "steps":
				pg.SetStepsPerFrame(cmd.Steps)
			case "debug":
				debug = !debug
			default:
				viz.logger.Debug("unknown command", "type", cmd.Type)
			}
		case <-ticker.C:
			f := pg.Frame(pointer)
			msg, err := json.Marshal(snapshot(pg, f, debug))
			if err != nil {
				viz.logger.Error("encoding frame", "err", err)
				continue
			}
			viz.mu.Lock()
			viz.latest = msg
			viz.mu.Unlock()
			viz.hub.Broadcast(ctx, msg)
		}
	}
}

// ListenAndServe runs the playground and the HTTP server until ctx is
// done.
func (viz *VizService) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: viz.addr, Handler: viz.Handler()}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- viz.Run(ctx) }()
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), writeWait)
		defer stop()
		_ = srv.Shutdown(shutdownCtx)
	}()

	viz.logger.Info("viz listening", "addr", viz.addr, "preset", viz.preset)
	err := srv.ListenAndServe()
	cancel()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	if runErr := <-errc; err == nil && !errors.Is(runErr, context.Canceled) {
		err = runErr
	}
	return err
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (viz *VizService) home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"scene":    viz.info(),
		"watchers": viz.hub.Len(),
		"routes":   []string{"/scene", "/frame", "/ws"},
	})
}

func (viz *VizService) scene(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, viz.info())
}

func (viz *VizService) frame(w http.ResponseWriter, r *http.Request) {
	viz.mu.RLock()
	latest := viz.latest
	viz.mu.RUnlock()
	if latest == nil {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(latest)
}

func (viz *VizService) websocket(w http.ResponseWriter, r *http.Request) {
	c, err := viz.upgrader.Upgrade(w, r, nil)
	if err != nil {
		viz.logger.Warn("upgrade", "err", err)
		return
	}
	defer c.Close()

	ctx := r.Context()
	watcher, err := viz.hub.Join(ctx)
	if err != nil {
		return
	}
	defer viz.hub.Leave(context.Background(), watcher)
	viz.logger.Debug("watcher joined", "id", watcher.ID(), "watchers", viz.hub.Len())

	if err := c.WriteJSON(InitMessage{Type: "init", Data: viz.info()}); err != nil {
		viz.logger.Warn("could not send init message", "err", err)
		return
	}

	// mandatory to notice when the socket is closed client side
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var msg ClientMessage
			if err := c.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case viz.commands <- msg:
			default:
				viz.logger.Warn("dropping viewer command", "type", msg.Type)
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg, ok := <-watcher.Messages():
			if !ok {
				_ = c.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			_ = c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}
