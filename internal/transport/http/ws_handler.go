package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-lobby/internal/config"
	"github.com/vovakirdan/wirechat-lobby/internal/core"
	"github.com/vovakirdan/wirechat-lobby/internal/proto"
)

const writeTimeout = 10 * time.Second

var errServerStopping = errors.New("server stopping")

// WSHandler upgrades HTTP connections and bridges them to a core.Session.
type WSHandler struct {
	hub *core.Hub
	cfg config.Config
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, cfg: cfg, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	opts := &websocket.AcceptOptions{OriginPatterns: h.cfg.OriginPatterns}
	if len(h.cfg.OriginPatterns) == 0 {
		opts.InsecureSkipVerify = true
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	client := core.NewClient(uuid.NewString(), h.cfg.SendBuffer)
	session, err := h.hub.Connect(client)
	if err != nil {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer session.Close()

	logger := h.log.With().Str("component", "ws").Str("client_id", client.ID).Logger()
	logger.Debug().Str("remote", r.RemoteAddr).Msg("ws connection accepted")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	loops := []func(context.Context) error{
		func(ctx context.Context) error { return h.readLoop(ctx, conn, session, &logger) },
		func(ctx context.Context) error { return h.writeLoop(ctx, conn, client, &logger) },
		func(ctx context.Context) error { return h.pingLoop(ctx, conn) },
		func(ctx context.Context) error {
			select {
			case <-h.hub.Done():
				return errServerStopping
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
	errCh := make(chan error, len(loops))
	for _, loop := range loops {
		go func(loop func(context.Context) error) {
			errCh <- loop(ctx)
		}(loop)
	}

	err = <-errCh
	cancel() // stop the other goroutines
	for range len(loops) - 1 {
		<-errCh
	}

	status := websocket.StatusNormalClosure
	reason := "closing"
	if errors.Is(err, errServerStopping) || errors.Is(err, core.ErrHubClosed) {
		status = websocket.StatusGoingAway
		reason = "server shutting down"
		err = nil
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			logger.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *core.Session, logger *zerolog.Logger) error {
	client := session.Client()
	limiter := newRateLimiter(h.cfg.RateLimit)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if !limiter.allow() {
			client.Send(core.NewErrorEvent(core.ErrCodeRateLimited, "too many messages, slow down"))
			continue
		}

		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			logger.Warn().Err(err).Int("bytes", len(data)).Msg("malformed envelope")
			client.Send(core.NewErrorEvent(core.ErrCodeMalformedEnvelope, "envelope must be a JSON object with command and payload"))
			continue
		}

		cmd, protoErr := inboundToCommand(inbound)
		if protoErr != nil {
			logger.Warn().Str("command", inbound.Command).Str("code", protoErr.Code).Msg(protoErr.Msg)
			client.Send(core.NewErrorEvent(protoErr.Code, protoErr.Msg))
			continue
		}
		if err := session.Submit(*cmd); err != nil {
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, logger *zerolog.Logger) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, outboundFromEvent(event))
			cancel()
			if err != nil {
				logger.Error().Err(err).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// pingLoop closes the connection once a ping goes unanswered for two intervals.
func (h *WSHandler) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	interval := h.cfg.PingInterval
	if interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 2*interval)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}
