package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"time"

	"dive-roast/chat"
	"dive-roast/db"
	"dive-roast/dive"
	"dive-roast/models"
	"dive-roast/session"
	"dive-roast/utils"

	socketio "github.com/googollee/go-socket.io"
	"github.com/mdobak/go-xerrors"
)

type socketController struct {
	store  session.Store
	dbc    db.DBClient
	gemini *chat.GeminiClient
}

func newSocketController(store session.Store, dbc db.DBClient, gemini *chat.GeminiClient) *socketController {
	return &socketController{store: store, dbc: dbc, gemini: gemini}
}

// handleChat streams one roast turn back to the socket as chatChunk events
// followed by chatComplete.
func (c *socketController) handleChat(socket socketio.Conn, payload string) {
	logger := utils.GetLogger()
	ctx := context.Background()

	if payload == "" {
		logger.ErrorContext(ctx, "no data received in chat event")
		socket.Emit("chatError", map[string]string{"message": "no message received"})
		return
	}

	var req models.ChatRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "failed to parse chat payload", slog.Any("error", err))
		socket.Emit("chatError", map[string]string{"message": "invalid chat payload"})
		return
	}
	if req.Message == "" {
		socket.Emit("chatError", map[string]string{"message": "message is required"})
		return
	}

	if c.gemini == nil {
		socket.Emit("chatError", map[string]string{"message": "chat is not available: model not configured"})
		return
	}

	sess, err := resolveSession(c.store, c.dbc, req.SessionID)
	if err != nil {
		socket.Emit("chatError", map[string]string{"message": "session not found, upload a dive log first"})
		return
	}

	log.Printf("[handleChat] Starting turn for socket %s, session %s\n", socket.ID(), sess.ID)
	logger.InfoContext(ctx, "chat turn started",
		slog.String("socketID", socket.ID()),
		slog.String("sessionID", sess.ID),
		slog.Int("messageLength", len(req.Message)),
	)
	started := time.Now()

	var full string
	err = c.gemini.ChatStream(ctx, c.store, sess, req.Message, func(chunk string) error {
		full += chunk
		socket.Emit("chatChunk", models.ChatChunk{SessionID: sess.ID, Text: chunk})
		return nil
	})
	if err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "chat turn failed", slog.Any("error", err))
		socket.Emit("chatError", map[string]string{"message": "failed to generate a response"})
		return
	}

	socket.Emit("chatComplete", models.ChatComplete{SessionID: sess.ID, Message: full})
	logger.InfoContext(ctx, "chat turn complete",
		slog.String("socketID", socket.ID()),
		slog.String("sessionID", sess.ID),
		slog.Float64("latency_ms", time.Since(started).Seconds()*1000),
	)
}

// handleDashboard runs the analysis pipeline for a session and emits the
// dashboard in a single event.
func (c *socketController) handleDashboard(socket socketio.Conn, payload string) {
	logger := utils.GetLogger()
	ctx := context.Background()

	var req models.DashboardRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			err := xerrors.New(err)
			logger.ErrorContext(ctx, "failed to parse dashboard payload", slog.Any("error", err))
			socket.Emit("dashboardError", map[string]string{"message": "invalid dashboard payload"})
			return
		}
	}
	if req.SessionID == "" {
		socket.Emit("dashboardError", map[string]string{"message": "sessionId is required"})
		return
	}

	sess, err := resolveSession(c.store, c.dbc, req.SessionID)
	if err != nil {
		socket.Emit("dashboardError", map[string]string{"message": "session not found, upload a dive log first"})
		return
	}

	features := dive.ExtractFeatures(sess.Samples)
	if len(features) == 0 {
		socket.Emit("dashboardError", map[string]string{"message": "no rated dives in log"})
		return
	}

	started := time.Now()
	dashboard := dive.BuildDashboard(features)

	if c.gemini != nil {
		c.gemini.SummarizeProblematicDives(ctx, dashboard.TopProblematicDives)
	} else {
		for i := range dashboard.TopProblematicDives {
			dashboard.TopProblematicDives[i].Summary = chat.FallbackSummary(dashboard.TopProblematicDives[i])
		}
	}

	logger.InfoContext(ctx, "dashboard built",
		slog.String("socketID", socket.ID()),
		slog.String("sessionID", sess.ID),
		slog.Int("diveCount", len(features)),
		slog.Float64("latency_ms", time.Since(started).Seconds()*1000),
	)
	socket.Emit("dashboard", dashboard)
}
