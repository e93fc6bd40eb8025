package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"dive-roast/chat"
	"dive-roast/db"
	"dive-roast/dive"
	"dive-roast/models"
	"dive-roast/parser"
	"dive-roast/rag"
	"dive-roast/session"
	"dive-roast/utils"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/mdobak/go-xerrors"
)

type apiError struct {
	Message string `json:"message"`
}

const maxUploadBytes = 64 << 20

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiError{Message: message})
}

func setCORSHeaders(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Credentials", "true")
}

// resolveSession fetches a live session, falling back to samples persisted
// in the database when the in-memory registry misses (e.g. after a
// restart). A restored session gets its chat context re-seeded.
func resolveSession(store session.Store, dbc db.DBClient, id string) (*session.Session, error) {
	sess, err := store.Get(id)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, session.ErrNotFound) || dbc == nil {
		return nil, err
	}

	samples, dbErr := dbc.GetDiveLog(id)
	if dbErr != nil || len(samples) == 0 {
		return nil, session.ErrNotFound
	}

	sess = store.Restore(id, samples)
	if features := dive.ExtractFeatures(samples); len(features) > 0 {
		if err := store.AppendHistory(sess.ID, chat.SeedContext(features)...); err != nil {
			return nil, err
		}
	}
	return store.Get(sess.ID)
}

func newUploadHandler(store session.Store, dbc db.DBClient) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := context.Background()
		setCORSHeaders(w, "POST")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			logger.ErrorContext(ctx, "failed to parse multipart form", slog.Any("error", err))
			writeJSONError(w, http.StatusBadRequest, "invalid upload payload")
			return
		}

		src, header, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "no dive log file provided")
			return
		}
		defer src.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		p := parser.ForExtension(ext)
		if p == nil {
			writeJSONError(w, http.StatusBadRequest, "unsupported dive log format: "+ext)
			return
		}

		samples, err := p.Parse(src)
		if err != nil {
			err := xerrors.New(err)
			logger.ErrorContext(ctx, "failed to parse dive log", slog.Any("error", err))
			writeJSONError(w, http.StatusUnprocessableEntity, "unable to parse dive log")
			return
		}
		if len(samples) == 0 {
			writeJSONError(w, http.StatusUnprocessableEntity, "no dive samples found in log")
			return
		}

		sess := store.Create(samples)

		diveNumbers, _ := dive.GroupByDive(samples)
		features := dive.ExtractFeatures(samples)
		if len(features) > 0 {
			if err := store.AppendHistory(sess.ID, chat.SeedContext(features)...); err != nil {
				logger.ErrorContext(ctx, "failed to seed chat context", slog.Any("error", err))
			}
		}

		if dbc != nil {
			if err := dbc.StoreDiveLog(sess.ID, samples); err != nil {
				logger.WarnContext(ctx, "failed to persist dive log",
					slog.String("sessionID", sess.ID), slog.Any("error", err))
			}
		}

		log.Printf("[HTTP] Dive log uploaded: session=%s, file=%s, samples=%d, dives=%d\n",
			sess.ID, header.Filename, len(samples), len(diveNumbers))

		writeJSON(w, http.StatusOK, models.UploadResponse{
			SessionID:   sess.ID,
			DiveCount:   len(diveNumbers),
			DiveNumbers: diveNumbers,
		})
	}
}

func newDashboardHandler(store session.Store, dbc db.DBClient, gemini *chat.GeminiClient) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		setCORSHeaders(w, "GET")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			writeJSONError(w, http.StatusBadRequest, "session query parameter is required")
			return
		}

		sess, err := resolveSession(store, dbc, sessionID)
		if err != nil {
			writeJSONError(w, http.StatusNotFound, "session not found")
			return
		}

		features := dive.ExtractFeatures(sess.Samples)
		if len(features) == 0 {
			writeJSONError(w, http.StatusUnprocessableEntity, "no rated dives in log")
			return
		}

		started := time.Now()
		dashboard := dive.BuildDashboard(features)

		if gemini != nil {
			gemini.SummarizeProblematicDives(ctx, dashboard.TopProblematicDives)
		} else {
			for i := range dashboard.TopProblematicDives {
				dashboard.TopProblematicDives[i].Summary = chat.FallbackSummary(dashboard.TopProblematicDives[i])
			}
		}

		logger.InfoContext(ctx, "dashboard built",
			slog.String("sessionID", sessionID),
			slog.Int("diveCount", len(features)),
			slog.Int("problematicCount", len(dashboard.TopProblematicDives)),
			slog.Float64("latency_ms", time.Since(started).Seconds()*1000),
		)
		writeJSON(w, http.StatusOK, dashboard)
	}
}

type sessionInfo struct {
	SessionID string `json:"sessionId"`
	DiveCount int    `json:"diveCount"`
	Turns     int    `json:"turns"`
}

func newSessionsHandler(store session.Store, dbc db.DBClient) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := context.Background()
		setCORSHeaders(w, "GET, DELETE")

		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusNoContent)
			return
		case http.MethodGet:
			infos := make([]sessionInfo, 0)
			for _, id := range store.List() {
				sess, err := store.Get(id)
				if err != nil {
					continue
				}
				order, _ := dive.GroupByDive(sess.Samples)
				history, _ := store.History(sess.ID)
				infos = append(infos, sessionInfo{
					SessionID: sess.ID,
					DiveCount: len(order),
					Turns:     len(history),
				})
			}
			writeJSON(w, http.StatusOK, infos)
		case http.MethodDelete:
			sessionID := r.URL.Query().Get("session")
			if sessionID == "" {
				writeJSONError(w, http.StatusBadRequest, "session query parameter is required")
				return
			}
			store.Delete(sessionID)
			if dbc != nil {
				if err := dbc.DeleteDiveLog(sessionID); err != nil {
					logger.WarnContext(ctx, "failed to delete persisted dive log",
						slog.String("sessionID", sessionID), slog.Any("error", err))
				}
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		default:
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func newHealthHandler(search *rag.SearchClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w, "GET")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		searchStatus := "up"
		if search == nil {
			searchStatus = "disabled"
		} else if err := search.HealthCheck(); err != nil {
			searchStatus = "down"
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"search": searchStatus,
		})
	}
}

func serve(protocol, port string) {
	protocol = strings.ToLower(protocol)
	var allowOriginFunc = func(r *http.Request) bool {
		return true
	}

	store := session.NewMemoryStore()

	dbc, err := db.NewDBClient()
	if err != nil {
		log.Printf("WARNING: database unavailable, sessions will not survive restarts: %v\n", err)
		dbc = nil
	} else {
		defer dbc.Close()
	}

	var search *rag.SearchClient
	if strings.EqualFold(utils.GetEnv("SEARCH_ENABLED", "true"), "true") {
		search = rag.NewSearchClient(utils.GetEnv("SEARCH_SERVICE_URL", "http://localhost:5003"))
		if err := search.HealthCheck(); err != nil {
			log.Printf("WARNING: DAN search service not reachable: %v\n", err)
			log.Println("The server will start but DAN search tools will fail until the service is up.")
		} else {
			log.Println("DAN search service is available")
		}
	}

	gemini, err := chat.NewGeminiClient(context.Background(), dbc, search)
	if err != nil {
		log.Printf("WARNING: Gemini unavailable, chat and narrative summaries are disabled: %v\n", err)
		gemini = nil
	}

	controller := newSocketController(store, dbc, gemini)

	server := socketio.NewServer(&engineio.Options{
		PingTimeout:  60 * time.Second,
		PingInterval: 25 * time.Second,
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: allowOriginFunc,
			},
			&polling.Transport{
				CheckOrigin: allowOriginFunc,
			},
		},
	})

	server.OnConnect("/", func(socket socketio.Conn) error {
		socket.SetContext("")
		connURL := socket.URL()
		log.Printf("CONNECTED: %s, transport: %s, remote addr: %s\n", socket.ID(), connURL.String(), socket.RemoteAddr())
		return nil
	})

	server.OnEvent("/", "chat", func(socket socketio.Conn, msg string) {
		log.Printf("chat event received from %s, data length: %d\n", socket.ID(), len(msg))
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("panic in handleChat for socket %s: %v\n", socket.ID(), r)
					socket.Emit("chatError", map[string]string{"message": "internal server error during chat"})
				}
			}()
			controller.handleChat(socket, msg)
		}()
	})

	server.OnEvent("/", "requestDashboard", func(socket socketio.Conn, msg string) {
		log.Printf("requestDashboard received from %s\n", socket.ID())
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("panic in handleDashboard for socket %s: %v\n", socket.ID(), r)
					socket.Emit("dashboardError", map[string]string{"message": "internal server error during analysis"})
				}
			}()
			controller.handleDashboard(socket, msg)
		}()
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.Println("meet error:", e)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Printf("Socket disconnected - ID: %s, Reason: %s\n", s.ID(), reason)
	})

	go func() {
		if err := server.Serve(); err != nil {
			log.Fatalf("socketio listen error: %s\n", err)
		}
	}()
	defer server.Close()

	serveHTTPS := protocol == "https"

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", server)
	mux.HandleFunc("/api/divelog/upload", newUploadHandler(store, dbc))
	mux.HandleFunc("/api/dashboard", newDashboardHandler(store, dbc, gemini))
	mux.HandleFunc("/api/sessions", newSessionsHandler(store, dbc))
	mux.HandleFunc("/api/health", newHealthHandler(search))
	mux.Handle("/", http.FileServer(http.Dir("static")))

	serveHTTP(server, serveHTTPS, port, mux)
}

func serveHTTP(socketServer *socketio.Server, serveHTTPS bool, port string, handler http.Handler) {
	if handler == nil {
		handler = socketServer
	}
	if serveHTTPS {
		httpsAddr := ":" + port
		httpsServer := &http.Server{
			Addr: httpsAddr,
			TLSConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			Handler: handler,
		}

		cert_key := utils.GetEnv("CERT_KEY", "")
		cert_file := utils.GetEnv("CERT_FILE", "")
		if cert_key == "" || cert_file == "" {
			log.Fatal("Missing cert")
		}

		log.Printf("Starting HTTPS server on %s\n", httpsAddr)
		if err := httpsServer.ListenAndServeTLS(cert_file, cert_key); err != nil {
			log.Fatalf("HTTPS server ListenAndServeTLS: %v", err)
		}
	}

	log.Printf("Starting HTTP server on port %v", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("HTTP server ListenAndServe: %v", err)
	}
}
