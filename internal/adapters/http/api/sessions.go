package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/okian/mentor/internal/app/session"
	"github.com/okian/mentor/internal/domain/model"
	"github.com/okian/mentor/internal/domain/realtime"
	"github.com/okian/mentor/internal/domain/skill"
	"github.com/okian/mentor/pkg/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsReadLimit  = 512
)

// SessionDependencies drives live coaching sessions.
type SessionDependencies interface {
	StartSession(ctx context.Context, learnerID string, skillType skill.Type) (session.Snapshot, error)
	SubmitChunk(ctx context.Context, id string, sample realtime.Sample) (int, error)
	Session(ctx context.Context, id string) (session.Snapshot, error)
	SubscribeSession(ctx context.Context, id string) (<-chan model.ChunkResult, func(), error)
	EndSession(ctx context.Context, id string) (session.Summary, error)
}

// SessionHandler handles session lifecycle and result streaming.
type SessionHandler struct {
	deps     SessionDependencies
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logger.Discard(),
	}
}

func (h *SessionHandler) allowOrigins(origins []string) {
	if len(origins) == 0 {
		h.upgrader.CheckOrigin = nil
		return
	}
	allowed := slices.Clone(origins)
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}

type startSessionRequest struct {
	LearnerID string     `json:"learner_id" validate:"required,max=128"`
	SkillType skill.Type `json:"skill_type" validate:"required"`
}

type chunkRequest struct {
	Metrics realtime.Sample `json:"metrics" validate:"required"`
}

type chunkResponse struct {
	SessionID string `json:"session_id"`
	Seq       int    `json:"seq"`
	Status    string `json:"status"`
}

// HandleStart handles POST /sessions.
func (h *SessionHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_session"
	var req startSessionRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.StartSession(r.Context(), req.LearnerID, req.SkillType)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// HandleChunk handles POST /sessions/{id}/chunks. A full session queue
// answers 429 and the client should retry.
func (h *SessionHandler) HandleChunk(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_chunk"
	var req chunkRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	id := r.PathValue("id")
	seq, err := h.deps.SubmitChunk(r.Context(), id, req.Metrics)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, chunkResponse{SessionID: id, Seq: seq, Status: "accepted"})
}

// HandleGet handles GET /sessions/{id}.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleEnd handles DELETE /sessions/{id}.
func (h *SessionHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	sum, err := h.deps.EndSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleStream handles GET /sessions/{id}/stream. Each classified chunk is
// sent as one JSON text message; the server closes the socket when the
// session ends.
func (h *SessionHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	results, cancel, err := h.deps.SubscribeSession(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.String("session", id), logger.Error(err))
		return
	}
	defer conn.Close()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()
	go h.readPump(conn, stop)

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case res, ok := <-results:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			payload, err := json.Marshal(res)
			if err != nil {
				h.logger.Error(ctx, "encode chunk result", logger.String("session", id), logger.Error(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// readPump drains client frames so pongs and close frames are processed.
func (h *SessionHandler) readPump(conn *websocket.Conn, stop context.CancelFunc) {
	defer stop()
	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
