// Package realtime exposes the project chat rooms over WebSocket.
package realtime

import (
	"log/slog"
	"net/http"
	"strconv"

	"taskroom/auth"
	"taskroom/bus"
	"taskroom/contract"
	"taskroom/domain"
	"taskroom/moderation"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Handler authenticates and upgrades incoming chat connections and hands
// them to a session. It holds no per-connection state itself.
type Handler struct {
	bus        contract.Bus
	resolver   *auth.Resolver
	moderator  *moderation.Moderator
	upgrader   websocket.Upgrader
	bufferSize int
	log        *slog.Logger
}

func NewHandler(b contract.Bus, resolver *auth.Resolver, moderator *moderation.Moderator,
	bufferSize int, log *slog.Logger) *Handler {
	return &Handler{
		bus:       b,
		resolver:  resolver,
		moderator: moderator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The token in the query string is the credential; the
			// browser origin carries no trust of its own here.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		bufferSize: bufferSize,
		log:        log,
	}
}

// ServeProjectChat handles GET /ws/projects/:project_id.
//
// Order matters during the connecting phase: the routing parameter is
// checked first (a malformed id aborts before any upgrade or join), the
// principal is resolved next (no locks held), then the session joins its
// group before the upgrade completes so no event published during the
// handshake can slip past a freshly established connection.
func (h *Handler) ServeProjectChat(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	raw := ps.ByName("project_id")
	projectID, err := strconv.Atoi(raw)
	if err != nil || projectID <= 0 {
		h.log.Error("chat connection aborted, invalid project id", "raw", raw)
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	principal := domain.Anonymous()
	if token := r.URL.Query().Get("token"); token != "" {
		principal = h.resolver.Resolve(token)
	}

	groupKey := domain.GroupKeyForProject(projectID)
	connectionID := uuid.NewString()
	sink := bus.NewChannelSink(h.bufferSize)

	h.bus.Join(groupKey, connectionID, sink)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The join must not outlive a failed handshake
		h.bus.Leave(groupKey, connectionID)
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.log.Info("chat connection established",
		"connection_id", connectionID,
		"group", groupKey,
		"sender", principal.SenderName(),
	)

	s := &session{
		conn:         conn,
		bus:          h.bus,
		sink:         sink,
		moderator:    h.moderator,
		principal:    principal,
		projectID:    projectID,
		groupKey:     groupKey,
		connectionID: connectionID,
		log:          h.log,
	}
	s.run(r.Context())
}
