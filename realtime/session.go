package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"taskroom/bus"
	"taskroom/contract"
	"taskroom/domain"
	"taskroom/moderation"

	"github.com/abadojack/whatlanggo"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

// session is the per-connection state machine: it joins its project group
// while connecting, relays messages in both directions while joined, and
// leaves the group exactly once when closed.
//
// The inbound and outbound directions run as two independently scheduled
// loops so that a slow write never stalls message intake and vice versa.
type session struct {
	conn         *websocket.Conn
	bus          contract.Bus
	sink         *bus.ChannelSink
	moderator    *moderation.Moderator
	principal    domain.Principal
	projectID    int
	groupKey     domain.GroupKey
	connectionID string
	log          *slog.Logger
	closeOnce    sync.Once
}

// run drives the session from the joined state to its terminal close.
// The bus join has already happened when run is called.
func (s *session) run(ctx context.Context) {
	defer s.close()

	ack := connectionEstablishedMessage{
		Type:    typeConnectionEstablished,
		Message: fmt.Sprintf("Connected to project room %d", s.projectID),
	}
	if err := s.conn.WriteJSON(ack); err != nil {
		s.log.Warn("connection lost before acknowledgment", "connection_id", s.connectionID)
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeLoop(ctx)
		// A write failure is fatal to the session: closing here unblocks
		// the read loop waiting on the connection.
		s.close()
	}()

	s.readLoop(ctx)
	cancel()
	wg.Wait()
}

// close runs the terminal state transition: leave the group, then release
// the transport. Reentrant close signals are no-ops.
func (s *session) close() {
	s.closeOnce.Do(func() {
		s.bus.Leave(s.groupKey, s.connectionID)
		_ = s.conn.Close()
		s.log.Info("session closed", "connection_id", s.connectionID, "group", s.groupKey)
	})
}

// readLoop relays inbound client messages onto the bus until the client
// disconnects or the transport fails.
func (s *session) readLoop(ctx context.Context) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read error", "connection_id", s.connectionID, "error", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.log.Debug("unparseable client message ignored", "connection_id", s.connectionID)
			continue
		}

		if msg.Type != typeChatMessage {
			// Unrecognized kinds are ignored silently
			continue
		}

		s.publishChat(ctx, msg.Text)
	}
}

func (s *session) publishChat(ctx context.Context, text string) {
	censored, hits := s.moderator.Censor(text)
	if len(hits) > 0 {
		info := whatlanggo.Detect(text)
		s.log.Info("chat message censored",
			"group", s.groupKey,
			"hits", len(hits),
			"lang", info.Lang.Iso6391(),
		)
	}

	s.bus.Publish(ctx, s.groupKey, domain.ChatEvent{
		Kind:      domain.KindChatMessage,
		Sender:    s.principal.SenderName(),
		Text:      censored,
		ProjectID: s.projectID,
		At:        time.Now().UTC(),
	})
}

// writeLoop relays bus deliveries to the client and keeps the connection
// alive with pings.
func (s *session) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case e := <-s.sink.Events():
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(outboundFromEvent(e, time.Now())); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
