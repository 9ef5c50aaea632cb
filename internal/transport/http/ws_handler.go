package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"quizlink-service/internal/app"
	"quizlink-service/internal/domain"
)

// WSHandler streams ranked leaderboard snapshots to quiz viewers. Each
// connection runs its own polling refresher; the interval timer dies with
// the connection so a closed tab never keeps polling a stale quiz id.
type WSHandler struct {
	scores   app.ScoreLister
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewWSHandler(scores app.ScoreLister, interval time.Duration) *WSHandler {
	return &WSHandler{
		scores:   scores,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type leaderboardPayload struct {
	QuizID  string                    `json:"quizId"`
	Entries []domain.LeaderboardEntry `json:"entries"`
}

// ServeWS upgrades the request and pushes a ranked snapshot on every poll
// tick until the client goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				cancel()
				return
			}
		}
	}()

	refresher := app.NewRefresher(h.scores, quizID, h.interval, func(entries []domain.LeaderboardEntry) {
		select {
		case send <- outboundMessage{Type: "leaderboard", Payload: leaderboardPayload{QuizID: quizID, Entries: entries}}:
		case <-ctx.Done():
		}
	})

	refresherDone := make(chan struct{})
	go func() {
		defer close(refresherDone)
		refresher.Run(ctx)
	}()

	// Read loop exists only to observe the close handshake.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	<-refresherDone
	close(send)
	<-writerDone
}
