package api

import (
	"net/http"
	"time"

	"rewards_quest_bot/internal/model"
	"rewards_quest_bot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

const passFinishedMessage = "pass_finished"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// StreamStatus pushes every finished pass to the websocket client, starting
// with the latest one if any.
func (r *statusRoutes) StreamStatus(c *gin.Context) {
	log := logger.Logger()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, unsubscribe := r.board.Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Info("websocket unexpected close", zap.Error(err))
				}
				return
			}
		}
	}()

	var sent uuid.UUID
	if last := r.board.Snapshot().Last; last != nil {
		if err := writePass(conn, last); err != nil {
			log.Info("error sending status", zap.Error(err))
			return
		}
		sent = last.ID
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case report, ok := <-updates:
			if !ok {
				return
			}
			// A pass finishing between Subscribe and Snapshot arrives here too.
			if report.ID == sent {
				continue
			}
			if err := writePass(conn, report); err != nil {
				log.Info("error sending status", zap.Error(err))
				return
			}
			sent = report.ID
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writePass(conn *websocket.Conn, report *model.PassReport) error {
	out, err := json.Marshal(Message{Type: passFinishedMessage, Data: toPassResponse(report)})
	if err != nil {
		return err
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, out)
}
