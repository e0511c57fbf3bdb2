package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rewards_quest_bot/internal/model"
	"rewards_quest_bot/internal/service"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type streamMessage struct {
	Type string       `json:"type"`
	Data passResponse `json:"data"`
}

func readPass(t *testing.T, conn *websocket.Conn) streamMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg streamMessage
	require.NoError(t, json.Unmarshal(p, &msg))
	return msg
}

func TestStreamStatus(t *testing.T) {
	board := boardWithPass()
	srv := httptest.NewServer(newTestRouter(board, nil, "secret"))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/status/ws"

	_, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	header := http.Header{}
	header.Set("Authorization", "Bearer secret")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	first := readPass(t, conn)
	assert.Equal(t, passFinishedMessage, first.Type)
	assert.Equal(t, 2, first.Data.Accounts)

	next := &model.PassReport{
		ID:      uuid.New(),
		Results: []model.CycleResult{{AccountIndex: 1, AccountOK: true}},
	}
	board.Update(next)

	second := readPass(t, conn)
	assert.Equal(t, next.ID.String(), second.Data.ID)
	assert.Equal(t, 1, second.Data.AccountsOK)
}

// racedBoard replays the latest pass on the subscription, as when a pass
// finishes between Subscribe and Snapshot.
type racedBoard struct {
	*service.StatusBoard
	updates chan *model.PassReport
}

func (b *racedBoard) Subscribe() (<-chan *model.PassReport, func()) {
	b.updates <- b.Snapshot().Last
	return b.updates, func() {}
}

func TestStreamStatus_SkipsAlreadySentPass(t *testing.T) {
	board := &racedBoard{StatusBoard: boardWithPass(), updates: make(chan *model.PassReport, 2)}
	srv := httptest.NewServer(newTestRouter(board, nil, ""))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/status/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readPass(t, conn)
	assert.Equal(t, board.Snapshot().Last.ID.String(), first.Data.ID)

	next := &model.PassReport{ID: uuid.New()}
	board.updates <- next

	second := readPass(t, conn)
	assert.Equal(t, next.ID.String(), second.Data.ID)
}
