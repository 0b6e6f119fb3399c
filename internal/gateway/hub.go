package gateway

import (
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub bridges Redis pub/sub to WebSocket clients. Each connection
// identifies its (already authenticated) user via the userId query
// parameter and optionally a document room; the hub subscribes the
// matching channels and relays messages in order. Clients submit edits
// through the HTTP API, not the socket, so the read side only watches
// for disconnect.
type Hub struct {
	rdb *redis.Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{rdb: rdb}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	channels := []string{UserChannel(userID)}
	if docID := r.URL.Query().Get("documentId"); docID != "" {
		channels = append(channels, RoomChannel(docID))
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Errorf("websocket upgrade for %s: %v", userID, err)
		return
	}
	defer conn.Close()
	glog.Infof("client %s connected, subscribing %v", userID, channels)

	ctx := r.Context()
	pubsub := h.rdb.Subscribe(ctx, channels...)
	defer pubsub.Close()

	go func() {
		for msg := range pubsub.Channel() {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				glog.V(1).Infof("write to %s: %v", userID, err)
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			glog.Infof("client %s disconnected: %v", userID, err)
			return
		}
	}
}
