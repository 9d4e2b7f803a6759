package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"spellarena/protocol"
	"spellarena/sim"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws    *websocket.Conn
	codec protocol.Codec

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClientConn(ws *websocket.Conn, codec protocol.Codec, queue int) *ClientConn {
	return &ClientConn{
		ws:    ws,
		codec: codec,
		send:  make(chan []byte, queue),
	}
}

func (c *ClientConn) Codec() protocol.Codec { return c.codec }

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		// 为了实时性，丢弃（防止阻塞 Tick）
		return false
	}
}

// Close 关闭发送队列；写协程退出时关闭底层连接
func (c *ClientConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定时 ping
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	frame := websocket.TextMessage
	if c.codec.Binary() {
		frame = websocket.BinaryMessage
	}
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(frame, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息并分发到房间；文本帧按 JSON 解析，二进制帧按 msgpack 解析
func (c *ClientConn) readPump(room *Room, id sim.Identity) {
	// 读泵退出时让角色下线
	defer room.LeavePlayer(id, c)
	c.ws.SetReadLimit(1 << 20) // 1MB
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		mt, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		codec := protocol.JSON
		if mt == websocket.BinaryMessage {
			codec = protocol.Msgpack
		}
		env, err := codec.DecodeEnvelope(payload)
		if err != nil {
			room.metrics.IncMalformed()
			room.log.Debugf("bad envelope from %s: %v", id, err)
			continue
		}
		room.Dispatch(id, env)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：?room=arena-1&token=<welcome 中的令牌>&codec=json|msgpack
func (m *RoomManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	codecName := q.Get("codec")
	if codecName == "" {
		codecName = m.cfg.Server.Codec
	}
	codec, err := protocol.CodecByName(codecName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, token := m.identities.resolve(q.Get("token"))

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	room := m.GetOrCreateRoom(q.Get("room"))
	client := NewClientConn(ws, codec, m.cfg.Server.SendQueue)

	sched, _ := room.world.Schedule()
	welcome, err := codec.Encode(protocol.MsgWelcome, protocol.Welcome{
		Identity:    string(id),
		Token:       token,
		TickSeconds: sched.Interval.Seconds(),
		Codec:       codec.Name(),
	})
	if err != nil {
		Log.Errorf("encode welcome: %v", err)
		_ = ws.Close()
		return
	}
	client.Enqueue(welcome)
	room.JoinPlayer(id, client)

	go client.writePump()
	go client.readPump(room, id)
}
