// Package net shares the board read-only over the local network: a websocket
// stream of zone snapshots, a rendered PNG of the latest state and mDNS
// discovery of other boards.
package net

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net"
	"net/http"
	"sync"
	"time"

	"ThermalBoard/internal/heatmap"
	"ThermalBoard/internal/logger"
	"ThermalBoard/internal/metrics"
	"ThermalBoard/internal/state"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 8
)

// Snapshot is the state pushed to every viewer.
type Snapshot struct {
	Seq      uint64          `json:"seq"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Range    state.TempRange `json:"range"`
	Selected string          `json:"selected,omitempty"`
	Zones    []state.Zone    `json:"zones"`
}

// SnapshotOf copies the current session for publishing.
func SnapshotOf(s *state.SessionState, width, height int) Snapshot {
	sel, _ := s.Selected()
	return Snapshot{
		Width:    width,
		Height:   height,
		Range:    s.Range(),
		Selected: sel,
		Zones:    s.Zones(),
	}
}

// peer is one connected viewer.
type peer struct {
	conn *websocket.Conn
	send chan []byte
}

// Mirror fans snapshots out to websocket viewers. Publish may be called from
// any goroutine.
type Mirror struct {
	mu    sync.RWMutex
	peers map[string]*peer
	seq   uint64
	last  Snapshot
	frame []byte

	renderMu sync.Mutex
	session  *state.SessionState
	comp     *heatmap.Compositor

	upgrader websocket.Upgrader
	log      logger.Logger
	metrics  *metrics.Manager
}

// NewMirror returns an idle mirror. m may be nil.
func NewMirror(log logger.Logger, m *metrics.Manager) *Mirror {
	if log == nil {
		log = logger.Nop()
	}
	return &Mirror{
		peers: make(map[string]*peer),
		last:  Snapshot{Range: state.DefaultRange, Zones: []state.Zone{}},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Viewers are on the local network and open the page from anywhere.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:     log,
		metrics: m,
	}
}

// Peers is the number of connected viewers.
func (m *Mirror) Peers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.peers)
}

// Last returns the most recent snapshot.
func (m *Mirror) Last() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Publish stores snap and sends it to every viewer. Viewers that fall behind
// are disconnected.
func (m *Mirror) Publish(snap Snapshot) {
	if snap.Zones == nil {
		snap.Zones = []state.Zone{}
	}
	m.mu.Lock()
	m.seq++
	snap.Seq = m.seq
	data, err := json.Marshal(snap)
	if err != nil {
		m.mu.Unlock()
		m.log.Error(context.Background(), "encode snapshot", logger.Error(err))
		return
	}
	m.last = snap
	m.frame = data
	var slow []string
	for addr, p := range m.peers {
		select {
		case p.send <- data:
		default:
			slow = append(slow, addr)
		}
	}
	m.mu.Unlock()

	for _, addr := range slow {
		m.log.Warn(context.Background(), "dropping slow viewer", logger.String("addr", addr))
		m.remove(addr)
	}
}

func (m *Mirror) add(addr string, p *peer) {
	m.mu.Lock()
	m.peers[addr] = p
	if m.frame != nil {
		p.send <- m.frame
	}
	n := len(m.peers)
	m.mu.Unlock()
	m.log.Info(context.Background(), "viewer connected", logger.String("addr", addr), logger.Int("viewers", n))
}

func (m *Mirror) remove(addr string) {
	m.mu.Lock()
	p, ok := m.peers[addr]
	if ok {
		delete(m.peers, addr)
		close(p.send)
	}
	m.mu.Unlock()
	if ok {
		m.log.Info(context.Background(), "viewer disconnected", logger.String("addr", addr))
	}
}

// Handler serves /ws, /zones, /snapshot.png and, when metrics are enabled,
// /metrics.
func (m *Mirror) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", m.serveWS)
	mux.HandleFunc("GET /zones", m.serveZones)
	mux.HandleFunc("GET /snapshot.png", m.serveSnapshot)
	if m.metrics != nil {
		mux.Handle("GET /metrics", m.metrics.Handler())
	}
	return mux
}

func (m *Mirror) serveZones(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m.Last()); err != nil {
		m.log.Error(r.Context(), "write zones", logger.Error(err))
	}
}

// serveSnapshot renders the latest snapshot over the plain background.
func (m *Mirror) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := m.Last()
	if snap.Width <= 0 || snap.Height <= 0 {
		snap.Width, snap.Height = state.SampleCanvasWidth, state.SampleCanvasHeight
	}

	m.renderMu.Lock()
	if m.comp == nil {
		m.session = state.NewSessionState(snap.Range)
		m.comp = heatmap.NewCompositor(snap.Width, snap.Height, heatmap.DefaultOptions(), nil)
	}
	m.session.SetRange(snap.Range.Min, snap.Range.Max)
	m.session.Restore(snap.Zones)
	if snap.Selected != "" {
		_ = m.session.Select(snap.Selected)
	}
	if cw, ch := m.comp.Size(); cw != snap.Width || ch != snap.Height {
		m.comp.Resize(snap.Width, snap.Height)
	}
	var buf bytes.Buffer
	err := png.Encode(&buf, m.comp.Composite(m.session, nil))
	m.renderMu.Unlock()

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (m *Mirror) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	addr := conn.RemoteAddr().String()
	p := &peer{conn: conn, send: make(chan []byte, sendBuffer)}
	m.add(addr, p)
	go m.writePump(p)
	m.readPump(addr, p)
}

// readPump discards viewer input and notices when the viewer goes away.
func (m *Mirror) readPump(addr string, p *peer) {
	defer m.remove(addr)
	p.conn.SetReadLimit(512)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := p.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (m *Mirror) writePump(p *peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()
	for {
		select {
		case data, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Serve runs the mirror on ln until ctx is cancelled.
func (m *Mirror) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	m.log.Info(ctx, "mirror listening", logger.String("addr", ln.Addr().String()))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		m.closeAll()
		return err
	case err := <-errc:
		m.closeAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (m *Mirror) closeAll() {
	m.mu.Lock()
	addrs := make([]string, 0, len(m.peers))
	for addr := range m.peers {
		addrs = append(addrs, addr)
	}
	m.mu.Unlock()
	for _, addr := range addrs {
		m.remove(addr)
	}
}

// Port returns the TCP port ln listens on.
func Port(ln net.Listener) int {
	if a, ok := ln.Addr().(*net.TCPAddr); ok {
		return a.Port
	}
	return 0
}
