package session

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Vitadek/ownworld/internal/engine"
	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
)

// upgrader follows gorilla/websocket's own canonical construction; the
// buffer sizes match one JSON envelope comfortably without over-
// allocating per connection. Origin checking is left to a reverse
// proxy in front of this process.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16
	outboundBuffer = 64
)

// Session is one authenticated-or-not client connection. Every field
// that crosses from the hub's tick goroutine into the write pump
// travels over the outbound channel as a ServerEnvelope value that the
// write pump encodes;
// Session never hands out a pointer into engine state.
type Session struct {
	id         int64
	conn       *websocket.Conn
	remoteAddr string
	outbound   chan ServerEnvelope
	closed     chan struct{}
	closeOnce  sync.Once

	authenticated bool
	playerID      int64
	playerName    string
}

func (s *Session) send(env ServerEnvelope) {
	select {
	case s.outbound <- env:
	case <-s.closed:
	default:
		// Outbound buffer is full: the client is not draining fast
		// enough. Drop the session rather than block the tick loop.
		s.Close()
	}
}

// Close is idempotent; it may be called from the read pump, the write
// pump, or the hub's tick goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.conn.Close()
	})
}

type pendingCommand struct {
	sessionID int64
	env       ClientEnvelope
}

// Hub owns the session map, the incoming command queue, and the
// engine. A single mutex guards the session map, the incoming queue,
// and the next-session-id counter; the engine itself is touched only
// from RunTick, which the owning goroutine (cmd/ownworldd's tick
// loop) calls strictly between ticks, so no lock is needed around
// World access.
type Hub struct {
	Engine *engine.Engine
	Log    zerolog.Logger

	MaxPlayers int

	mu            sync.Mutex
	sessions      map[int64]*Session
	nextSessionID int64
	incoming      []pendingCommand
	authLimiters  map[string]*rate.Limiter
}

// NewHub wires a fresh hub atop an already-loaded engine.
func NewHub(e *engine.Engine, log zerolog.Logger, maxPlayers int) *Hub {
	return &Hub{
		Engine:       e,
		Log:          log,
		MaxPlayers:   maxPlayers,
		sessions:     make(map[int64]*Session),
		authLimiters: make(map[string]*rate.Limiter),
	}
}

// authLimiterFor returns the per-IP token bucket gating auth attempts,
// creating one on first sight of that address. One token per two
// seconds, burst of five, mirrors the registration throttle applied
// ahead of the register/login handlers.
func (h *Hub) authLimiterFor(addr string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.authLimiters[addr]
	if !ok {
		l = rate.NewLimiter(rate.Every(2*time.Second), 5)
		h.authLimiters[addr] = l
	}
	return l
}

// ServeHTTP upgrades the connection and spawns its read and write
// pumps. It returns once the upgrade itself is done; the connection
// then lives for as long as its pumps do.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.nextSessionID++
	id := h.nextSessionID
	h.mu.Unlock()

	s := &Session{
		id:         id,
		conn:       conn,
		remoteAddr: r.RemoteAddr,
		outbound:   make(chan ServerEnvelope, outboundBuffer),
		closed:     make(chan struct{}),
	}

	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()

	h.Log.Info().Int64("session_id", id).Str("remote", s.remoteAddr).Msg("session connected")

	go h.writePump(s)
	go h.readPump(s)
}

func (h *Hub) readPump(s *Session) {
	defer h.dropSession(s)
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var env ClientEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.send(ServerEnvelope{Error: &ErrorMsg{Code: int(engine.CodeInvalidCommand), Message: "malformed envelope"}})
			continue
		}
		h.mu.Lock()
		h.incoming = append(h.incoming, pendingCommand{sessionID: s.id, env: env})
		h.mu.Unlock()
	}
}

func (h *Hub) writePump(s *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case env, ok := <-s.outbound:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closed:
			return
		}
	}
}

func (h *Hub) dropSession(s *Session) {
	s.Close()
	h.mu.Lock()
	delete(h.sessions, s.id)
	h.mu.Unlock()
	h.Log.Info().Int64("session_id", s.id).Msg("session disconnected")
}

// drainIncoming atomically takes ownership of the queued commands
// built up since the last tick and resets the queue, so the dispatch
// pass below never races a concurrent read-pump append.
func (h *Hub) drainIncoming() []pendingCommand {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.incoming) == 0 {
		return nil
	}
	batch := h.incoming
	h.incoming = nil
	return batch
}

func (h *Hub) sessionByID(id int64) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	return s, ok
}

// RunTick drains the queued client envelopes, dispatches each against
// the engine (auth and command handling alike), advances the
// simulation by one tick, and finally composes and sends a
// per-session delta to every authenticated client. It must be called
// from the single goroutine that owns the engine; no lock is taken
// around Engine/World access because of that single-writer discipline.
func (h *Hub) RunTick() {
	for _, pc := range h.drainIncoming() {
		s, ok := h.sessionByID(pc.sessionID)
		if !ok {
			continue
		}
		h.dispatch(s, pc.env)
	}

	events := h.Engine.Tick()
	h.broadcastTick(events)
}

func (h *Hub) dispatch(s *Session, env ClientEnvelope) {
	switch {
	case env.Auth != nil:
		h.handleAuth(s, env.Auth)
	case !s.authenticated:
		s.send(ServerEnvelope{Error: &ErrorMsg{Code: int(engine.CodeAuthFailed), Message: "session is not authenticated"}})
		s.Close()
	case env.Command != nil:
		h.handleCommand(s, env.Command)
	case env.RequestFullState != nil:
		h.sendFullState(s)
	case env.PolicyUpdate != nil:
		// Session-local bookkeeping only; nothing to apply yet beyond
		// accepting the frame.
	default:
		s.send(ServerEnvelope{Error: &ErrorMsg{Code: int(engine.CodeInvalidCommand), Message: "empty or unrecognized envelope"}})
	}
}

func (h *Hub) handleAuth(s *Session, a *AuthPayload) {
	if s.authenticated {
		s.send(ServerEnvelope{Error: &ErrorMsg{Code: int(engine.CodeAlreadyAuthenticated), Message: engine.ErrAlreadyAuthenticated.Message}})
		return
	}
	if !h.authLimiterFor(s.remoteAddr).Allow() {
		s.send(ServerEnvelope{Error: &ErrorMsg{Code: int(engine.CodeRateLimited), Message: engine.ErrRateLimited.Message}})
		return
	}

	var p *model.Player
	var cerr *engine.CmdError
	switch a.Action {
	case "register":
		p, cerr = h.Engine.Register(a.PlayerName, a.Token, h.MaxPlayers)
	case "login":
		p, cerr = h.Engine.Login(a.PlayerName, a.Token)
	default:
		cerr = engine.ErrInvalidCommand
	}
	if cerr != nil {
		s.send(ServerEnvelope{AuthResult: &AuthResultMsg{OK: false}, Error: &ErrorMsg{Code: int(cerr.Code), Message: cerr.Message}})
		return
	}

	s.authenticated = true
	s.playerID = p.ID
	s.playerName = p.Name
	s.send(ServerEnvelope{AuthResult: &AuthResultMsg{OK: true, PlayerID: p.ID, Name: p.Name}})
	h.sendFullState(s)
}

func (h *Hub) sendFullState(s *Session) {
	p, ok := h.Engine.World.Players[s.playerID]
	if !ok {
		return
	}
	s.send(ServerEnvelope{FullState: &FullStateMsg{
		Tick:   h.Engine.World.CurrentTick,
		Player: wirePlayer(p),
		Fleets: fleetsForPlayer(h.Engine, s.playerID),
	}})
}

func fleetsForPlayer(e *engine.Engine, playerID int64) []FleetWire {
	var out []FleetWire
	for _, f := range e.World.Fleets {
		if f.PlayerID == playerID {
			out = append(out, wireFleet(f))
		}
	}
	return out
}

func parseDirection(s string) (hexcoord.Direction, bool) {
	switch s {
	case "e":
		return hexcoord.DirE, true
	case "ne":
		return hexcoord.DirNE, true
	case "nw":
		return hexcoord.DirNW, true
	case "w":
		return hexcoord.DirW, true
	case "sw":
		return hexcoord.DirSW, true
	case "se":
		return hexcoord.DirSE, true
	default:
		return 0, false
	}
}

func parseResource(s string) (model.ResourceKind, bool) {
	for _, rk := range model.Resources() {
		if rk.String() == s {
			return rk, true
		}
	}
	return 0, false
}

func parseBuildingType(s string) (model.BuildingType, bool) {
	for _, bt := range model.BuildingTypes() {
		if bt.String() == s {
			return bt, true
		}
	}
	return 0, false
}

func parseResearchTech(s string) (model.ResearchTech, bool) {
	for _, t := range model.ResearchTechs() {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

func parseShipClass(s string) (model.ShipClass, bool) {
	for _, c := range model.ShipClasses() {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

func parseQueueKind(s string) (model.QueueKind, bool) {
	switch s {
	case "building":
		return model.QueueBuilding, true
	case "research":
		return model.QueueResearch, true
	case "ship":
		return model.QueueShip, true
	default:
		return 0, false
	}
}

func sendCmdErr(s *Session, cerr *engine.CmdError) {
	s.send(ServerEnvelope{Error: &ErrorMsg{Code: int(cerr.Code), Message: cerr.Message}})
}

// handleCommand resolves exactly one populated field of CommandPayload
// against the engine's command handlers. Every handler already
// validates its own preconditions and returns a *CmdError without
// mutating on failure, so this function only needs to unwrap the
// payload, translate wire enums, and forward the result.
func (h *Hub) handleCommand(s *Session, c *CommandPayload) {
	w := h.Engine.World
	tick := w.CurrentTick
	pid := s.playerID

	switch {
	case c.Move != nil:
		dir, ok := parseDirection(c.Move.Direction)
		if !ok {
			sendCmdErr(s, engine.ErrInvalidCommand)
			return
		}
		if cerr := h.Engine.Move(pid, c.Move.FleetID, dir); cerr != nil {
			sendCmdErr(s, cerr)
		}

	case c.Harvest != nil:
		rk, ok := parseResource(c.Harvest.Resource)
		if !ok {
			sendCmdErr(s, engine.ErrInvalidCommand)
			return
		}
		if cerr := h.Engine.Harvest(pid, c.Harvest.FleetID, rk); cerr != nil {
			sendCmdErr(s, cerr)
		}

	case c.Attack != nil:
		if cerr := h.Engine.Attack(pid, c.Attack.FleetID, tick); cerr != nil {
			sendCmdErr(s, cerr)
		}

	case c.Recall != nil:
		if _, cerr := h.Engine.Recall(pid, c.Recall.FleetID, tick); cerr != nil {
			sendCmdErr(s, cerr)
		}

	case c.Stop != nil:
		if _, cerr := h.Engine.Recall(pid, c.Stop.FleetID, tick); cerr != nil {
			sendCmdErr(s, cerr)
		}

	case c.CollectSalvage != nil:
		if _, cerr := h.Engine.CollectSalvage(pid, c.CollectSalvage.FleetID, tick); cerr != nil {
			sendCmdErr(s, cerr)
		}

	case c.Build != nil:
		bt, ok := parseBuildingType(c.Build.BuildingType)
		if !ok {
			sendCmdErr(s, engine.ErrInvalidCommand)
			return
		}
		if cerr := h.Engine.Build(pid, bt, tick); cerr != nil {
			sendCmdErr(s, cerr)
		}

	case c.Research != nil:
		t, ok := parseResearchTech(c.Research.Tech)
		if !ok {
			sendCmdErr(s, engine.ErrInvalidCommand)
			return
		}
		if cerr := h.Engine.Research(pid, t, tick); cerr != nil {
			sendCmdErr(s, cerr)
		}

	case c.BuildShip != nil:
		class, ok := parseShipClass(c.BuildShip.ShipClass)
		if !ok {
			sendCmdErr(s, engine.ErrInvalidCommand)
			return
		}
		if cerr := h.Engine.BuildShip(pid, class, c.BuildShip.Count, tick); cerr != nil {
			sendCmdErr(s, cerr)
		}

	case c.CancelBuild != nil:
		kind, ok := parseQueueKind(c.CancelBuild.QueueType)
		if !ok {
			sendCmdErr(s, engine.ErrInvalidCommand)
			return
		}
		if cerr := h.Engine.CancelBuild(pid, kind); cerr != nil {
			sendCmdErr(s, cerr)
		}

	case c.CreateFleet != nil:
		if _, cerr := h.Engine.CreateFleet(pid); cerr != nil {
			sendCmdErr(s, cerr)
		}

	case c.DissolveFleet != nil:
		if cerr := h.Engine.DissolveFleet(pid, c.DissolveFleet.FleetID); cerr != nil {
			sendCmdErr(s, cerr)
		}

	case c.TransferShip != nil:
		if cerr := h.Engine.TransferShip(pid, c.TransferShip.FleetID, c.TransferShip.ShipID); cerr != nil {
			sendCmdErr(s, cerr)
		}

	case c.DockShip != nil:
		if cerr := h.Engine.DockShip(pid, c.DockShip.FleetID, c.DockShip.ShipID); cerr != nil {
			sendCmdErr(s, cerr)
		}

	case c.Scan != nil:
		s.send(ServerEnvelope{ScanResult: &ScanResultMsg{Sector: wireSector(h.Engine, c.Scan.Coord.toCoord())}})

	default:
		sendCmdErr(s, engine.ErrInvalidCommand)
	}
}

// broadcastTick composes and sends each authenticated session its own
// projection of the post-tick world: its player record, its fleets,
// the sector its first fleet currently occupies, and whichever events
// from this tick named it as relevant. Every value copied into a wire
// struct is a snapshot, never a pointer back into World.
func (h *Hub) broadcastTick(events []model.Event) {
	h.mu.Lock()
	targets := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		if s.authenticated {
			targets = append(targets, s)
		}
	}
	h.mu.Unlock()

	byPlayer := make(map[int64][]model.Event)
	for _, ev := range events {
		for _, pid := range ev.RelevantPlayers {
			byPlayer[pid] = append(byPlayer[pid], ev)
		}
	}

	for _, s := range targets {
		p, ok := h.Engine.World.Players[s.playerID]
		if !ok {
			continue
		}
		fleets := fleetsForPlayer(h.Engine, s.playerID)
		msg := &TickUpdateMsg{
			Tick:      h.Engine.World.CurrentTick,
			Player:    wirePlayerPtr(p),
			Fleets:    fleets,
			Homeworld: &CoordWire{Q: p.Homeworld.Q, R: p.Homeworld.R},
		}
		if len(fleets) > 0 {
			sec := wireSector(h.Engine, hexcoord.Coord{Q: fleets[0].Location.Q, R: fleets[0].Location.R})
			msg.Sector = &sec
		}
		for _, ev := range byPlayer[s.playerID] {
			w := wireEvent(ev)
			msg.Events = append(msg.Events, w)
		}
		s.send(ServerEnvelope{TickUpdate: msg})
	}
}

func wirePlayerPtr(p *model.Player) *PlayerWire {
	w := wirePlayer(p)
	return &w
}

// Shutdown closes every live session so their read/write pumps exit
// cleanly. It does not touch the engine; the caller is responsible
// for a final Flush after every pump has drained.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
