package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/san-kum/blobsim/internal/control"
	"github.com/san-kum/blobsim/internal/sim"
)

const (
	DefaultFPS   = 60
	readLimit    = 1 << 16
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
)

// Server hosts one blob session per websocket connection. Clients send JSON
// envelopes with inputs and receive one binary frame per tick.
type Server struct {
	settings sim.Settings
	logger   *log.Logger
	fps      int
	mapping  control.Mapping
	scale    float64
	upgrader websocket.Upgrader
	opts     []sim.Option
}

type ServerOption func(*Server)

func WithLogger(l *log.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

func WithFPS(fps int) ServerOption {
	return func(s *Server) { s.fps = fps }
}

// WithTilt selects how orientation messages map to gravity.
func WithTilt(m control.Mapping, scale float64) ServerOption {
	return func(s *Server) { s.mapping, s.scale = m, scale }
}

// WithSessionOptions forwards options to every session the server creates.
func WithSessionOptions(opts ...sim.Option) ServerOption {
	return func(s *Server) { s.opts = append(s.opts, opts...) }
}

func NewServer(settings sim.Settings, opts ...ServerOption) (*Server, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		settings: settings,
		logger:   log.New(io.Discard),
		fps:      DefaultFPS,
		mapping:  control.MappingPitch,
		scale:    control.DefaultTiltScale,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", s.fps)
	}
	return s, nil
}

// Handler serves the websocket endpoint on /ws and a liveness probe on /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})
	return mux
}

// ListenAndServe serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr, "endpoint", "/ws")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	sess, err := sim.NewSession(s.settings, append([]sim.Option{sim.WithLogger(s.logger)}, s.opts...)...)
	if err != nil {
		s.logger.Error("session", "err", err)
		return
	}
	defer sess.Teardown()

	remote := conn.RemoteAddr().String()
	s.logger.Info("client connected", "remote", remote)
	defer func() {
		s.logger.Info("client disconnected", "remote", remote, "frames", sess.Frame(), "resets", sess.Resets())
	}()

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	welcome, err := Encode(MsgWelcome, Welcome{
		Vertices:   s.settings.Vertices,
		Radius:     s.settings.Radius,
		SubSteps:   s.settings.SubSteps,
		HalfWidth:  s.settings.Tuning.HalfWidth,
		HalfHeight: s.settings.Tuning.HalfHeight,
	})
	if err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, welcome); err != nil {
		return
	}

	// The read loop only touches session inputs; replies it needs to send
	// go through replies so the frame loop stays the single writer.
	replies := make(chan []byte, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logger.Debug("read", "err", err)
				}
				return
			}
			if mt != websocket.TextMessage {
				continue
			}
			if err := s.apply(sess, msg); err != nil {
				s.logger.Debug("bad input", "remote", remote, "err", err)
				if b, encErr := Encode(MsgError, Error{Message: err.Error()}); encErr == nil {
					select {
					case replies <- b:
					default:
					}
				}
			}
		}
	}()

	s.frameLoop(conn, sess, replies, done)
}

func (s *Server) frameLoop(conn *websocket.Conn, sess *sim.Session, replies <-chan []byte, done <-chan struct{}) {
	frames := time.NewTicker(time.Second / time.Duration(s.fps))
	defer frames.Stop()
	pings := time.NewTicker(pingInterval)
	defer pings.Stop()

	pool := NewBufferPool(s.settings.Vertices)
	for {
		select {
		case <-done:
			return
		case b := <-replies:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-pings.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-frames.C:
			if err := sess.AdvanceFrame(); err != nil {
				return
			}
			report, err := sess.Snapshot()
			if err != nil {
				return
			}
			buf := pool.Get()
			data, err := EncodeFrame(buf, report)
			if err != nil {
				pool.Put(buf)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			err = conn.WriteMessage(websocket.BinaryMessage, data)
			pool.Put(buf)
			if err != nil {
				return
			}
		}
	}
}

// apply decodes one input envelope and forwards it to the session.
func (s *Server) apply(sess *sim.Session, msg []byte) error {
	env, err := DecodeEnvelope(msg)
	if err != nil {
		return err
	}
	switch env.T {
	case MsgGravity:
		g, err := DecodePayload[Gravity](env)
		if err != nil {
			return err
		}
		return sess.SetGravity(g.X, g.Y)
	case MsgDrag:
		d, err := DecodePayload[Drag](env)
		if err != nil {
			return err
		}
		return sess.SetDrag(d.Active, d.X, d.Y)
	case MsgKeys:
		k, err := DecodePayload[Keys](env)
		if err != nil {
			return err
		}
		return sess.SetDirectionalInput(k.Left, k.Right, k.Up, k.Down)
	case MsgOrientation:
		o, err := DecodePayload[Orientation](env)
		if err != nil {
			return err
		}
		// Browsers without a sensor report all zeros.
		if o.Alpha == 0 {
			return nil
		}
		g := control.GravityFromOrientation(o.Alpha, o.Beta, o.Gamma, s.mapping, s.scale)
		return sess.SetGravity(g.X, g.Y)
	case MsgPause:
		p, err := DecodePayload[Pause](env)
		if err != nil {
			return err
		}
		sess.SetPaused(p.Paused)
		return nil
	case MsgStep:
		return sess.Step()
	case MsgReset:
		return sess.Reset()
	case MsgParam:
		p, err := DecodePayload[Param](env)
		if err != nil {
			return err
		}
		return sess.SetParam(p.Name, p.Value)
	}
	return fmt.Errorf("unknown message type %q", env.T)
}
