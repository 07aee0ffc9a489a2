package avr

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/anthem-integration/internal/pkg/config"
	"github.com/anicoll/anthem-integration/pkg/sockets"
)

const reconnectDelay = 5 * time.Second

// Session owns one physical connection to a receiver. It performs the
// handshake, keeps the per-zone state current from device reports, and fans
// every report into the single registered change callback. A session that has
// been closed is never reused.
type Session struct {
	cfg     *config.AvrConfig
	logger  *zap.Logger
	errChan chan error

	// connFactory builds the transport; replaced in tests.
	connFactory func() sockets.Connection

	mu         sync.RWMutex
	state      State
	conn       sockets.Connection
	info       DeviceInfo
	caps       Capabilities
	device     DeviceState
	zones      map[int]*ZoneState
	inputNames map[int]string

	cbMu           sync.Mutex
	updateCallback func(message string)

	initialised  chan struct{}
	initOnce     sync.Once
	handshakeErr chan error
	closed       chan struct{}
	closeOnce    sync.Once
}

func NewSession(cfg *config.AvrConfig, errChan chan error) *Session {
	s := &Session{
		cfg:          cfg,
		logger:       zap.L(),
		errChan:      errChan,
		info:         DeviceInfo{Name: cfg.DeviceName},
		zones:        make(map[int]*ZoneState),
		inputNames:   make(map[int]string),
		initialised:  make(chan struct{}),
		handshakeErr: make(chan error, 1),
		closed:       make(chan struct{}),
	}
	s.connFactory = func() sockets.Connection {
		return sockets.New(
			sockets.OnConnected(s.onConnected),
			sockets.OnMessage(s.onMessage),
			sockets.OnError(s.onSocketError),
			sockets.WithDelimiter(';'),
		)
	}
	return s
}

// Connect opens the transport. Socket-level failures come back wrapped in
// ErrConnect; there is no internal retry unless auto-reconnect is enabled,
// and even then only for errors after the initial dial succeeded.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.state = StateConnecting
	s.mu.Unlock()

	if err := s.dial(ctx); err != nil {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrConnect, err)
	}
	return nil
}

func (s *Session) dial(ctx context.Context) error {
	conn := s.connFactory()
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.logger.Debug("dialling avr", zap.String("addr", addr))
	if err := conn.Dial(ctx, addr); err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	return nil
}

// WaitForInitialised blocks until the device has reported its identity and at
// least one zone, or until timeout elapses. A timeout (ErrTimeout) is a
// distinct failure from a protocol-level rejection (ErrDevice); the caller is
// expected to Close the session on either.
func (s *Session) WaitForInitialised(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.initialised:
		return nil
	case err := <-s.handshakeErr:
		return fmt.Errorf("%w: %v", ErrDevice, err)
	case <-timer.C:
		return ErrTimeout
	case <-s.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the transport and unregisters the change callback.
// Idempotent. No notification fires after Close returns: teardown waits for
// any in-flight callback delivery to finish.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)

		s.mu.Lock()
		s.state = StateClosed
		conn := s.conn
		s.mu.Unlock()

		if conn != nil {
			_ = conn.Close()
		}

		s.cbMu.Lock()
		s.updateCallback = nil
		s.cbMu.Unlock()

		s.logger.Debug("avr session closed")
	})
	return nil
}

// RegisterChangeCallback installs the single notification callback. A second
// registration overwrites the first; callers needing fan-out install their
// own dispatcher behind it.
func (s *Session) RegisterChangeCallback(cb func(message string)) {
	s.cbMu.Lock()
	s.updateCallback = cb
	s.cbMu.Unlock()
}

func (s *Session) notify(message string) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	if s.updateCallback != nil {
		s.updateCallback(message)
	}
}

func (s *Session) sendIfErr(err error) {
	if err == nil {
		return
	}
	select {
	case <-s.closed:
	default:
		if s.errChan != nil {
			s.errChan <- err
		}
	}
}

func (s *Session) onConnected(sockets.Connection) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateInitializing
	s.mu.Unlock()

	s.logger.Debug("avr transport up, querying identity")
	s.sendIfErr(s.send(cmdQueryModel, cmdQueryMAC, cmdQueryInputCount))
}

func (s *Session) onMessage(data []byte, _ sockets.Connection) {
	select {
	case <-s.closed:
		return
	default:
	}

	line := strings.TrimSpace(string(data))
	if line == "" {
		return
	}
	if s.handleLine(line) {
		s.notify(line)
	}
}

func (s *Session) onSocketError(err error) {
	select {
	case <-s.closed:
		return
	default:
	}

	s.logger.Error("avr connection error", zap.Error(err))
	if !s.cfg.AutoReconnect {
		s.sendIfErr(err)
		return
	}

	time.Sleep(reconnectDelay)
	select {
	case <-s.closed:
		return
	default:
	}
	if derr := s.dial(context.Background()); derr != nil {
		s.sendIfErr(derr)
	}
}

func (s *Session) send(cmds ...string) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return ErrClosed
	}
	body := strings.Join(cmds, ";") + ";"
	return conn.Send(sockets.Msg{Body: []byte(body)})
}

func (s *Session) markInitialised() {
	s.initOnce.Do(func() {
		s.mu.RLock()
		info := s.info
		s.mu.RUnlock()
		s.logger.Info("avr initialised",
			zap.String("model", info.Model),
			zap.String("mac", info.MAC))
		close(s.initialised)
	})
}

// State reports the current connectivity state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// DeviceInfo returns the resolved identity. Zero-valued until initialised.
func (s *Session) DeviceInfo() DeviceInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

func (s *Session) Capabilities() Capabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caps
}

// DeviceState returns a snapshot of the device-wide fields.
func (s *Session) DeviceState() DeviceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.device
	d.SoundModeList = slices.Clone(d.SoundModeList)
	d.InputList = slices.Clone(d.InputList)
	return d
}

// Zones lists the known zone numbers in ascending order.
func (s *Session) Zones() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	numbers := lo.Keys(s.zones)
	slices.Sort(numbers)
	return numbers
}

// Zone returns a snapshot of one zone's raw state.
func (s *Session) Zone(number int) (ZoneState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	zone, ok := s.zones[number]
	if !ok {
		return ZoneState{}, false
	}
	return *zone, true
}

// Refresh re-queries the full device and zone state. Used by the periodic
// poll; safe to call any time after the transport is up.
func (s *Session) Refresh() error {
	s.mu.RLock()
	numbers := lo.Keys(s.zones)
	s.mu.RUnlock()
	slices.Sort(numbers)

	cmds := []string{cmdQueryModel, cmdQueryMAC, cmdQueryInputCount}
	for _, n := range numbers {
		cmds = append(cmds, zoneQueries(n)...)
	}
	return s.send(cmds...)
}
