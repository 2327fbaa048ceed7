package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/simbridge/simbridge-go/pkg/connection"
	"github.com/simbridge/simbridge-go/pkg/demux"
	"github.com/simbridge/simbridge-go/pkg/log"
	"github.com/simbridge/simbridge-go/pkg/native"
	"github.com/simbridge/simbridge-go/pkg/poll"
	"github.com/simbridge/simbridge-go/pkg/property"
	"github.com/simbridge/simbridge-go/pkg/subscription"
)

// Bridge owns the session and every routing table.
type Bridge struct {
	config    Config
	transport native.Transport
	probe     native.PeerProbe

	conn      *connection.Manager
	router    *demux.Router
	registry  *subscription.Registry
	scheduler *poll.Scheduler
	backoff   *connection.Backoff

	mu     sync.RWMutex
	groups []Group
	owners map[native.FieldID]Group

	startAvailable poll.Flag
	stopAvailable  poll.Flag
	onAvailability func(start, stop bool)
	onStateChange  func(oldState, newState connection.State)
	onJoin         func()
	onLeave        func()

	// Background processing
	cancel  context.CancelFunc
	pumpWg  sync.WaitGroup
	running atomic.Bool

	logger *slog.Logger
	trace  log.Logger
}

// New creates a Bridge. probe may be nil, in which case the peer is assumed
// to be running.
func New(transport native.Transport, probe native.PeerProbe, cfg Config) (*Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	trace := cfg.Trace
	if trace == nil {
		trace = log.NoopLogger{}
	}

	router := demux.NewRouter(cfg.Logger)
	b := &Bridge{
		config:    cfg,
		transport: transport,
		probe:     probe,
		conn:      connection.NewManager(transport),
		router:    router,
		registry:  subscription.NewRegistry(router, cfg.Logger),
		scheduler: poll.NewScheduler(cfg.PollInterval, cfg.Logger),
		backoff:   connection.NewBackoffWithConfig(cfg.Backoff),
		owners:    make(map[native.FieldID]Group),
		logger:    cfg.Logger,
		trace:     trace,
	}

	b.conn.OnStateChange(b.handleStateChange)
	b.conn.OnConnected(b.sessionOpened)
	b.conn.OnDisconnected(b.sessionClosed)

	b.startAvailable.OnChange(func(bool) { b.availabilityChanged() })
	b.stopAvailable.OnChange(func(bool) { b.availabilityChanged() })

	b.scheduler.AddPass("availability", b.availabilityPass)
	b.scheduler.AddPass("poll", b.pollPass)
	if cfg.AutoConnect {
		b.scheduler.AddPass("auto-connect", b.autoConnectPass)
	}

	return b, nil
}

// AddGroup registers g. Field ids must be unique across all groups.
func (b *Bridge) AddGroup(g Group) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.groups {
		if existing.ID() == g.ID() {
			return fmt.Errorf("%w: %d (%s, %s)", ErrDuplicateGroup, g.ID(), existing.Name(), g.Name())
		}
	}

	seen := make(map[native.FieldID]struct{})
	for _, p := range g.Properties() {
		d := p.Descriptor()
		if owner, ok := b.owners[d.Field]; ok {
			return fmt.Errorf("%w: %d in %s already owned by %s", ErrDuplicateField, d.Field, g.Name(), owner.Name())
		}
		if _, ok := seen[d.Field]; ok {
			return fmt.Errorf("%w: %d repeated in %s", ErrDuplicateField, d.Field, g.Name())
		}
		seen[d.Field] = struct{}{}
	}

	for field := range seen {
		b.owners[field] = g
	}
	b.groups = append(b.groups, g)
	return nil
}

// Groups returns the registered groups in registration order.
func (b *Bridge) Groups() []Group {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Group, len(b.groups))
	copy(out, b.groups)
	return out
}

// Group returns the group with the given name.
func (b *Bridge) Group(name string) (Group, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, g := range b.groups {
		if g.Name() == name {
			return g, true
		}
	}
	return nil, false
}

// Initialize opens a session. The handshake completes on a later Drain.
func (b *Bridge) Initialize(ctx context.Context) error {
	if b.config.OpenTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.OpenTimeout)
		defer cancel()
	}

	if err := b.conn.Open(ctx, b.config.Identity, inbound{b}); err != nil {
		b.warnLog("open failed", "identity", b.config.Identity, "error", err)
		b.traceError(err.Error(), nil, "open")
		return err
	}
	b.debugLog("session opening", "session_id", b.conn.SessionID())
	return nil
}

// Reset tears the session down. Every table is cleared and every group
// restores its defaults.
func (b *Bridge) Reset() {
	b.reset("reset")
}

func (b *Bridge) reset(reason string) {
	if !b.conn.Close(reason) {
		b.registry.Clear()
	}
}

// Join signals that the host wants to join the simulation. The session
// itself is opened by Initialize or by auto-connect.
func (b *Bridge) Join() {
	b.debugLog("join requested")
	b.mu.RLock()
	fn := b.onJoin
	b.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Leave signals that the host left the simulation. Every group restores
// its defaults; the session stays open and polling refills the values.
func (b *Bridge) Leave() {
	b.debugLog("leave requested")
	b.mu.RLock()
	fn := b.onLeave
	groups := append([]Group(nil), b.groups...)
	b.mu.RUnlock()

	for _, g := range groups {
		g.ResetValues()
	}
	if fn != nil {
		fn()
	}
}

// Start runs the scheduler and, if configured, the message pump until ctx
// is done or Stop is called. It does not open a session.
func (b *Bridge) Start(ctx context.Context) error {
	if b.running.Swap(true) {
		return ErrAlreadyStarted
	}

	ctx, b.cancel = context.WithCancel(ctx)
	b.scheduler.Start(ctx)

	if b.config.PumpInterval > 0 {
		b.pumpWg.Add(1)
		go b.pumpLoop(ctx)
	}
	return nil
}

// Stop stops the background loops. The session is left as is.
func (b *Bridge) Stop() {
	if !b.running.Swap(false) {
		return
	}
	if b.cancel != nil {
		b.cancel()
	}
	b.pumpWg.Wait()
	b.scheduler.Stop()
}

func (b *Bridge) pumpLoop(ctx context.Context) {
	defer b.pumpWg.Done()

	ticker := time.NewTicker(b.config.PumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.Drain(); err != nil && !errors.Is(err, connection.ErrNotConnected) {
				b.debugLog("pump", "error", err)
			}
		}
	}
}

// Drain delivers every pending inbound message. A transport failure resets
// the session; panics in owners are recovered and logged.
func (b *Bridge) Drain() (err error) {
	c, err := b.conn.Conn()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("drain: panic: %v", r)
			b.warnLog("recovered from panic in drain", "panic", r)
		}
	}()

	if err := c.Drain(); err != nil {
		if errors.Is(err, native.ErrClosed) && !b.isCurrent(c) {
			// Closed by a reset that ran after the lookup above.
			return connection.ErrNotConnected
		}
		b.warnLog("drain failed, resetting", "error", err)
		b.traceError(err.Error(), nil, "drain")
		b.reset("drain failed")
		return fmt.Errorf("drain: %w", err)
	}
	return nil
}

func (b *Bridge) isCurrent(c native.Conn) bool {
	cur, err := b.conn.Conn()
	return err == nil && cur == c
}

// Tick runs one scheduler pass set on the calling goroutine.
func (b *Bridge) Tick(ctx context.Context) {
	b.scheduler.Tick(ctx)
}

// Subscribe adds a reference to p's field.
func (b *Bridge) Subscribe(p property.Property) (subscription.Handle, error) {
	d := p.Descriptor()

	b.mu.RLock()
	owner, ok := b.owners[d.Field]
	b.mu.RUnlock()
	if !ok {
		return subscription.Handle{}, fmt.Errorf("%w: %d", ErrUnknownField, d.Field)
	}

	h, err := b.registry.Subscribe(d, owner)
	if err != nil {
		if errors.Is(err, subscription.ErrNoSession) {
			return subscription.Handle{}, fmt.Errorf("subscribe %s: %w", d.Key, connection.ErrNotConnected)
		}
		return subscription.Handle{}, fmt.Errorf("subscribe %s: %w", d.Key, err)
	}

	b.traceSubscription(owner.Name(), log.SubscriptionAdd, d, b.registry.Refs(d.Field))
	return h, nil
}

// Unsubscribe releases a handle returned by Subscribe.
func (b *Bridge) Unsubscribe(h subscription.Handle) error {
	if err := b.registry.Unsubscribe(h); err != nil {
		return err
	}

	b.mu.RLock()
	owner := b.owners[h.Field]
	b.mu.RUnlock()

	group := ""
	if owner != nil {
		group = owner.Name()
	}
	b.traceSubscription(group, log.SubscriptionRemove, property.Descriptor{Field: h.Field}, b.registry.Refs(h.Field))
	return nil
}

// UnsubscribeGroup clears a notification group.
func (b *Bridge) UnsubscribeGroup(id native.GroupID) error {
	if err := b.registry.UnsubscribeGroup(id); err != nil {
		if errors.Is(err, subscription.ErrNoSession) {
			return connection.ErrNotConnected
		}
		return err
	}
	return nil
}

// Declare declares p's field with the current session.
func (b *Bridge) Declare(p property.Property) error {
	if err := b.registry.Declare(p.Descriptor()); err != nil {
		if errors.Is(err, subscription.ErrNoSession) {
			return connection.ErrNotConnected
		}
		return err
	}
	return nil
}

// RequestValue asks for the current value of d's field.
func (b *Bridge) RequestValue(d property.Descriptor) error {
	c, err := b.session()
	if err != nil {
		return err
	}
	return c.RequestValue(d.Request, d.Field)
}

// WriteValue writes payload to d's field.
func (b *Bridge) WriteValue(d property.Descriptor, payload []byte) error {
	c, err := b.session()
	if err != nil {
		return err
	}
	return c.WriteValue(d.Field, payload)
}

func (b *Bridge) session() (*tracedConn, error) {
	c, err := b.conn.Conn()
	if err != nil {
		return nil, err
	}
	return &tracedConn{Conn: c, b: b}, nil
}

// State returns the session state.
func (b *Bridge) State() connection.State {
	return b.conn.State()
}

// PeerName returns the name the peer reported in the handshake.
func (b *Bridge) PeerName() string {
	return b.conn.PeerName()
}

// SessionID returns the current session id.
func (b *Bridge) SessionID() string {
	return b.conn.SessionID()
}

// StartAvailable reports whether a session can be opened.
func (b *Bridge) StartAvailable() bool {
	return b.startAvailable.Get()
}

// StopAvailable reports whether a session can be closed.
func (b *Bridge) StopAvailable() bool {
	return b.stopAvailable.Get()
}

// Subscribers returns the number of live subscription handles.
func (b *Bridge) Subscribers() int {
	return b.registry.Subscribers()
}

// Polled returns the field ids polled on every tick.
func (b *Bridge) Polled() []native.FieldID {
	return b.registry.Polled()
}

// OnAvailabilityChange sets a callback fired when either availability
// flag flips.
func (b *Bridge) OnAvailabilityChange(fn func(start, stop bool)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onAvailability = fn
}

// OnStateChange sets a callback for session state transitions.
func (b *Bridge) OnStateChange(fn func(oldState, newState connection.State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onStateChange = fn
}

// OnJoin sets a callback fired by Join.
func (b *Bridge) OnJoin(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onJoin = fn
}

// OnLeave sets a callback fired by Leave after the groups were reset.
func (b *Bridge) OnLeave(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onLeave = fn
}

func (b *Bridge) availabilityChanged() {
	b.mu.RLock()
	fn := b.onAvailability
	b.mu.RUnlock()
	if fn != nil {
		fn(b.startAvailable.Get(), b.stopAvailable.Get())
	}
}

func (b *Bridge) refreshAvailability() {
	state := b.conn.State()
	running := b.probe == nil || b.probe.PeerRunning()
	b.startAvailable.Set(running && state == connection.StateDisconnected)
	b.stopAvailable.Set(state == connection.StateConnected)
}

func (b *Bridge) handleStateChange(oldState, newState connection.State) {
	b.debugLog("session state", "old", oldState.String(), "new", newState.String())
	b.trace.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: b.conn.SessionID(),
		Direction: log.DirectionIn,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: oldState.String(),
			NewState: newState.String(),
			PeerName: b.conn.PeerName(),
		},
	})

	b.mu.RLock()
	fn := b.onStateChange
	b.mu.RUnlock()
	if fn != nil {
		fn(oldState, newState)
	}
}

// sessionOpened runs after the handshake.
func (b *Bridge) sessionOpened() {
	c, err := b.session()
	if err != nil {
		return
	}
	b.backoff.Reset()
	b.registry.Open(c)
	b.refreshAvailability()

	for _, g := range b.Groups() {
		g.SessionOpened()
	}
	b.infoLog("session opened", "peer", b.conn.PeerName(), "session_id", b.conn.SessionID())
}

// sessionClosed runs after the handle was released.
func (b *Bridge) sessionClosed(reason string) {
	b.registry.Clear()
	b.refreshAvailability()

	for _, g := range b.Groups() {
		g.SessionClosed()
	}
	b.infoLog("session closed", "reason", reason)
}

func (b *Bridge) availabilityPass(context.Context) error {
	b.refreshAvailability()
	return nil
}

func (b *Bridge) pollPass(context.Context) error {
	if !b.conn.IsConnected() {
		return nil
	}
	c, err := b.session()
	if err != nil {
		return nil
	}

	var errs []error
	b.registry.ForEachPolled(func(d property.Descriptor) {
		if err := c.RequestValue(d.Request, d.Field); err != nil {
			errs = append(errs, fmt.Errorf("request %s: %w", d.Name, err))
		}
	})
	return errors.Join(errs...)
}

func (b *Bridge) autoConnectPass(ctx context.Context) error {
	if !b.startAvailable.Get() || !b.backoff.Ready(time.Now()) {
		return nil
	}
	b.debugLog("auto-connect attempt", "attempt", b.backoff.Attempts())
	return b.Initialize(ctx)
}

func (b *Bridge) debugLog(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}

func (b *Bridge) infoLog(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Info(msg, args...)
	}
}

func (b *Bridge) warnLog(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Warn(msg, args...)
	}
}
