package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simbridge/simbridge-go/pkg/connection"
	"github.com/simbridge/simbridge-go/pkg/group"
	"github.com/simbridge/simbridge-go/pkg/log"
	"github.com/simbridge/simbridge-go/pkg/native"
	"github.com/simbridge/simbridge-go/pkg/native/simpeer"
	"github.com/simbridge/simbridge-go/pkg/property"
)

var (
	quantityDesc = property.Descriptor{
		Key: "TotalQuantity", Field: 1, Request: 1, Group: 1,
		Name: "FUEL TOTAL QUANTITY", Unit: "gallons", Type: native.DataTypeFloat64, Decimals: 1,
	}
	levelDesc = property.Descriptor{
		Key: "TankCenterLevel", Field: 2, Request: 1, Group: 1,
		Name: "FUEL TANK CENTER LEVEL", Type: native.DataTypeFloat64, Decimals: 3, Writable: true,
	}
	batteryDesc = property.Descriptor{
		Key: "MasterBattery", Field: 3, Request: 2, Group: 2,
		Name: "ELECTRICAL MASTER BATTERY", Unit: "bool", Type: native.DataTypeInt32,
		Decimals: property.NoRounding, Writable: true,
		Event: &property.EventBinding{ID: 1, Name: "TOGGLE_MASTER_BATTERY"},
	}
)

type fuelGroup struct {
	*group.Base
	quantity *property.Cell[float64]
	level    *property.Cell[float64]
}

func newFuelGroup(b *Bridge) *fuelGroup {
	g := &fuelGroup{
		quantity: property.NewFloat(quantityDesc, 0, b),
		level:    property.NewFloat(levelDesc, 0, b),
	}
	g.Base = group.NewBase(1, "Fuel", b, nil, g.quantity, g.level)
	return g
}

type electricalGroup struct {
	*group.Base
	battery *property.Cell[bool]
}

func newElectricalGroup(b *Bridge) *electricalGroup {
	g := &electricalGroup{battery: property.NewBool(batteryDesc, false, b)}
	g.Base = group.NewBase(2, "Electrical", b, nil, g.battery)
	return g
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Backoff.Jitter = 0
	return cfg
}

func newTestBridge(t *testing.T, cfg Config) (*Bridge, *simpeer.Peer, *fuelGroup, *electricalGroup) {
	t.Helper()
	peer := simpeer.New("")
	b, err := New(peer, peer, cfg)
	require.NoError(t, err)

	fuel := newFuelGroup(b)
	elec := newElectricalGroup(b)
	require.NoError(t, b.AddGroup(fuel))
	require.NoError(t, b.AddGroup(elec))
	return b, peer, fuel, elec
}

func connect(t *testing.T, b *Bridge) {
	t.Helper()
	require.NoError(t, b.Initialize(context.Background()))
	require.NoError(t, b.Drain())
	require.Equal(t, connection.StateConnected, b.State())
}

type traceRecorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *traceRecorder) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *traceRecorder) byCategory(c log.Category) []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []log.Event
	for _, e := range r.events {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		valid  bool
	}{
		{"default", func(*Config) {}, true},
		{"empty identity", func(c *Config) { c.Identity = "" }, false},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }, false},
		{"negative pump interval", func(c *Config) { c.PumpInterval = -1 }, false},
		{"negative open timeout", func(c *Config) { c.OpenTimeout = -time.Second }, false},
		{"pump disabled", func(c *Config) { c.PumpInterval = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Identity = ""
	_, err := New(simpeer.New(""), nil, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAddGroupRejectsDuplicates(t *testing.T) {
	b, _, _, _ := newTestBridge(t, testConfig())

	t.Run("field", func(t *testing.T) {
		clash := property.NewFloat(property.Descriptor{Key: "Other", Field: 1, Group: 9, Type: native.DataTypeFloat64}, 0, b)
		err := b.AddGroup(group.NewBase(9, "Other", b, nil, clash))
		assert.ErrorIs(t, err, ErrDuplicateField)
	})

	t.Run("field within group", func(t *testing.T) {
		a := property.NewFloat(property.Descriptor{Key: "A", Field: 50, Group: 9, Type: native.DataTypeFloat64}, 0, b)
		c := property.NewFloat(property.Descriptor{Key: "C", Field: 50, Group: 9, Type: native.DataTypeFloat64}, 0, b)
		err := b.AddGroup(group.NewBase(9, "Other", b, nil, a, c))
		assert.ErrorIs(t, err, ErrDuplicateField)
	})

	t.Run("group", func(t *testing.T) {
		err := b.AddGroup(group.NewBase(1, "Again", b, nil))
		assert.ErrorIs(t, err, ErrDuplicateGroup)
	})

	assert.Len(t, b.Groups(), 2)
	_, ok := b.Group("Other")
	assert.False(t, ok)
}

func TestSubscribeErrors(t *testing.T) {
	b, _, fuel, _ := newTestBridge(t, testConfig())

	_, err := b.Subscribe(fuel.quantity)
	assert.ErrorIs(t, err, connection.ErrNotConnected)

	stray := property.NewFloat(property.Descriptor{Key: "Stray", Field: 77, Type: native.DataTypeFloat64}, 0, b)
	_, err = b.Subscribe(stray)
	assert.ErrorIs(t, err, ErrUnknownField)

	assert.ErrorIs(t, b.Drain(), connection.ErrNotConnected)
	assert.ErrorIs(t, b.RequestValue(quantityDesc), connection.ErrNotConnected)
	assert.ErrorIs(t, b.WriteValue(levelDesc, nil), connection.ErrNotConnected)
}

func TestRefcountSymmetry(t *testing.T) {
	b, peer, fuel, _ := newTestBridge(t, testConfig())
	connect(t, b)
	declares := peer.Counters().Declares

	h1, err := b.Subscribe(fuel.quantity)
	require.NoError(t, err)
	h2, err := b.Subscribe(fuel.quantity)
	require.NoError(t, err)

	assert.Equal(t, 2, b.Subscribers())
	assert.Equal(t, 1, peer.Requests(quantityDesc.Field))
	assert.Equal(t, []native.FieldID{1}, b.Polled())

	require.NoError(t, b.Unsubscribe(h1))
	assert.Equal(t, []native.FieldID{1}, b.Polled())
	require.NoError(t, b.Unsubscribe(h2))
	assert.Empty(t, b.Polled())
	assert.Equal(t, 0, b.Subscribers())

	_, err = b.Subscribe(fuel.quantity)
	require.NoError(t, err)
	assert.Equal(t, declares, peer.Counters().Declares)
}

func TestDecodeIdempotent(t *testing.T) {
	b, peer, fuel, _ := newTestBridge(t, testConfig())
	connect(t, b)
	peer.Set("FUEL TOTAL QUANTITY", 12.34)

	var changes int
	cancel := fuel.Subscribe(func(property.Change) { changes++ })
	defer cancel()

	for range 3 {
		require.NoError(t, b.Drain())
		b.Tick(context.Background())
	}
	require.NoError(t, b.Drain())

	assert.Equal(t, 12.3, fuel.quantity.Get())
	assert.Equal(t, 1, changes)
}

func TestResetRestoresDefaultsWithoutSpuriousEvents(t *testing.T) {
	b, peer, fuel, elec := newTestBridge(t, testConfig())
	connect(t, b)
	peer.Set("FUEL TOTAL QUANTITY", 5.0)

	var changes []property.Change
	cancelFuel := fuel.Subscribe(func(c property.Change) { changes = append(changes, c) })
	defer cancelFuel()
	cancelElec := elec.Subscribe(func(c property.Change) { changes = append(changes, c) })
	defer cancelElec()
	require.NoError(t, b.Drain())
	require.Len(t, changes, 1)

	b.Reset()

	assert.Equal(t, connection.StateDisconnected, b.State())
	assert.Equal(t, 0.0, fuel.quantity.Get())
	require.Len(t, changes, 2)
	assert.Equal(t, "TotalQuantity", changes[1].Key)
	assert.Equal(t, 0, b.Subscribers())
	assert.Empty(t, b.Polled())
	assert.Empty(t, b.SessionID())
}

func TestWriteRoundTrip(t *testing.T) {
	b, peer, fuel, _ := newTestBridge(t, testConfig())
	connect(t, b)

	cancel := fuel.Subscribe(func(property.Change) {})
	defer cancel()
	require.NoError(t, b.Drain())

	peer.ResetCounters()
	require.NoError(t, fuel.level.Set(0.5))
	assert.Equal(t, 1, peer.Counters().Writes)
	assert.Equal(t, 1, peer.Counters().Requests)
	assert.Equal(t, 0.0, fuel.level.Get(), "cache waits for the resync reply")

	require.NoError(t, b.Drain())
	assert.Equal(t, 0.5, fuel.level.Get())

	peer.ResetCounters()
	require.NoError(t, fuel.level.Set(0.5))
	assert.Equal(t, 0, peer.Counters().Writes)
	assert.Equal(t, 0, peer.Counters().Requests)
}

func TestEventBoundFieldNeverPolled(t *testing.T) {
	b, peer, _, elec := newTestBridge(t, testConfig())
	connect(t, b)

	cancel := elec.Subscribe(func(property.Change) {})
	defer cancel()

	assert.Empty(t, b.Polled())
	peer.ResetCounters()
	b.Tick(context.Background())
	assert.Equal(t, 0, peer.Counters().Requests)
}

func TestDrainFailureResets(t *testing.T) {
	trace := &traceRecorder{}
	cfg := testConfig()
	cfg.Trace = trace
	b, peer, fuel, _ := newTestBridge(t, cfg)
	connect(t, b)
	peer.Set("FUEL TOTAL QUANTITY", 8.0)

	cancel := fuel.Subscribe(func(property.Change) {})
	defer cancel()
	require.NoError(t, b.Drain())
	require.Equal(t, 8.0, fuel.quantity.Get())

	broken := errors.New("pipe broken")
	peer.Break(broken)

	err := b.Drain()
	assert.ErrorIs(t, err, broken)
	assert.Equal(t, connection.StateDisconnected, b.State())
	assert.Equal(t, 0.0, fuel.quantity.Get())
	assert.NotEmpty(t, trace.byCategory(log.CategoryError))
}

func TestPeerQuitResets(t *testing.T) {
	b, peer, _, _ := newTestBridge(t, testConfig())
	connect(t, b)

	peer.Quit()
	require.NoError(t, b.Drain())
	assert.Equal(t, connection.StateDisconnected, b.State())
	assert.Nil(t, peer.Conn())
}

func TestNativeExceptionIsNotFatal(t *testing.T) {
	trace := &traceRecorder{}
	cfg := testConfig()
	cfg.Trace = trace
	b, peer, _, _ := newTestBridge(t, cfg)
	connect(t, b)

	peer.Fail(7)
	require.NoError(t, b.Drain())

	assert.Equal(t, connection.StateConnected, b.State())
	errs := trace.byCategory(log.CategoryError)
	require.Len(t, errs, 1)
	require.NotNil(t, errs[0].Error.Code)
	assert.Equal(t, 7, *errs[0].Error.Code)
}

func TestReentrantOpenForcesReset(t *testing.T) {
	b, peer, _, _ := newTestBridge(t, testConfig())
	connect(t, b)

	err := b.Initialize(context.Background())
	assert.ErrorIs(t, err, connection.ErrAlreadyOpen)
	assert.Equal(t, connection.StateDisconnected, b.State())
	assert.Equal(t, 1, peer.Counters().Closes)

	connect(t, b)
}

func TestOpenRefused(t *testing.T) {
	b, peer, _, _ := newTestBridge(t, testConfig())
	peer.SetRunning(false)

	err := b.Initialize(context.Background())
	assert.ErrorIs(t, err, native.ErrPeerNotRunning)
	assert.Equal(t, connection.StateDisconnected, b.State())
}

func TestAvailabilityFlagsFlipOnce(t *testing.T) {
	b, peer, _, _ := newTestBridge(t, testConfig())

	type flags struct{ start, stop bool }
	var seen []flags
	b.OnAvailabilityChange(func(start, stop bool) { seen = append(seen, flags{start, stop}) })

	ctx := context.Background()
	b.Tick(ctx)
	b.Tick(ctx)
	require.Equal(t, []flags{{true, false}}, seen)
	assert.True(t, b.StartAvailable())

	connect(t, b)
	b.Tick(ctx)
	assert.False(t, b.StartAvailable())
	assert.True(t, b.StopAvailable())

	b.Reset()
	b.Tick(ctx)
	assert.True(t, b.StartAvailable())
	assert.False(t, b.StopAvailable())

	peer.SetRunning(false)
	b.Tick(ctx)
	b.Tick(ctx)
	assert.False(t, b.StartAvailable())
	assert.Equal(t, flags{false, false}, seen[len(seen)-1])
}

func TestReconnectResubscribes(t *testing.T) {
	b, peer, fuel, elec := newTestBridge(t, testConfig())
	connect(t, b)
	peer.Set("FUEL TOTAL QUANTITY", 20.0)

	cancel := fuel.Subscribe(func(property.Change) {})
	defer cancel()
	require.NoError(t, b.Drain())
	require.Equal(t, 20.0, fuel.quantity.Get())

	b.Reset()
	require.Equal(t, 0.0, fuel.quantity.Get())

	connect(t, b)
	require.NoError(t, b.Drain())

	assert.Equal(t, 20.0, fuel.quantity.Get())
	assert.Equal(t, 2, b.Subscribers())
	assert.Equal(t, 0, elec.Observers())
}

func TestSubscribeBeforeSessionDefers(t *testing.T) {
	b, peer, fuel, _ := newTestBridge(t, testConfig())
	peer.Set("FUEL TOTAL QUANTITY", 3.0)

	cancel := fuel.Subscribe(func(property.Change) {})
	defer cancel()
	assert.Equal(t, 0, b.Subscribers())

	connect(t, b)
	require.NoError(t, b.Drain())
	assert.Equal(t, 3.0, fuel.quantity.Get())
}

func TestEventReRequestsValue(t *testing.T) {
	b, peer, _, elec := newTestBridge(t, testConfig())
	connect(t, b)

	cancel := elec.Subscribe(func(property.Change) {})
	defer cancel()
	require.NoError(t, b.Drain())

	peer.Toggle("TOGGLE_MASTER_BATTERY")
	require.NoError(t, b.Drain())
	require.NoError(t, b.Drain())
	assert.True(t, elec.battery.Get())
}

func TestAutoConnectHonoursBackoff(t *testing.T) {
	cfg := testConfig()
	cfg.AutoConnect = true
	cfg.Backoff.Initial = time.Hour
	b, peer, _, _ := newTestBridge(t, cfg)
	peer.Refuse(errors.New("busy"))

	ctx := context.Background()
	b.Tick(ctx)
	assert.Equal(t, 0, peer.Counters().Opens)
	assert.Equal(t, connection.StateDisconnected, b.State())

	peer.Refuse(nil)
	b.Tick(ctx)
	assert.Equal(t, 0, peer.Counters().Opens, "next attempt waits for backoff")
}

func TestAutoConnectOpensSession(t *testing.T) {
	cfg := testConfig()
	cfg.AutoConnect = true
	b, _, _, _ := newTestBridge(t, cfg)

	b.Tick(context.Background())
	assert.Equal(t, connection.StateConnecting, b.State())
	require.NoError(t, b.Drain())
	assert.Equal(t, connection.StateConnected, b.State())
	assert.Equal(t, simpeer.DefaultName, b.PeerName())
	assert.NotEmpty(t, b.SessionID())
}

func TestStateChangeCallbackAndTrace(t *testing.T) {
	trace := &traceRecorder{}
	cfg := testConfig()
	cfg.Trace = trace
	b, _, _, _ := newTestBridge(t, cfg)

	var states []connection.State
	b.OnStateChange(func(_, newState connection.State) { states = append(states, newState) })

	connect(t, b)
	b.Reset()

	assert.Equal(t, []connection.State{
		connection.StateConnecting,
		connection.StateConnected,
		connection.StateDisconnected,
	}, states)
	assert.Len(t, trace.byCategory(log.CategoryState), 3)
	assert.NotEmpty(t, trace.byCategory(log.CategoryDeclare))
}

func TestInitializeUsesIdentity(t *testing.T) {
	cfg := testConfig()
	cfg.Identity = "panel"
	b, peer, _, _ := newTestBridge(t, cfg)

	require.NoError(t, b.Initialize(context.Background()))
	assert.Equal(t, "panel", peer.Conn().Identity())
}

func TestJoinLeaveSignals(t *testing.T) {
	b, peer, fuel, _ := newTestBridge(t, testConfig())
	connect(t, b)

	var joins, leaves int
	b.OnJoin(func() { joins++ })
	b.OnLeave(func() {
		leaves++
		assert.Equal(t, 0.0, fuel.quantity.Get(), "groups reset before the signal")
	})

	b.Join()
	assert.Equal(t, 1, joins)
	assert.Equal(t, 1, peer.Counters().Opens, "join does not open a session")

	peer.Set("FUEL TOTAL QUANTITY", 12.0)
	cancel := fuel.Subscribe(func(property.Change) {})
	defer cancel()
	require.NoError(t, b.Drain())
	require.Equal(t, 12.0, fuel.quantity.Get())

	b.Leave()
	assert.Equal(t, 1, leaves)
	assert.Equal(t, 0.0, fuel.quantity.Get())
	assert.Equal(t, connection.StateConnected, b.State(), "leave keeps the session")
	assert.Contains(t, b.Polled(), quantityDesc.Field)

	b.Tick(context.Background())
	require.NoError(t, b.Drain())
	assert.Equal(t, 12.0, fuel.quantity.Get())
}

// resettingTransport hands out conns whose next Drain first resets the
// bridge, as a concurrent Reset landing inside Drain would.
type resettingTransport struct {
	*simpeer.Peer
	b    *Bridge
	conn *resettingConn
}

func (t *resettingTransport) Open(ctx context.Context, identity string, h native.Handler) (native.Conn, error) {
	c, err := t.Peer.Open(ctx, identity, h)
	if err != nil {
		return nil, err
	}
	t.conn = &resettingConn{Conn: c, b: t.b}
	return t.conn, nil
}

type resettingConn struct {
	native.Conn
	b     *Bridge
	armed bool
}

func (c *resettingConn) Drain() error {
	if c.armed {
		c.armed = false
		c.b.Reset()
	}
	return c.Conn.Drain()
}

func TestDrainAfterConcurrentResetIsQuiet(t *testing.T) {
	trace := &traceRecorder{}
	cfg := testConfig()
	cfg.Trace = trace
	peer := simpeer.New("")
	rt := &resettingTransport{Peer: peer}
	b, err := New(rt, peer, cfg)
	require.NoError(t, err)
	rt.b = b
	connect(t, b)

	rt.conn.armed = true
	err = b.Drain()
	assert.ErrorIs(t, err, connection.ErrNotConnected)
	assert.Empty(t, trace.byCategory(log.CategoryError))
	assert.Equal(t, connection.StateDisconnected, b.State())
	assert.Equal(t, 1, peer.Counters().Closes)
}

func TestStartStop(t *testing.T) {
	cfg := testConfig()
	cfg.PollInterval = 5 * time.Millisecond
	cfg.PumpInterval = 5 * time.Millisecond
	b, peer, fuel, _ := newTestBridge(t, cfg)
	peer.Set("FUEL TOTAL QUANTITY", 1.5)

	cancel := fuel.Subscribe(func(property.Change) {})
	defer cancel()

	require.NoError(t, b.Start(context.Background()))
	assert.ErrorIs(t, b.Start(context.Background()), ErrAlreadyStarted)
	require.NoError(t, b.Initialize(context.Background()))

	assert.Eventually(t, func() bool { return fuel.quantity.Get() == 1.5 }, time.Second, 5*time.Millisecond)

	b.Stop()
	b.Stop()
}
