package subscription

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/simbridge/simbridge-go/pkg/demux"
	"github.com/simbridge/simbridge-go/pkg/native"
	"github.com/simbridge/simbridge-go/pkg/property"
)

// Registry errors.
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNoSession            = errors.New("no open session")
)

// Native is the part of the native connection the registry drives.
type Native interface {
	DeclareField(decl native.FieldDecl) error
	BindWriteEvent(event native.EventID, name string) error
	AddEventToGroup(group native.GroupID, event native.EventID) error
	RequestValue(req native.RequestID, field native.FieldID) error
	ClearGroup(group native.GroupID) error
}

// Owner receives the replies and notifications for a subscribed field.
type Owner interface {
	demux.ValueSink
	demux.EventSink
}

// Handle identifies one subscription of a field. The zero Handle is invalid.
type Handle struct {
	Field native.FieldID
	id    uint64
}

// Valid reports whether h was returned by Subscribe.
func (h Handle) Valid() bool {
	return h.id != 0
}

// entry is the registry record of an active field.
type entry struct {
	desc    property.Descriptor
	owner   Owner
	handles map[uint64]struct{}
}

// Registry tracks reference counts per field and keeps the polling set,
// the notification groups and the demux routes in step with them.
type Registry struct {
	mu sync.Mutex

	router *demux.Router
	logger *slog.Logger

	// Session
	native   Native
	declared map[native.FieldID]struct{}
	bound    map[native.EventID]struct{}

	// Subscriptions
	entries map[native.FieldID]*entry
	polled  map[native.FieldID]property.Descriptor

	// Active events per notification group, counted by field.
	groups map[native.GroupID]map[native.EventID]int

	nextHandle uint64
}

// NewRegistry creates an inactive registry that installs routes on router.
func NewRegistry(router *demux.Router, logger *slog.Logger) *Registry {
	return &Registry{
		router:   router,
		logger:   logger,
		declared: make(map[native.FieldID]struct{}),
		bound:    make(map[native.EventID]struct{}),
		entries:  make(map[native.FieldID]*entry),
		polled:   make(map[native.FieldID]property.Descriptor),
		groups:   make(map[native.GroupID]map[native.EventID]int),
	}
}

// Open activates the registry for a new session on n.
func (r *Registry) Open(n Native) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
	r.native = n
}

// Clear drops every entry, route and declaration. Outstanding handles
// become stale.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

func (r *Registry) resetLocked() {
	r.native = nil
	clear(r.declared)
	clear(r.bound)
	clear(r.entries)
	clear(r.polled)
	clear(r.groups)
	r.router.Clear()
}

// Active reports whether a session is open.
func (r *Registry) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.native != nil
}

// Declare declares desc's field (and binds its event) if this session has
// not done so yet.
func (r *Registry) Declare(desc property.Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.native == nil {
		return ErrNoSession
	}
	return r.declareLocked(desc)
}

func (r *Registry) declareLocked(desc property.Descriptor) error {
	if _, ok := r.declared[desc.Field]; !ok {
		if err := r.native.DeclareField(desc.Decl()); err != nil {
			return fmt.Errorf("declare %s: %w", desc.Name, err)
		}
		r.declared[desc.Field] = struct{}{}
	}
	if ev := desc.Event; ev != nil {
		if _, ok := r.bound[ev.ID]; !ok {
			if err := r.native.BindWriteEvent(ev.ID, ev.Name); err != nil {
				return fmt.Errorf("bind event %s: %w", ev.Name, err)
			}
			r.bound[ev.ID] = struct{}{}
		}
	}
	return nil
}

// IsDeclared reports whether field was declared this session.
func (r *Registry) IsDeclared(field native.FieldID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.declared[field]
	return ok
}

// Subscribe adds a reference to desc's field on behalf of owner.
func (r *Registry) Subscribe(desc property.Descriptor, owner Owner) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.native == nil {
		return Handle{}, ErrNoSession
	}

	r.nextHandle++
	h := Handle{Field: desc.Field, id: r.nextHandle}

	if e, ok := r.entries[desc.Field]; ok {
		e.handles[h.id] = struct{}{}
		return h, nil
	}

	if err := r.declareLocked(desc); err != nil {
		return Handle{}, err
	}

	if desc.EventBound() {
		if err := r.addGroupEventLocked(desc, owner); err != nil {
			return Handle{}, err
		}
	} else {
		r.polled[desc.Field] = desc
	}

	r.entries[desc.Field] = &entry{
		desc:    desc,
		owner:   owner,
		handles: map[uint64]struct{}{h.id: {}},
	}
	r.router.SetValueRoute(desc.Field, owner)

	if err := r.native.RequestValue(desc.Request, desc.Field); err != nil {
		r.warnLog("initial request failed", "field", desc.Name, "error", err)
	}

	return h, nil
}

func (r *Registry) addGroupEventLocked(desc property.Descriptor, owner Owner) error {
	events := r.groups[desc.Group]
	if events == nil {
		events = make(map[native.EventID]int)
	}
	if events[desc.Event.ID] == 0 {
		if err := r.native.AddEventToGroup(desc.Group, desc.Event.ID); err != nil {
			return fmt.Errorf("add %s to group %d: %w", desc.Event.Name, desc.Group, err)
		}
	}
	events[desc.Event.ID]++
	r.groups[desc.Group] = events
	r.router.SetEventRoute(desc.Group, owner)
	return nil
}

// Unsubscribe releases h. Stale or unknown handles return
// ErrSubscriptionNotFound.
func (r *Registry) Unsubscribe(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[h.Field]
	if !ok {
		return ErrSubscriptionNotFound
	}
	if _, ok := e.handles[h.id]; !ok {
		return ErrSubscriptionNotFound
	}

	delete(e.handles, h.id)
	if len(e.handles) > 0 {
		return nil
	}

	delete(r.entries, h.Field)
	r.router.RemoveValueRoute(h.Field)

	if !e.desc.EventBound() {
		delete(r.polled, h.Field)
		return nil
	}

	events, ok := r.groups[e.desc.Group]
	if !ok {
		return nil
	}
	events[e.desc.Event.ID]--
	if events[e.desc.Event.ID] <= 0 {
		delete(events, e.desc.Event.ID)
	}
	if len(events) == 0 {
		return r.clearGroupLocked(e.desc.Group)
	}
	return nil
}

// UnsubscribeGroup removes the route for group and clears it natively.
func (r *Registry) UnsubscribeGroup(group native.GroupID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.native == nil {
		return ErrNoSession
	}
	return r.clearGroupLocked(group)
}

func (r *Registry) clearGroupLocked(group native.GroupID) error {
	delete(r.groups, group)
	r.router.RemoveEventRoute(group)
	if err := r.native.ClearGroup(group); err != nil {
		return fmt.Errorf("clear group %d: %w", group, err)
	}
	return nil
}

// ForEachPolled calls fn for every polled field in field id order.
// fn runs outside the registry lock.
func (r *Registry) ForEachPolled(fn func(desc property.Descriptor)) {
	r.mu.Lock()
	descs := make([]property.Descriptor, 0, len(r.polled))
	for _, d := range r.polled {
		if d.EventBound() {
			r.mu.Unlock()
			panic(fmt.Sprintf("subscription: event-bound field %s in polling set", d.Name))
		}
		descs = append(descs, d)
	}
	r.mu.Unlock()

	slices.SortFunc(descs, func(a, b property.Descriptor) int {
		return int(a.Field) - int(b.Field)
	})
	for _, d := range descs {
		fn(d)
	}
}

// Polled returns the polled field ids in order.
func (r *Registry) Polled() []native.FieldID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]native.FieldID, 0, len(r.polled))
	for id := range r.polled {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Refs returns the reference count of field.
func (r *Registry) Refs(field native.FieldID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[field]; ok {
		return len(e.handles)
	}
	return 0
}

// Count returns the number of active fields.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Subscribers returns the total number of live handles.
func (r *Registry) Subscribers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		n += len(e.handles)
	}
	return n
}

func (r *Registry) warnLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, append([]any{"component", "subscription"}, args...)...)
	}
}
