// Package console provides the interactive command line of simbridge.
package console

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/simbridge/simbridge-go/pkg/connection"
	"github.com/simbridge/simbridge-go/pkg/property"
)

// Session is the bridge surface the console drives.
type Session interface {
	Initialize(ctx context.Context) error
	Reset()
	Join()
	Leave()
	State() connection.State
	PeerName() string
	SessionID() string
	StartAvailable() bool
	StopAvailable() bool
	Subscribers() int
}

// Group is a property group the console can watch.
type Group interface {
	Name() string
	Properties() []property.Property
	Property(key string) (property.Property, error)
	Subscribe(fn func(property.Change)) (cancel func())
}

// Simulator scripts an in-process peer. It is nil when talking to a real
// simulator.
type Simulator interface {
	Set(name string, v any)
	Toggle(event string)
	Quit()
	SetRunning(running bool)
}

// Console handles interactive mode.
type Console struct {
	session Session
	groups  map[string]Group
	order   []string
	sim     Simulator

	mu      sync.Mutex
	out     io.Writer
	watches map[string]func()
}

// New creates a console writing to out.
func New(session Session, groups []Group, sim Simulator, out io.Writer) *Console {
	c := &Console{
		session: session,
		groups:  make(map[string]Group, len(groups)),
		sim:     sim,
		out:     out,
		watches: make(map[string]func()),
	}
	for _, g := range groups {
		key := strings.ToLower(g.Name())
		c.groups[key] = g
		c.order = append(c.order, key)
	}
	return c
}

// Run reads commands with readline until quit, EOF or ctx is done.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "simbridge> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	c.setOutput(rl.Stdout())
	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			c.printf("Exiting...\n")
			cancel()
			return nil
		}

		if !c.Execute(ctx, line) {
			cancel()
			return nil
		}
	}
}

// Close cancels every watch.
func (c *Console) Close() {
	c.mu.Lock()
	watches := c.watches
	c.watches = make(map[string]func())
	c.mu.Unlock()

	for _, cancel := range watches {
		cancel()
	}
}

// Execute runs one command line. It returns false when the console should
// exit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "status", "s":
		c.cmdStatus()

	case "connect":
		c.cmdConnect(ctx)

	case "disconnect":
		c.session.Reset()
		c.printf("Disconnected\n")

	case "join":
		c.session.Join()
		c.printf("Join requested\n")

	case "leave":
		c.session.Leave()
		c.printf("Left the simulation, values reset\n")

	case "groups", "g":
		c.cmdGroups()

	case "get", "read", "r":
		c.cmdGet(args)

	case "set", "write", "w":
		c.cmdSet(args)

	case "watch":
		c.cmdWatch(args)

	case "unwatch":
		c.cmdUnwatch(args)

	case "sim":
		c.cmdSim(args)

	case "quit", "exit", "q":
		c.printf("Exiting...\n")
		return false

	default:
		c.printf("Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (c *Console) printHelp() {
	c.printf(`
simbridge commands:
  Session:
    connect              - Open a session with the simulator
    disconnect           - Close the session
    join                 - Signal that this station joins the simulation
    leave                - Signal a leave; every value returns to its default
    status               - Show session state

  Properties:
    groups               - List groups and their properties
    get <group>[.<key>]  - Show cached values
    set <group>.<key> <value>
                         - Write a value to the simulator
    watch <group>        - Subscribe and print changes
    unwatch <group>      - Drop the subscription

  Simulator (in-process peer only):
    sim set <NAME> <value>   - Change a simulator variable
    sim toggle <EVENT>       - Fire a client event
    sim quit                 - Make the simulator quit
    sim running on|off       - Toggle whether the simulator appears to run

  General:
    help                 - Show this help
    quit                 - Exit
`)
}

func (c *Console) cmdStatus() {
	c.printf("State:       %s\n", c.session.State())
	if peer := c.session.PeerName(); peer != "" {
		c.printf("Peer:        %s\n", peer)
	}
	if id := c.session.SessionID(); id != "" {
		c.printf("Session:     %s\n", id)
	}
	c.printf("Start:       %s\n", yesNo(c.session.StartAvailable()))
	c.printf("Stop:        %s\n", yesNo(c.session.StopAvailable()))
	c.printf("Subscribers: %d\n", c.session.Subscribers())

	c.mu.Lock()
	watched := make([]string, 0, len(c.watches))
	for name := range c.watches {
		watched = append(watched, name)
	}
	c.mu.Unlock()
	sort.Strings(watched)
	if len(watched) > 0 {
		c.printf("Watching:    %s\n", strings.Join(watched, ", "))
	}
}

func (c *Console) cmdConnect(ctx context.Context) {
	if err := c.session.Initialize(ctx); err != nil {
		c.printf("Error: %v\n", err)
		return
	}
	c.printf("Connecting...\n")
}

func (c *Console) cmdGroups() {
	for _, name := range c.order {
		g := c.groups[name]
		c.printf("%s\n", g.Name())
		for _, p := range g.Properties() {
			d := p.Descriptor()
			flags := ""
			if d.Writable {
				flags = " [rw]"
			}
			if d.EventBound() {
				flags += " [event " + d.Event.Name + "]"
			}
			unit := ""
			if d.Unit != "" {
				unit = " (" + d.Unit + ")"
			}
			c.printf("  %-22s %s%s%s\n", d.Key, d.Name, unit, flags)
		}
	}
}

func (c *Console) cmdGet(args []string) {
	if len(args) < 1 {
		c.printf("Usage: get <group>[.<key>]\n")
		return
	}

	groupName, key, _ := strings.Cut(args[0], ".")
	g, ok := c.lookupGroup(groupName)
	if !ok {
		return
	}

	if key == "" {
		for _, p := range g.Properties() {
			c.printf("  %s = %s\n", p.Descriptor().Key, formatValue(p))
		}
		return
	}

	p, err := g.Property(key)
	if err != nil {
		c.printf("Error: %v\n", err)
		return
	}
	c.printf("%s.%s = %s\n", g.Name(), key, formatValue(p))
}

func (c *Console) cmdSet(args []string) {
	if len(args) < 2 {
		c.printf("Usage: set <group>.<key> <value>\n")
		c.printf("  Example: set fuel.TankCenterQuantity 120\n")
		return
	}

	groupName, key, ok := strings.Cut(args[0], ".")
	if !ok {
		c.printf("Invalid property: %s (expected <group>.<key>)\n", args[0])
		return
	}
	g, ok := c.lookupGroup(groupName)
	if !ok {
		return
	}
	p, err := g.Property(key)
	if err != nil {
		c.printf("Error: %v\n", err)
		return
	}

	value := strings.Trim(strings.Join(args[1:], " "), "\"'")
	if err := p.SetText(value); err != nil {
		c.printf("Error: %v\n", err)
		return
	}
	c.printf("Wrote %s.%s\n", g.Name(), key)
}

func (c *Console) cmdWatch(args []string) {
	if len(args) < 1 {
		c.printf("Usage: watch <group>\n")
		return
	}
	g, ok := c.lookupGroup(args[0])
	if !ok {
		return
	}
	name := g.Name()

	c.mu.Lock()
	if _, exists := c.watches[name]; exists {
		c.mu.Unlock()
		c.printf("Already watching %s\n", name)
		return
	}
	c.mu.Unlock()

	cancel := g.Subscribe(func(ch property.Change) {
		c.printf("[%s] %s: %v -> %v\n", name, ch.Key, ch.Old, ch.New)
	})

	c.mu.Lock()
	c.watches[name] = cancel
	c.mu.Unlock()
	c.printf("Watching %s\n", name)
}

func (c *Console) cmdUnwatch(args []string) {
	if len(args) < 1 {
		c.printf("Usage: unwatch <group>\n")
		return
	}
	g, ok := c.lookupGroup(args[0])
	if !ok {
		return
	}

	c.mu.Lock()
	cancel, exists := c.watches[g.Name()]
	delete(c.watches, g.Name())
	c.mu.Unlock()

	if !exists {
		c.printf("Not watching %s\n", g.Name())
		return
	}
	cancel()
	c.printf("Stopped watching %s\n", g.Name())
}

func (c *Console) cmdSim(args []string) {
	if c.sim == nil {
		c.printf("No in-process simulator\n")
		return
	}
	if len(args) < 1 {
		c.printf("Usage: sim set|toggle|quit|running ...\n")
		return
	}

	switch strings.ToLower(args[0]) {
	case "set":
		if len(args) < 3 {
			c.printf("Usage: sim set <NAME> <value>\n")
			return
		}
		// Native names contain spaces; the value is the last argument.
		name := strings.ToUpper(strings.Join(args[1:len(args)-1], " "))
		c.sim.Set(name, parseSimValue(args[len(args)-1]))
		c.printf("Set %s\n", name)

	case "toggle":
		if len(args) < 2 {
			c.printf("Usage: sim toggle <EVENT>\n")
			return
		}
		c.sim.Toggle(strings.ToUpper(args[1]))
		c.printf("Fired %s\n", strings.ToUpper(args[1]))

	case "quit":
		c.sim.Quit()
		c.printf("Simulator quit queued\n")

	case "running":
		if len(args) < 2 {
			c.printf("Usage: sim running on|off\n")
			return
		}
		running := args[1] == "on" || args[1] == "true"
		c.sim.SetRunning(running)
		c.printf("Simulator running: %s\n", yesNo(running))

	default:
		c.printf("Unknown sim command: %s\n", args[0])
	}
}

func (c *Console) lookupGroup(name string) (Group, bool) {
	g, ok := c.groups[strings.ToLower(name)]
	if !ok {
		c.printf("Unknown group: %s\n", name)
	}
	return g, ok
}

func (c *Console) setOutput(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = w
}

// printf is safe to call from change listeners on other goroutines.
func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	out := c.out
	c.mu.Unlock()
	fmt.Fprintf(out, format, args...)
}
