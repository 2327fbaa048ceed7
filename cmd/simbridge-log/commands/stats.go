package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/simbridge/simbridge-go/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents       int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	EventsByGroup     map[string]int
	Sessions          map[string]*SessionStats
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single session.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Peer      string
}

// CollectStats reads the trace file and aggregates it.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		EventsByGroup:     make(map[string]int),
		Sessions:          make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		stats.EventsByDirection[event.Direction]++
		if event.Group != "" {
			stats.EventsByGroup[event.Group]++
		}
		if event.Category == log.CategoryError {
			stats.Errors++
		}

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if event.SessionID == "" {
			continue
		}
		s, ok := stats.Sessions[event.SessionID]
		if !ok {
			s = &SessionStats{FirstSeen: event.Timestamp}
			stats.Sessions[event.SessionID] = s
		}
		s.Events++
		s.LastSeen = event.Timestamp
		if sc := event.StateChange; sc != nil && sc.PeerName != "" {
			s.Peer = sc.PeerName
		}
	}
	return stats, nil
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintf(w, "Total events: %d\n", stats.TotalEvents)
	if stats.TotalEvents == 0 {
		return
	}
	fmt.Fprintf(w, "Time range:   %s - %s (%s)\n",
		stats.TimeRange.Start.UTC().Format(time.RFC3339),
		stats.TimeRange.End.UTC().Format(time.RFC3339),
		stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
	fmt.Fprintf(w, "Errors:       %d\n", stats.Errors)

	fmt.Fprintln(w, "\nBy category:")
	for c := log.CategoryState; c <= log.CategoryError; c++ {
		if n := stats.EventsByCategory[c]; n > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", c, n)
		}
	}

	fmt.Fprintln(w, "\nBy direction:")
	fmt.Fprintf(w, "  %-14s %d\n", log.DirectionIn, stats.EventsByDirection[log.DirectionIn])
	fmt.Fprintf(w, "  %-14s %d\n", log.DirectionOut, stats.EventsByDirection[log.DirectionOut])

	if len(stats.EventsByGroup) > 0 {
		fmt.Fprintln(w, "\nBy group:")
		groups := make([]string, 0, len(stats.EventsByGroup))
		for g := range stats.EventsByGroup {
			groups = append(groups, g)
		}
		sort.Strings(groups)
		for _, g := range groups {
			fmt.Fprintf(w, "  %-22s %d\n", g, stats.EventsByGroup[g])
		}
	}

	if len(stats.Sessions) > 0 {
		fmt.Fprintln(w, "\nSessions:")
		ids := make([]string, 0, len(stats.Sessions))
		for id := range stats.Sessions {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return stats.Sessions[ids[i]].FirstSeen.Before(stats.Sessions[ids[j]].FirstSeen)
		})
		for _, id := range ids {
			s := stats.Sessions[id]
			fmt.Fprintf(w, "  %s  events=%d  duration=%s", shortenSessionID(id), s.Events, s.LastSeen.Sub(s.FirstSeen).Round(time.Millisecond))
			if s.Peer != "" {
				fmt.Fprintf(w, "  peer=%s", s.Peer)
			}
			fmt.Fprintln(w)
		}
	}
}
