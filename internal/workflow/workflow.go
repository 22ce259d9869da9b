// Package workflow holds the status transition tables for incident reports and document
// requests. Handlers validate against them and clients fetch them to build their pickers.
package workflow

import (
	"errors"
	"fmt"
	"sort"

	"github.com/noah-isme/civic-report-api/internal/models"
)

var (
	ErrUnknownStatus      = errors.New("unknown status")
	ErrTransitionDenied   = errors.New("transition not allowed")
	ErrRoleDenied         = errors.New("role may not perform this transition")
	ErrDedicatedOperation = errors.New("transition requires a dedicated operation")
)

// Operation names a route that owns a transition instead of the generic status update.
type Operation string

const (
	OpStatusUpdate Operation = ""
	OpTransfer     Operation = "transfer"
	OpReject       Operation = "reject"
)

// Rule is one outgoing edge of a state.
type Rule struct {
	To            string            `json:"to"`
	RequiresProof bool              `json:"requires_proof,omitempty"`
	Roles         []models.UserRole `json:"roles,omitempty"`
	Via           Operation         `json:"via,omitempty"`
}

func (r Rule) permits(role models.UserRole) bool {
	if len(r.Roles) == 0 {
		return true
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Machine is an immutable transition table.
type Machine struct {
	name   string
	states []string
	edges  map[string][]Rule
}

func newMachine(name string, states []string, edges map[string][]Rule) *Machine {
	for from, rules := range edges {
		for _, r := range rules {
			if !contains(states, from) || !contains(states, r.To) {
				panic(fmt.Sprintf("workflow %s: edge %s -> %s uses an undeclared state", name, from, r.To))
			}
		}
	}
	return &Machine{name: name, states: states, edges: edges}
}

// Name identifies the entity the machine governs.
func (m *Machine) Name() string { return m.name }

// States lists every status in lifecycle order.
func (m *Machine) States() []string {
	return append([]string(nil), m.states...)
}

// Known reports whether status belongs to the machine.
func (m *Machine) Known(status string) bool { return contains(m.states, status) }

// Terminal reports whether status has no outgoing edges.
func (m *Machine) Terminal(status string) bool {
	return m.Known(status) && len(m.edges[status]) == 0
}

// Next lists the statuses reachable from status by role through the generic update.
func (m *Machine) Next(from string, role models.UserRole) []string {
	next := make([]string, 0, len(m.edges[from]))
	for _, r := range m.edges[from] {
		if r.Via == OpStatusUpdate && r.permits(role) {
			next = append(next, r.To)
		}
	}
	return next
}

// Sources lists every status with an edge into to, sorted.
func (m *Machine) Sources(to string) []string {
	sources := make([]string, 0)
	for from, rules := range m.edges {
		for _, r := range rules {
			if r.To == to {
				sources = append(sources, from)
			}
		}
	}
	sort.Strings(sources)
	return sources
}

// Check validates a transition performed by role through op and returns its rule.
func (m *Machine) Check(from, to string, role models.UserRole, op Operation) (Rule, error) {
	if !m.Known(from) {
		return Rule{}, fmt.Errorf("%s %q: %w", m.name, from, ErrUnknownStatus)
	}
	if !m.Known(to) {
		return Rule{}, fmt.Errorf("%s %q: %w", m.name, to, ErrUnknownStatus)
	}
	for _, r := range m.edges[from] {
		if r.To != to {
			continue
		}
		if r.Via != op {
			return Rule{}, fmt.Errorf("%s %s -> %s: %w", m.name, from, to, ErrDedicatedOperation)
		}
		if !r.permits(role) {
			return Rule{}, fmt.Errorf("%s %s -> %s as %s: %w", m.name, from, to, role, ErrRoleDenied)
		}
		return r, nil
	}
	return Rule{}, fmt.Errorf("%s %s -> %s: %w", m.name, from, to, ErrTransitionDenied)
}

// ValidateEntry checks a history entry before it is appended.
func (m *Machine) ValidateEntry(e models.StatusHistoryEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if !m.Known(e.Label) {
		return fmt.Errorf("%s history label %q: %w", m.name, e.Label, ErrUnknownStatus)
	}
	return nil
}

// Table exposes the edges keyed by source status.
func (m *Machine) Table() map[string][]Rule {
	out := make(map[string][]Rule, len(m.states))
	for _, s := range m.states {
		rules := m.edges[s]
		copied := make([]Rule, len(rules))
		copy(copied, rules)
		out[s] = copied
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
