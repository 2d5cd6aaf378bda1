// Package study holds one instance of a system: the network of components
// wired through their ports, and the data base that values their
// parameters.
package study

import (
	"fmt"
	"sync"

	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/model"
)

// Component is one instance of a model.
type Component struct {
	ID    string
	Model *model.Model
}

// NewComponent returns a component of model m.
func NewComponent(m *model.Model, id string) Component {
	return Component{ID: id, Model: m}
}

// PortRef designates one port of one component.
type PortRef struct {
	Component Component
	PortID    string
}

// ID renders the reference as "<port>_<component>".
func (p PortRef) ID() string {
	return p.PortID + "_" + p.Component.ID
}

// FieldOwner names the endpoint whose model defines one field of a
// connection.
type FieldOwner struct {
	Field string
	Owner PortRef
}

// Connection links two ports of the same type. For every field exactly one
// endpoint provides the definition.
type Connection struct {
	Port1, Port2 PortRef
	PortType     model.PortType
	owners       []FieldOwner
}

// ID renders the connection as "<port1>__<port2>".
func (c Connection) ID() string {
	return c.Port1.ID() + "__" + c.Port2.ID()
}

// FieldOwners lists the owner of every field, in port type field order.
func (c Connection) FieldOwners() []FieldOwner {
	return append([]FieldOwner(nil), c.owners...)
}

func newConnection(p1, p2 PortRef) (Connection, error) {
	port1, ok1 := p1.Component.Model.Port(p1.PortID)
	port2, ok2 := p2.Component.Model.Port(p2.PortID)
	if !ok1 {
		return Connection{}, errs.Configuration("component %q has no port %q", p1.Component.ID, p1.PortID)
	}
	if !ok2 {
		return Connection{}, errs.Configuration("component %q has no port %q", p2.Component.ID, p2.PortID)
	}
	if !port1.PortType.Equal(port2.PortType) {
		return Connection{}, errs.Configuration("incompatible port types %q and %q between %s and %s",
			port1.PortType.ID, port2.PortType.ID, p1.ID(), p2.ID())
	}

	c := Connection{Port1: p1, Port2: p2, PortType: port1.PortType}
	for _, field := range port1.PortType.Fields {
		_, def1 := p1.Component.Model.PortFieldDefinition(model.PortFieldID{PortName: p1.PortID, FieldName: field.Name})
		_, def2 := p2.Component.Model.PortFieldDefinition(model.PortFieldID{PortName: p2.PortID, FieldName: field.Name})
		switch {
		case !def1 && !def2:
			return Connection{}, errs.Configuration("no definition for port field %s on %s", field.Name, c.ID())
		case def1 && def2:
			return Connection{}, errs.Configuration("port field %s on %s has 2 definitions", field.Name, c.ID())
		case def1:
			c.owners = append(c.owners, FieldOwner{Field: field.Name, Owner: p1})
		default:
			c.owners = append(c.owners, FieldOwner{Field: field.Name, Owner: p2})
		}
	}
	return c, nil
}

// Network is a thread-safe in-memory topology. Iteration follows insertion
// order, nodes before components.
type Network struct {
	ID string

	mu          sync.RWMutex
	byID        map[string]Component
	nodes       []string
	components  []string
	connections []Connection
}

// NewNetwork returns an empty network.
func NewNetwork(id string) *Network {
	return &Network{ID: id, byID: make(map[string]Component)}
}

// AddNode adds a balance node. Node and component ids share one namespace.
func (n *Network) AddNode(c Component) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.checkNew(c); err != nil {
		return err
	}
	n.byID[c.ID] = c
	n.nodes = append(n.nodes, c.ID)
	return nil
}

// AddComponent adds a component that is not a node.
func (n *Network) AddComponent(c Component) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.checkNew(c); err != nil {
		return err
	}
	n.byID[c.ID] = c
	n.components = append(n.components, c.ID)
	return nil
}

func (n *Network) checkNew(c Component) error {
	if c.Model == nil {
		return errs.Usage("component %q has no model", c.ID)
	}
	if _, exists := n.byID[c.ID]; exists {
		return errs.Configuration("component %q already exists in network %q", c.ID, n.ID)
	}
	return nil
}

// Component returns the node or component with the given id.
func (n *Network) Component(id string) (Component, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	c, ok := n.byID[id]
	return c, ok
}

// Nodes returns the nodes in insertion order.
func (n *Network) Nodes() []Component {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.collect(n.nodes)
}

// Components returns the non-node components in insertion order.
func (n *Network) Components() []Component {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.collect(n.components)
}

// AllComponents returns nodes first, then components.
func (n *Network) AllComponents() []Component {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append(n.collect(n.nodes), n.collect(n.components)...)
}

func (n *Network) collect(ids []string) []Component {
	out := make([]Component, 0, len(ids))
	for _, id := range ids {
		out = append(out, n.byID[id])
	}
	return out
}

// Connect links two ports after checking their types and field ownership.
func (n *Network) Connect(p1, p2 PortRef) error {
	c, err := newConnection(p1, p2)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ref := range []PortRef{p1, p2} {
		if _, ok := n.byID[ref.Component.ID]; !ok {
			return errs.Configuration("cannot connect %s: component %q is not part of network %q", c.ID(), ref.Component.ID, n.ID)
		}
	}
	n.connections = append(n.connections, c)
	return nil
}

// MustConnect is Connect for fixtures; it panics on error.
func (n *Network) MustConnect(p1, p2 PortRef) {
	if err := n.Connect(p1, p2); err != nil {
		panic(fmt.Sprintf("study: %v", err))
	}
}

// Connections returns the connections in insertion order.
func (n *Network) Connections() []Connection {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]Connection(nil), n.connections...)
}
