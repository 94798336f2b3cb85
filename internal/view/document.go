// Package view models the slice of the page the client owns: named
// containers holding ordered, identifiable nodes. All reads and writes are
// funneled through a single goroutine, mirroring the one-UI-thread ownership
// rule of the original page. Callers never need locks.
package view

import "html/template"

// Node is a rendered fragment living in a container. ID must be stable and
// derived from the record it displays (e.g. "post-42") so later lookup and
// removal by id are possible.
type Node struct {
	ID    string
	Class string
	HTML  template.HTML
	Text  string

	// Visible models the entry/exit transition state: a node is appended
	// invisible and shown in a later step, and is hidden again for its exit
	// delay before removal.
	Visible bool

	// Hidden models the user-initiated display:none state of hidden threads
	// and posts. Independent from Visible.
	Hidden bool

	// Interaction hooks, bound at render time rather than delegated, so
	// dynamically inserted content behaves like server-rendered content.
	OnQuote  func()
	OnReport func()
}

// Change describes a single document mutation, delivered to the observer in
// apply order.
type Change struct {
	Op          string // "append", "remove", "show", "hide", "unhide", "text"
	ContainerID string
	NodeID      string
	Text        string
}

type container struct {
	id    string
	nodes []*Node
}

// Document is the root of the owned view tree.
type Document struct {
	ops      chan func()
	closed   chan struct{}
	observer func(Change)

	containers map[string]*container
	order      []string
	index      map[string]*Node
	parent     map[string]*container
}

// NewDocument starts the document's event loop. The observer may be nil; when
// set it receives every mutation in order, from the loop goroutine.
func NewDocument(observer func(Change)) *Document {
	d := &Document{
		ops:        make(chan func()),
		closed:     make(chan struct{}),
		observer:   observer,
		containers: make(map[string]*container),
		index:      make(map[string]*Node),
		parent:     make(map[string]*container),
	}
	go d.run()
	return d
}

func (d *Document) run() {
	for {
		select {
		case op := <-d.ops:
			op()
		case <-d.closed:
			return
		}
	}
}

// do runs op on the loop goroutine and waits for it to complete. After Close
// it is a no-op, so stray timers firing during teardown are harmless.
func (d *Document) do(op func()) {
	done := make(chan struct{})
	select {
	case d.ops <- func() {
		op()
		close(done)
	}:
		select {
		case <-done:
		case <-d.closed:
		}
	case <-d.closed:
	}
}

// Close stops the event loop. Pending timer callbacks become no-ops.
func (d *Document) Close() {
	select {
	case <-d.closed:
	default:
		close(d.closed)
	}
}

func (d *Document) emit(c Change) {
	if d.observer != nil {
		d.observer(c)
	}
}

// EnsureContainer creates the named container if it does not exist yet.
// Containers are per-page singletons created lazily on first use.
func (d *Document) EnsureContainer(id string) {
	d.do(func() { d.ensureContainer(id) })
}

func (d *Document) ensureContainer(id string) *container {
	if c, ok := d.containers[id]; ok {
		return c
	}
	c := &container{id: id}
	d.containers[id] = c
	d.order = append(d.order, id)
	return c
}

// Append inserts the node at the end of the container, creating the container
// when needed. A node carrying an id already in the document replaces the
// existing one, so an id never maps to more than one node.
func (d *Document) Append(containerID string, n *Node) {
	d.do(func() {
		if _, ok := d.index[n.ID]; ok {
			d.remove(n.ID)
		}
		d.append(containerID, n)
	})
}

// AppendIfAbsent inserts the node only when its id is not in the document
// yet, reporting whether it inserted. The check and the insert are one
// document op, so two goroutines racing over the same id insert exactly one
// node between them.
func (d *Document) AppendIfAbsent(containerID string, n *Node) bool {
	var inserted bool
	d.do(func() {
		if _, ok := d.index[n.ID]; ok {
			return
		}
		d.append(containerID, n)
		inserted = true
	})
	return inserted
}

func (d *Document) append(containerID string, n *Node) {
	c := d.ensureContainer(containerID)
	c.nodes = append(c.nodes, n)
	d.index[n.ID] = n
	d.parent[n.ID] = c
	d.emit(Change{Op: "append", ContainerID: containerID, NodeID: n.ID})
}

// Remove deletes the node immediately. Removing an id that is not present is
// a no-op; a deletion event may arrive before its post was ever rendered.
func (d *Document) Remove(nodeID string) {
	d.do(func() { d.remove(nodeID) })
}

func (d *Document) remove(nodeID string) {
	c, ok := d.parent[nodeID]
	if !ok {
		return
	}
	for i, n := range c.nodes {
		if n.ID == nodeID {
			c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
			break
		}
	}
	delete(d.index, nodeID)
	delete(d.parent, nodeID)
	d.emit(Change{Op: "remove", ContainerID: c.id, NodeID: nodeID})
}

// SetVisible flips the transition state of a node.
func (d *Document) SetVisible(nodeID string, visible bool) {
	d.do(func() {
		n, ok := d.index[nodeID]
		if !ok {
			return
		}
		n.Visible = visible
		op := "show"
		if !visible {
			op = "hide"
		}
		d.emit(Change{Op: op, ContainerID: d.parent[nodeID].id, NodeID: nodeID})
	})
}

// SetHidden sets the user-hidden state of a node.
func (d *Document) SetHidden(nodeID string, hidden bool) {
	d.do(func() {
		n, ok := d.index[nodeID]
		if !ok {
			return
		}
		n.Hidden = hidden
		op := "hide"
		if !hidden {
			op = "unhide"
		}
		d.emit(Change{Op: op, ContainerID: d.parent[nodeID].id, NodeID: nodeID})
	})
}

// SetText replaces the text content of a node, e.g. the thread status
// indicator.
func (d *Document) SetText(nodeID, text string) {
	d.do(func() {
		n, ok := d.index[nodeID]
		if !ok {
			return
		}
		n.Text = text
		d.emit(Change{Op: "text", ContainerID: d.parent[nodeID].id, NodeID: nodeID, Text: text})
	})
}

// Contains reports whether a node with the id is currently in the document.
func (d *Document) Contains(nodeID string) bool {
	var ok bool
	d.do(func() { _, ok = d.index[nodeID] })
	return ok
}

// Get returns a snapshot of the node, or nil when absent.
func (d *Document) Get(nodeID string) *Node {
	var out *Node
	d.do(func() {
		if n, ok := d.index[nodeID]; ok {
			copied := *n
			out = &copied
		}
	})
	return out
}

// Len returns the number of nodes in a container.
func (d *Document) Len(containerID string) int {
	var n int
	d.do(func() {
		if c, ok := d.containers[containerID]; ok {
			n = len(c.nodes)
		}
	})
	return n
}

// IDs returns the node ids of a container in document order.
func (d *Document) IDs(containerID string) []string {
	var ids []string
	d.do(func() {
		c, ok := d.containers[containerID]
		if !ok {
			return
		}
		ids = make([]string, len(c.nodes))
		for i, n := range c.nodes {
			ids[i] = n.ID
		}
	})
	return ids
}
