package list

// Node is an intrusive membership slot. An object embeds one Node per list
// Tag it can belong to; a node is a member of at most one list at a time.
// An unlinked node points at itself.
type Node[T any, Tag any] struct {
	next, prev *Node[T, Tag]
	parent     *List[T, Tag]
	value      T
}

// Member is the tag-independent view of a Node used by its object.
type Member interface {
	// Unlink removes the node from its list through history.
	Unlink()

	// Release removes the node from its list directly, without a command.
	Release()
}

// Registrar records the nodes belonging to one object.
type Registrar interface {
	RegisterListNode(m Member)
}

// Init binds the node to value, the object it represents, and registers the
// node with owner so the owner can unlink all its memberships on destroy.
func (n *Node[T, Tag]) Init(owner Registrar, value T) {
	n.lazyInit()
	n.value = value
	if owner != nil {
		owner.RegisterListNode(n)
	}
}

func (n *Node[T, Tag]) lazyInit() {
	if n.next == nil {
		n.next = n
		n.prev = n
	}
}

// Value returns the object the node represents.
func (n *Node[T, Tag]) Value() T {
	return n.value
}

// IsLinked reports whether the node is a member of a list.
func (n *Node[T, Tag]) IsLinked() bool {
	return n.next != nil && n.next != n
}

// List returns the list the node belongs to, or nil.
func (n *Node[T, Tag]) List() *List[T, Tag] {
	return n.parent
}

// Unlink removes the node from its list. No-op if unlinked.
func (n *Node[T, Tag]) Unlink() {
	if n.parent == nil {
		return
	}
	n.parent.owner.ApplyPropertyChange(&relink[T, Tag]{node: n, next: n})
}

// Release detaches the node without producing a command or a notification.
func (n *Node[T, Tag]) Release() {
	if n.next == nil {
		return
	}
	link(n.prev, n.next)
	link(n, n)
	n.parent = nil
}

func link[T, Tag any](u, v *Node[T, Tag]) {
	u.next = v
	v.prev = u
}

// relink moves node in front of next inside parent. next == node with a nil
// parent leaves the node unlinked. Each Apply swaps the captured position
// with the node's current one, so the command is its own inverse.
type relink[T, Tag any] struct {
	node   *Node[T, Tag]
	next   *Node[T, Tag]
	parent *List[T, Tag]
}

func (c *relink[T, Tag]) Apply(bool) {
	n := c.node
	c.parent, n.parent = n.parent, c.parent

	otherNext := n.next
	oldParent, newParent := c.parent, n.parent

	link(n.prev, n.next)
	if c.next != n {
		link(c.next.prev, n)
	}
	link(n, c.next)
	c.next = otherNext

	// The old parent is notified first so observers see the node disappear
	// before it reappears. Moves within one list notify once.
	if oldParent != nil {
		oldParent.notify()
	}
	if newParent != nil && newParent != oldParent {
		newParent.notify()
	}
}

// Members is the per-object registry of list nodes. Embed it to implement
// Registrar.
type Members struct {
	nodes []Member
}

// RegisterListNode appends m to the registry.
func (m *Members) RegisterListNode(n Member) {
	m.nodes = append(m.nodes, n)
}

// UnlinkAllNodes unlinks every registered node through history.
func (m *Members) UnlinkAllNodes() {
	for _, n := range m.nodes {
		n.Unlink()
	}
}

// ReleaseAllNodes detaches every registered node directly.
func (m *Members) ReleaseAllNodes() {
	for _, n := range m.nodes {
		n.Release()
	}
}
