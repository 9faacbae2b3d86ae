package geminischema

// Node is a normalized schema node. It is either a *TypedNode or a *UnionNode;
// no node carries both a type and alternatives.
type Node interface {
	// IsNullable reports whether the node also accepts an explicit null.
	IsNullable() bool
	// Meta returns the node's annotations.
	Meta() *Annotations

	node()
}

// TypedNode is a node with a single type tag.
type TypedNode struct {
	Type     Kind
	Nullable bool

	// Properties is only populated when Type is KindObject.
	Properties map[string]Node
	// Items is only populated when Type is KindArray.
	Items Node

	Annotations
}

// UnionNode accepts a value matching at least one of its alternatives.
type UnionNode struct {
	AnyOf    []Node
	Nullable bool

	Annotations
}

func (n *TypedNode) IsNullable() bool { return n.Nullable }
func (n *TypedNode) Meta() *Annotations { return &n.Annotations }
func (*TypedNode) node() {}
func (n *UnionNode) IsNullable() bool { return n.Nullable }
func (n *UnionNode) Meta() *Annotations { return &n.Annotations }
func (*UnionNode) node() {}

// markNullable sets the nullable flag on either variant.
func markNullable(n Node) {
	switch v := n.(type) {
	case *TypedNode:
		v.Nullable = true
	case *UnionNode:
		v.Nullable = true
	}
}
