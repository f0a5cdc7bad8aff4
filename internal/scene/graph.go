// Package scene implements the runtime node hierarchy with cached world
// transforms that sits above the derived surface geometry (spec §4.6).
package scene

import (
	"fmt"

	"luxera/internal/geom/numeric"
)

// Transform is a stable SE(3) transform, stored as a 4x4 matrix plus,
// when known, its translation; rotation and scale are not stored
// separately.
type Transform struct {
	Matrix      numeric.Mat4
	Translation *numeric.Vec3
}

// Identity returns the identity transform.
func Identity() Transform { return Transform{Matrix: numeric.Identity4()} }

// FromTranslation builds a pure-translation transform.
func FromTranslation(t numeric.Vec3) Transform {
	m := numeric.Identity4()
	m[0][3], m[1][3], m[2][3] = t.X, t.Y, t.Z
	return Transform{Matrix: m, Translation: &t}
}

// Compose returns self * other (self applied after other).
func (t Transform) Compose(other Transform) Transform {
	return Transform{Matrix: t.Matrix.Mul(other.Matrix)}
}

// Node is one entry in the scene hierarchy.
type Node struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Type           string            `json:"type"`
	Parent         string            `json:"parent,omitempty"`
	Children       []string          `json:"children,omitempty"`
	LocalTransform Transform         `json:"-"`
	MeshRef        string            `json:"mesh_ref,omitempty"`
	MaterialRef    string            `json:"material_ref,omitempty"`
	InstanceRef    string            `json:"instance_ref,omitempty"`
	Tags           map[string]string `json:"tags,omitempty"`

	worldCache *numeric.Mat4
}

// Graph is the node hierarchy plus a cached-transform lookup (spec §4.6:
// "world transforms are cached and invalidated on any ancestor edit").
type Graph struct {
	nodes map[string]*Node
	order []string
}

// New returns an empty scene graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// GetNode returns a node by id.
func (g *Graph) GetNode(id string) (*Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("scene: unknown node %q", id)
	}
	return n, nil
}

// AddNode inserts a node, wiring it under its declared parent if any.
func (g *Graph) AddNode(n *Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("scene: node %q already exists", n.ID)
	}
	if n.LocalTransform.Matrix == (numeric.Mat4{}) {
		n.LocalTransform = Identity()
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	if n.Parent != "" {
		parent, err := g.GetNode(n.Parent)
		if err != nil {
			return err
		}
		parent.Children = append(parent.Children, n.ID)
	}
	g.invalidate(n.ID)
	return nil
}

// SetParent reparents node id under parentID (empty string means root).
func (g *Graph) SetParent(id, parentID string) error {
	node, err := g.GetNode(id)
	if err != nil {
		return err
	}
	if node.Parent == parentID {
		return nil
	}
	if node.Parent != "" {
		old, err := g.GetNode(node.Parent)
		if err != nil {
			return err
		}
		old.Children = removeString(old.Children, id)
	}
	node.Parent = parentID
	if parentID != "" {
		parent, err := g.GetNode(parentID)
		if err != nil {
			return err
		}
		parent.Children = append(parent.Children, id)
	}
	g.invalidate(id)
	return nil
}

// SetLocalTransform updates a node's local transform and invalidates its
// subtree's cached world transforms.
func (g *Graph) SetLocalTransform(id string, t Transform) error {
	node, err := g.GetNode(id)
	if err != nil {
		return err
	}
	node.LocalTransform = t
	g.invalidate(id)
	return nil
}

func (g *Graph) invalidate(id string) {
	node, ok := g.nodes[id]
	if !ok {
		return
	}
	stack := []*Node{node}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur.worldCache = nil
		for _, cid := range cur.Children {
			if child, ok := g.nodes[cid]; ok {
				stack = append(stack, child)
			}
		}
	}
}

// WorldTransform computes (and caches) the world transform of node id by
// composing local transforms up to the root.
func (g *Graph) WorldTransform(id string) (numeric.Mat4, error) {
	node, err := g.GetNode(id)
	if err != nil {
		return numeric.Mat4{}, err
	}
	if node.worldCache != nil {
		return *node.worldCache, nil
	}
	var world numeric.Mat4
	if node.Parent == "" {
		world = node.LocalTransform.Matrix
	} else {
		parentWorld, err := g.WorldTransform(node.Parent)
		if err != nil {
			return numeric.Mat4{}, err
		}
		world = parentWorld.Mul(node.LocalTransform.Matrix)
	}
	node.worldCache = &world
	return world, nil
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
