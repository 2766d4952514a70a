package kdtree

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/viant/domindex/index"
)

const (
	binaryMagic   = "DOMK"
	binaryVersion = 1
)

// MarshalBinary stores: magic, version(uint32), root, n(uint32), then for
// each node: key, kind(uint8), parent, and either point(float32[2]) for a
// leaf or divider(float32), less, more for an internal node. Strings are
// written as len(uint32) followed by bytes. Nodes are ordered by key.
func (t *Tree) MarshalBinary() ([]byte, error) {
	keys := t.sortedKeys()
	out := make([]byte, 0, 16+len(keys)*64)
	putU32 := func(v uint32) { out = binary.LittleEndian.AppendUint32(out, v) }
	putF32 := func(v float32) { putU32(math.Float32bits(v)) }
	putStr := func(s string) { putU32(uint32(len(s))); out = append(out, s...) }

	out = append(out, binaryMagic...)
	putU32(binaryVersion)
	putStr(t.root)
	putU32(uint32(len(keys)))
	for _, key := range keys {
		n := t.nodes[key]
		putStr(key)
		out = append(out, byte(n.kind))
		putStr(n.parent)
		switch n.kind {
		case leafKind:
			putF32(n.point[0])
			putF32(n.point[1])
		case internalKind:
			putF32(n.divider)
			putStr(n.less)
			putStr(n.more)
		}
	}
	return out, nil
}

var errTruncated = errors.New("truncated")

type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = errTruncated
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *reader) f32() float32 { return math.Float32frombits(r.u32()) }

func (r *reader) str() string { return string(r.take(int(r.u32()))) }

// UnmarshalBinary replaces the tree with the one encoded in data.
func (t *Tree) UnmarshalBinary(data []byte) error {
	r := &reader{data: data}
	if string(r.take(len(binaryMagic))) != binaryMagic {
		return fmt.Errorf("kdtree: invalid data: %w", index.ErrMalformedInput)
	}
	if v := r.u32(); v != binaryVersion {
		return fmt.Errorf("kdtree: unsupported version %d: %w", v, index.ErrMalformedInput)
	}
	root := r.str()
	count := int(r.u32())
	if r.err == nil && count > len(data) {
		return fmt.Errorf("kdtree: node count %d exceeds data: %w", count, index.ErrMalformedInput)
	}
	nodes := make(map[string]*node, count)
	for i := 0; i < count && r.err == nil; i++ {
		key := r.str()
		n := &node{kind: kind(r.u8()), parent: r.str()}
		switch n.kind {
		case leafKind:
			n.point = index.Point{r.f32(), r.f32()}
		case internalKind:
			n.divider = r.f32()
			n.less = r.str()
			n.more = r.str()
		default:
			return fmt.Errorf("kdtree: node %q has unknown kind %d: %w", key, n.kind, index.ErrMalformedInput)
		}
		nodes[key] = n
	}
	if r.err != nil {
		return fmt.Errorf("kdtree: %v: %w", r.err, index.ErrMalformedInput)
	}
	return t.load(root, nodes)
}

type jsonTree struct {
	Root  string               `json:"root,omitempty"`
	Nodes map[string]*jsonNode `json:"nodes"`
}

type jsonNode struct {
	Kind    string       `json:"kind"`
	Parent  string       `json:"parent,omitempty"`
	Point   *index.Point `json:"point,omitempty"`
	Divider *float32     `json:"div,omitempty"`
	Less    string       `json:"less,omitempty"`
	More    string       `json:"more,omitempty"`
}

// MarshalJSON dumps the node mapping and root as a structured document.
func (t *Tree) MarshalJSON() ([]byte, error) {
	doc := jsonTree{Root: t.root, Nodes: make(map[string]*jsonNode, len(t.nodes))}
	for key, n := range t.nodes {
		jn := &jsonNode{Kind: n.kind.String(), Parent: n.parent}
		if n.isLeaf() {
			point := n.point
			jn.Point = &point
		} else {
			divider := n.divider
			jn.Divider = &divider
			jn.Less, jn.More = n.less, n.more
		}
		doc.Nodes[key] = jn
	}
	return json.Marshal(doc)
}

// UnmarshalJSON replaces the tree with the one described by data.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var doc jsonTree
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("kdtree: %v: %w", err, index.ErrMalformedInput)
	}
	nodes := make(map[string]*node, len(doc.Nodes))
	for key, jn := range doc.Nodes {
		if jn == nil {
			return fmt.Errorf("kdtree: node %q is null: %w", key, index.ErrMalformedInput)
		}
		n := &node{parent: jn.Parent}
		switch jn.Kind {
		case leafKind.String():
			if jn.Point == nil {
				return fmt.Errorf("kdtree: leaf %q has no point: %w", key, index.ErrMalformedInput)
			}
			n.kind, n.point = leafKind, *jn.Point
		case internalKind.String():
			if jn.Divider == nil {
				return fmt.Errorf("kdtree: node %q has no divider: %w", key, index.ErrMalformedInput)
			}
			n.kind, n.divider, n.less, n.more = internalKind, *jn.Divider, jn.Less, jn.More
		default:
			return fmt.Errorf("kdtree: node %q has unknown kind %q: %w", key, jn.Kind, index.ErrMalformedInput)
		}
		nodes[key] = n
	}
	return t.load(doc.Root, nodes)
}

// load installs decoded state after checking it forms a valid tree.
func (t *Tree) load(root string, nodes map[string]*node) error {
	leaves := 0
	for _, n := range nodes {
		if n.isLeaf() {
			leaves++
		}
	}
	candidate := &Tree{nodes: nodes, root: root, leaves: leaves}
	if err := candidate.Validate(); err != nil {
		return fmt.Errorf("%v: %w", err, index.ErrMalformedInput)
	}
	*t = *candidate
	return nil
}

func (t *Tree) sortedKeys() []string {
	keys := make([]string, 0, len(t.nodes))
	for key := range t.nodes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
