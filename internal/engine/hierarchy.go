package engine

// hierarchy.go is the codec for dot-separated budget codes and the
// conversion between flat row lists and nested trees.
//
// Codes are parsed into owned integer sequences, and all prefix and ancestor
// checks run on those sequences. Naive string-prefix matching gets this
// wrong: "1.1" is not an ancestor of "1.10".
//
// Nothing in this file raises for data-shape problems; callers combine these
// functions with the validator to decide what is erroneous versus merely
// absent.

import (
	"fmt"
	"strconv"
	"strings"
)

// Code is a parsed budget code: the dot-separated segments as integers.
// "1.2.3" parses to Code{1, 2, 3}.
type Code []int

// ParseCode parses a dot-separated code of positive integers. It rejects
// empty segments, non-numeric segments, zeroes, and negatives.
func ParseCode(id string) (Code, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("empty code")
	}

	parts := strings.Split(id, ".")
	code := make(Code, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("segment %q is not an integer", part)
		}
		if n < 1 {
			return nil, fmt.Errorf("segment %d is not positive", n)
		}
		code[i] = n
	}
	return code, nil
}

// String renders the code back to its dot-separated form.
func (c Code) String() string {
	parts := make([]string, len(c))
	for i, n := range c {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// Depth returns the number of segments.
func (c Code) Depth() int {
	return len(c)
}

// Parent returns the code with the last segment removed, nil for depth-1
// codes (roots).
func (c Code) Parent() Code {
	if len(c) <= 1 {
		return nil
	}
	return c[:len(c)-1]
}

// Last returns the trailing segment, the sibling sequence number.
func (c Code) Last() int {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1]
}

// Equal reports whether two codes have identical segments.
func (c Code) Equal(other Code) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// IsDescendantOf reports whether c sits anywhere below ancestor: ancestor's
// segments are a strict prefix of c's.
func (c Code) IsDescendantOf(ancestor Code) bool {
	if len(ancestor) == 0 || len(c) <= len(ancestor) {
		return false
	}
	for i := range ancestor {
		if c[i] != ancestor[i] {
			return false
		}
	}
	return true
}

// IsDirectChildOf reports whether c is exactly one level below parent.
func (c Code) IsDirectChildOf(parent Code) bool {
	return len(c) == len(parent)+1 && c.IsDescendantOf(parent)
}

// Depth returns the segment count of a string code, 0 if it is malformed.
func Depth(id string) int {
	code, err := ParseCode(id)
	if err != nil {
		return 0
	}
	return code.Depth()
}

// ParentID returns the code with the last segment removed, empty for
// depth-1 or malformed codes.
func ParentID(id string) string {
	code, err := ParseCode(id)
	if err != nil || len(code) <= 1 {
		return ""
	}
	return code.Parent().String()
}

// IsDirectChild reports whether candidate is exactly one level below parent.
// Malformed codes are never related.
func IsDirectChild(parentID, candidateID string) bool {
	parent, err := ParseCode(parentID)
	if err != nil {
		return false
	}
	candidate, err := ParseCode(candidateID)
	if err != nil {
		return false
	}
	return candidate.IsDirectChildOf(parent)
}

// IsDescendant reports whether candidate sits anywhere below ancestor.
// Malformed codes are never related.
func IsDescendant(ancestorID, candidateID string) bool {
	ancestor, err := ParseCode(ancestorID)
	if err != nil {
		return false
	}
	candidate, err := ParseCode(candidateID)
	if err != nil {
		return false
	}
	return candidate.IsDescendantOf(ancestor)
}

// Ancestor names one code that must exist above an item.
type Ancestor struct {
	ID    string
	Level Level
}

// RequiredAncestors returns, for a depth-4 item code, the ordered list of
// ancestors that must exist above it: chapter, then subchapter, then
// section. The validator uses this to emit one targeted "missing ancestor"
// error per absence instead of a single generic hierarchy error. Codes that
// are malformed or not at item depth yield nil.
func RequiredAncestors(itemID string) []Ancestor {
	code, err := ParseCode(itemID)
	if err != nil || code.Depth() != int(LevelItem) {
		return nil
	}

	ancestors := make([]Ancestor, 0, 3)
	for depth := 1; depth < code.Depth(); depth++ {
		level, _ := LevelForDepth(depth)
		ancestors = append(ancestors, Ancestor{
			ID:    code[:depth].String(),
			Level: level,
		})
	}
	return ancestors
}

// BuildTree converts a flat row list into nested nodes. Every row becomes a
// node; each node attaches to the node matching its parent code, or becomes
// a root when no such row exists (depth-1 rows and orphans alike). Children
// keep input order; nothing is sorted. Rows without a parsed code become
// roots.
func BuildTree(rows []LineRow) []*Node {
	nodes := make([]*Node, len(rows))
	byID := make(map[string]*Node, len(rows))
	for i, row := range rows {
		nodes[i] = &Node{LineRow: row}
		if row.Code != nil {
			// First occurrence wins for duplicate codes.
			if _, seen := byID[row.ID]; !seen {
				byID[row.ID] = nodes[i]
			}
		}
	}

	var roots []*Node
	for _, node := range nodes {
		var parent *Node
		if node.Code != nil {
			if p := node.Code.Parent(); p != nil {
				parent = byID[p.String()]
			}
		}
		if parent == nil || parent == node {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}

// Flatten walks the tree in pre-order (parent before descendants) back to a
// flat row list. For trees built from a structurally valid row set,
// Flatten(BuildTree(rows)) reproduces rows exactly.
func Flatten(nodes []*Node) []LineRow {
	var rows []LineRow
	var walk func(n *Node)
	walk = func(n *Node) {
		rows = append(rows, n.LineRow)
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, node := range nodes {
		walk(node)
	}
	return rows
}
