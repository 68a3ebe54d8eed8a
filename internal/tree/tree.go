// Package tree turns rsync's itemized change list into an ASCII directory tree.
package tree

import (
	"maps"
	"slices"
	"strings"

	"remote-sync/internal/rsync"
)

// ChangeRecord is one line of itemized dry-run output (%i|%n|%l).
type ChangeRecord struct {
	Code string
	Path string
	Size int64
}

// Node is a directory entry. Children are keyed by name, so inserting the
// same path twice leaves the tree unchanged.
type Node struct {
	Name     string
	children map[string]*Node
}

// NewRoot returns the empty, unnamed node that stands for the transfer root.
func NewRoot() *Node {
	return &Node{}
}

// Insert adds p, creating intermediate nodes. Empty segments are ignored so
// "dir/" and "dir" land on the same node.
func (n *Node) Insert(p string) {
	node := n
	for _, part := range strings.Split(p, "/") {
		if part == "" {
			continue
		}
		if node.children == nil {
			node.children = make(map[string]*Node)
		}
		child, ok := node.children[part]
		if !ok {
			child = &Node{Name: part}
			node.children[part] = child
		}
		node = child
	}
}

// Children returns the direct children in lexical order.
func (n *Node) Children() []*Node {
	names := slices.Sorted(maps.Keys(n.children))
	out := make([]*Node, 0, len(names))
	for _, name := range names {
		out = append(out, n.children[name])
	}
	return out
}

// ParseItemized parses itemized output. Lines with fewer than two
// '|'-separated fields are skipped, as are hidden entries.
func ParseItemized(output string) []ChangeRecord {
	var records []ChangeRecord
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}
		item := parts[1]
		for strings.HasPrefix(item, "./") {
			item = item[2:]
		}
		if item == "" || strings.HasPrefix(item, ".") {
			continue
		}
		rec := ChangeRecord{Code: parts[0], Path: item}
		if len(parts) > 2 {
			if size, ok := rsync.ParseBytes(parts[2]); ok {
				rec.Size = int64(size)
			}
		}
		records = append(records, rec)
	}
	return records
}

// Build inserts every record into a fresh root.
func Build(records []ChangeRecord) *Node {
	root := NewRoot()
	for _, rec := range records {
		root.Insert(rec.Path)
	}
	return root
}

// Render draws the tree below root, one line per node. The last sibling at
// each level uses "+--" and the others "|--".
func Render(root *Node) string {
	var lines []string
	children := root.Children()
	for i, child := range children {
		renderNode(&lines, child, "", i == len(children)-1)
	}
	return strings.Join(lines, "\n")
}

func renderNode(lines *[]string, n *Node, prefix string, last bool) {
	branch := "|--"
	next := prefix + "|  "
	if last {
		branch = "+--"
		next = prefix + "   "
	}
	*lines = append(*lines, prefix+branch+" "+n.Name)

	children := n.Children()
	for i, child := range children {
		renderNode(lines, child, next, i == len(children)-1)
	}
}

// RenderItemized is ParseItemized, Build and Render in one step.
func RenderItemized(output string) string {
	return Render(Build(ParseItemized(output)))
}
