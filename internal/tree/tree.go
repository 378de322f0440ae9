package tree

import (
	"sort"

	"github.com/google/uuid"

	"github.com/Vampire-js/DAAVAT/internal/models"
)

// Node is a document plus its resolved children.
type Node struct {
	models.Document
	Children []*Node `json:"children"`
}

// Build reconstructs the hierarchy from the flat parent-pointer list.
// Documents with a nil parent are roots. Deletion does not cascade, so a
// document can point at a parent that no longer exists; such orphans are
// surfaced at the root rather than dropped.
func Build(docs []models.Document) []*Node {
	nodes := make(map[uuid.UUID]*Node, len(docs))
	for i := range docs {
		nodes[docs[i].ID] = &Node{Document: docs[i], Children: []*Node{}}
	}

	roots := []*Node{}
	for _, n := range nodes {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[*n.ParentID]
		if !ok {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	sortNodes(roots)
	for _, n := range nodes {
		sortNodes(n.Children)
	}
	return roots
}

// sortNodes orders siblings by sort key, falling back to name so ties are
// stable across requests.
func sortNodes(ns []*Node) {
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].Order != ns[j].Order {
			return ns[i].Order < ns[j].Order
		}
		return ns[i].Name < ns[j].Name
	})
}
