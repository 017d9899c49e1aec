package domain

import (
	"sort"
	"strings"
)

// DefaultCategoryPath is where prompts live until the user files them.
// The name is reserved: it cannot be created, renamed, or deleted.
const DefaultCategoryPath = "Uncategorized"

// CategoryNode is one level of the category tree. Paths are
// materialized strings on prompts ("Work/Agents"); the tree is derived
// on demand, never stored.
type CategoryNode struct {
	Path string `json:"path"`
	Name string `json:"name"`
	// Count is the subtree total: prompts filed here plus all descendants.
	Count    int64           `json:"count"`
	Children []*CategoryNode `json:"children"`
}

// ParentPath returns the path one level up. Root-level paths fall back
// to DefaultCategoryPath, which is where their prompts get reassigned
// when the category is deleted.
func ParentPath(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return DefaultCategoryPath
	}
	return path[:idx]
}

// BuildCategoryTree expands materialized paths with prompt counts into
// a nested tree. Intermediate levels appear even when no prompt is
// filed at them directly; every node's Count rolls up its subtree.
// Siblings are sorted by name.
func BuildCategoryTree(counts map[string]int64) []*CategoryNode {
	roots := []*CategoryNode{}
	index := map[string]*CategoryNode{}

	// ensure returns the node for path, creating it and any missing
	// ancestors on the way down.
	var ensure func(path string) *CategoryNode
	ensure = func(path string) *CategoryNode {
		if node, ok := index[path]; ok {
			return node
		}
		node := &CategoryNode{
			Path:     path,
			Name:     path,
			Children: []*CategoryNode{},
		}
		if idx := strings.LastIndex(path, "/"); idx >= 0 {
			node.Name = path[idx+1:]
			parent := ensure(path[:idx])
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
		index[path] = node
		return node
	}

	for path, count := range counts {
		if path == "" {
			continue
		}
		ensure(path).Count = count
	}

	for _, root := range roots {
		rollUpCounts(root)
	}
	sortCategoryNodes(roots)
	return roots
}

// rollUpCounts folds descendant counts into each node.
func rollUpCounts(node *CategoryNode) int64 {
	total := node.Count
	for _, child := range node.Children {
		total += rollUpCounts(child)
	}
	node.Count = total
	return total
}

func sortCategoryNodes(nodes []*CategoryNode) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Name < nodes[j].Name
	})
	for _, n := range nodes {
		sortCategoryNodes(n.Children)
	}
}
