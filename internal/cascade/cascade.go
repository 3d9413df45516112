// Package cascade merges the per-note hierarchical summaries of one release
// into a single deduplicated forest. Every node remembers which notes
// contributed to it, so the page can cross-highlight a note everywhere it
// appears.
package cascade

import "github.com/Iron-Ham/qanotes/internal/releasedb"

// Node is one merged line of a release summary.
type Node struct {
	Head     string
	Children []*Node
	// Tags lists the indices of the notes that contributed this line, in
	// ascending order.
	Tags []int
}

// Result is the output of one cascade.
type Result struct {
	Forest []*Node
	// NoteTags[i] is the tag assigned to notes[i]. Callers that need a
	// note's tag read it from here instead of recounting.
	NoteTags []int
}

// Builder merges one field of a release's notes into a forest.
type Builder interface {
	Cascade(notes []releasedb.Note, field, locale string) Result
}

// Merger is the default Builder. Lines with identical head text at the same
// depth merge; the first occurrence keeps its position.
type Merger struct{}

// Cascade implements Builder. Tags are 0-based note indices in traversal
// order; notes without the field still consume a tag.
func (Merger) Cascade(notes []releasedb.Note, field, locale string) Result {
	res := Result{NoteTags: make([]int, 0, len(notes))}
	for tag, note := range notes {
		res.NoteTags = append(res.NoteTags, tag)

		v, ok := note.Lookup(field, locale)
		if !ok || v.IsEmpty() {
			continue
		}
		switch v.Kind {
		case releasedb.KindHierarchy:
			res.Forest = merge(res.Forest, v.Entries, tag)
		case releasedb.KindFlat:
			res.Forest = merge(res.Forest, []releasedb.Entry{releasedb.Leaf(v.Text)}, tag)
		}
	}
	return res
}

func merge(level []*Node, entries []releasedb.Entry, tag int) []*Node {
	for _, e := range entries {
		node := find(level, e.Head)
		if node == nil {
			node = &Node{Head: e.Head}
			level = append(level, node)
		}
		node.addTag(tag)
		node.Children = merge(node.Children, e.Children, tag)
	}
	return level
}

func find(level []*Node, head string) *Node {
	for _, n := range level {
		if n.Head == head {
			return n
		}
	}
	return nil
}

// addTag relies on tags arriving in non-decreasing order.
func (n *Node) addTag(tag int) {
	if len(n.Tags) > 0 && n.Tags[len(n.Tags)-1] == tag {
		return
	}
	n.Tags = append(n.Tags, tag)
}
