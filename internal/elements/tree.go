package elements

import "strings"

// Node is one entry of the demo page's checkbox tree.
type Node struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Children []Node `json:"children,omitempty"`
}

// IsLeaf reports whether the node is a file.
func (n Node) IsLeaf() bool { return len(n.Children) == 0 }

// Walk visits n and its descendants in pre-order, which is the order the
// page lists checked values in.
func (n Node) Walk(fn func(Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the node with the given value.
func (n Node) Find(value string) (Node, bool) {
	var found Node
	var ok bool
	n.Walk(func(m Node) {
		if !ok && m.Value == value {
			found, ok = m, true
		}
	})
	return found, ok
}

// Leaves returns the values of the node's leaves in pre-order.
func (n Node) Leaves() []string {
	var out []string
	n.Walk(func(m Node) {
		if m.IsLeaf() {
			out = append(out, m.Value)
		}
	})
	return out
}

// Labels returns every label in pre-order.
func (n Node) Labels() []string {
	var out []string
	n.Walk(func(m Node) { out = append(out, m.Label) })
	return out
}

// CheckboxTree returns the tree as rendered at /checkbox, rooted at home.
func CheckboxTree() Node {
	leaf := func(label, value string) Node { return Node{Label: label, Value: value} }
	return Node{Label: "Home", Value: "home", Children: []Node{
		{Label: "Desktop", Value: "desktop", Children: []Node{
			leaf("Notes", "notes"),
			leaf("Commands", "commands"),
		}},
		{Label: "Documents", Value: "documents", Children: []Node{
			{Label: "WorkSpace", Value: "workspace", Children: []Node{
				leaf("React", "react"),
				leaf("Angular", "angular"),
				leaf("Veu", "veu"),
			}},
			{Label: "Office", Value: "office", Children: []Node{
				leaf("Public", "public"),
				leaf("Private", "private"),
				leaf("Classified", "classified"),
				leaf("General", "general"),
			}},
		}},
		{Label: "Downloads", Value: "downloads", Children: []Node{
			leaf("Word File.doc", "wordFile"),
			leaf("Excel File.doc", "excelFile"),
		}},
	}}
}

// SelectionPrefix opens the result panel's text.
const SelectionPrefix = "You have selected :"

// SelectionText returns the result panel text after checking the given
// nodes on a fresh tree. Checking a node checks all of its leaves; a folder
// shows as checked once all of its leaves are. Values are concatenated in
// pre-order with no separator. It returns "" when nothing is checked, since
// the panel is then not rendered.
func SelectionText(values ...string) string {
	tree := CheckboxTree()

	checked := map[string]bool{}
	for _, v := range values {
		if n, ok := tree.Find(v); ok {
			for _, leaf := range n.Leaves() {
				checked[leaf] = true
			}
		}
	}

	var b strings.Builder
	tree.Walk(func(n Node) {
		for _, leaf := range n.Leaves() {
			if !checked[leaf] {
				return
			}
		}
		b.WriteString(n.Value)
	})
	if b.Len() == 0 {
		return ""
	}
	return SelectionPrefix + b.String()
}
