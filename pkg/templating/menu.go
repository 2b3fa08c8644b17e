package templating

import (
	"github.com/CTAG07/podtags/pkg/pod"
	"github.com/disiqueira/gotree/v3"
)

// Menu is a navigation tree of documents built from their parent links.
type Menu struct {
	Items []*MenuNode
}

// MenuNode is a document and the documents whose parent it is, in input order.
type MenuNode struct {
	Doc      *pod.Document
	Children []*MenuNode
}

// NewMenu builds a menu from docs.
func NewMenu(docs []*pod.Document) *Menu {
	m := &Menu{}
	m.Build(docs)
	return m
}

// Build adds docs to the menu. Documents without a parent become top-level
// items; every other document is placed under the node for its parent. Parent
// links are compared by pointer, and a document whose parent is not in docs
// does not appear. Parent links must not form a cycle.
func (m *Menu) Build(docs []*pod.Document) {
	m.Items = append(m.Items, buildLevel(nil, docs)...)
}

func buildLevel(parent *pod.Document, docs []*pod.Document) []*MenuNode {
	var nodes []*MenuNode
	for _, doc := range docs {
		if doc.Parent != parent {
			continue
		}
		nodes = append(nodes, &MenuNode{
			Doc:      doc,
			Children: buildLevel(doc, docs),
		})
	}
	return nodes
}

// Len returns the number of nodes in the menu.
func (m *Menu) Len() int {
	return countNodes(m.Items)
}

func countNodes(nodes []*MenuNode) int {
	n := len(nodes)
	for _, node := range nodes {
		n += countNodes(node.Children)
	}
	return n
}

// String renders the menu as an indented text tree.
func (m *Menu) String() string {
	root := gotree.New("menu")
	addNodes(root, m.Items)
	return root.Print()
}

func addNodes(tree gotree.Tree, nodes []*MenuNode) {
	for _, node := range nodes {
		addNodes(tree.Add(node.Doc.String()), node.Children)
	}
}
