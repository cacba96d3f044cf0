// Package dom holds the small set of node helpers the renderers and the reveal
// controller share. Nodes are golang.org/x/net/html nodes so any subtree can be
// serialized with html.Render.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element builds an element node. attrs are read as key/value pairs; a trailing
// key without a value is ignored.
func Element(tag string, attrs ...string) *html.Node {
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		node.Attr = append(node.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return node
}

// Text builds a text node.
func Text(value string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: value}
}

// Append attaches children to parent in order. Children that are still
// attached elsewhere are detached first.
func Append(parent *html.Node, children ...*html.Node) {
	if parent == nil {
		return
	}
	for _, child := range children {
		if child == nil {
			continue
		}
		Detach(child)
		parent.AppendChild(child)
	}
}

// Detach removes node from its parent, if any.
func Detach(node *html.Node) {
	if node == nil || node.Parent == nil {
		return
	}
	node.Parent.RemoveChild(node)
}

// Clear removes every child of node.
func Clear(node *html.Node) {
	if node == nil {
		return
	}
	for child := node.FirstChild; child != nil; {
		next := child.NextSibling
		node.RemoveChild(child)
		child = next
	}
}

// Attr returns the value of key on node.
func Attr(node *html.Node, key string) (string, bool) {
	if node == nil {
		return "", false
	}
	for _, attr := range node.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether key is present on node.
func HasAttr(node *html.Node, key string) bool {
	_, ok := Attr(node, key)
	return ok
}

// SetAttr replaces or adds key on node.
func SetAttr(node *html.Node, key, value string) {
	if node == nil {
		return
	}
	for i := range node.Attr {
		if node.Attr[i].Namespace == "" && node.Attr[i].Key == key {
			node.Attr[i].Val = value
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr drops key from node.
func RemoveAttr(node *html.Node, key string) {
	if node == nil {
		return
	}
	kept := node.Attr[:0]
	for _, attr := range node.Attr {
		if attr.Namespace == "" && attr.Key == key {
			continue
		}
		kept = append(kept, attr)
	}
	node.Attr = kept
}

// ID returns the id attribute of node.
func ID(node *html.Node) string {
	value, _ := Attr(node, "id")
	return value
}

// Walk visits root and its descendants depth-first in document order. Returning
// false from fn skips the children of the visited node.
func Walk(root *html.Node, fn func(*html.Node) bool) {
	if root == nil {
		return
	}
	if !fn(root) {
		return
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		Walk(child, fn)
	}
}

// FindAll returns every element under root (root included) matching match.
func FindAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	Walk(root, func(node *html.Node) bool {
		if node.Type == html.ElementNode && match(node) {
			out = append(out, node)
		}
		return true
	})
	return out
}

// FindByID returns the first element under root carrying id.
func FindByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	Walk(root, func(node *html.Node) bool {
		if found != nil {
			return false
		}
		if node.Type == html.ElementNode && ID(node) == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// CountByID reports how many elements under root carry id.
func CountByID(root *html.Node, id string) int {
	return len(FindAll(root, func(node *html.Node) bool {
		return ID(node) == id
	}))
}

// Contains reports whether node is root or one of its descendants.
func Contains(root, node *html.Node) bool {
	for current := node; current != nil; current = current.Parent {
		if current == root {
			return true
		}
	}
	return false
}

// Children returns the element children of node.
func Children(node *html.Node) []*html.Node {
	if node == nil {
		return nil
	}
	var out []*html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			out = append(out, child)
		}
	}
	return out
}

// TextContent concatenates every text node under node.
func TextContent(node *html.Node) string {
	var builder strings.Builder
	Walk(node, func(current *html.Node) bool {
		if current.Type == html.TextNode {
			builder.WriteString(current.Data)
		}
		return true
	})
	return builder.String()
}

// Render serializes node and its subtree.
func Render(node *html.Node) (string, error) {
	if node == nil {
		return "", nil
	}
	var builder strings.Builder
	if err := html.Render(&builder, node); err != nil {
		return "", err
	}
	return builder.String(), nil
}

// RenderChildren serializes the children of node without node itself.
func RenderChildren(node *html.Node) (string, error) {
	if node == nil {
		return "", nil
	}
	var builder strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&builder, child); err != nil {
			return "", err
		}
	}
	return builder.String(), nil
}
