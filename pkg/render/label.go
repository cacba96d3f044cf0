package render

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formsync/internal/dom"
)

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
)

// DefaultLabelPolicy allows the inline formatting authors reach for in labels
// (emphasis, code, line breaks, abbreviations) and strips everything else.
func DefaultLabelPolicy() *bluemonday.Policy {
	labelPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "u", "small", "code", "br", "sup", "sub", "abbr", "span")
		policy.AllowAttrs("title").OnElements("abbr")
		policy.AllowAttrs("class").OnElements("span")
		labelPolicy = policy
	})
	return labelPolicy
}

// labelNodes sanitizes authored label markup and parses the result into nodes
// that can be appended under a <label>.
func labelNodes(policy *bluemonday.Policy, raw string) []*html.Node {
	if raw == "" {
		return nil
	}
	if !strings.ContainsAny(raw, "<&") {
		return []*html.Node{dom.Text(raw)}
	}

	cleaned := policy.Sanitize(raw)
	context := &html.Node{Type: html.ElementNode, Data: "label", DataAtom: atom.Label}
	nodes, err := html.ParseFragment(strings.NewReader(cleaned), context)
	if err != nil {
		return []*html.Node{dom.Text(html.UnescapeString(cleaned))}
	}
	return nodes
}
