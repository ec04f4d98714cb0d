package session

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// htmlForm is the submittable state of one <form> element.
type htmlForm struct {
	Action string
	Method string
	Fields url.Values
}

// findForm parses an HTML document and returns the form with the given name
// attribute (or id, for pages that dropped the legacy name).
func findForm(r io.Reader, name string) (*htmlForm, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	node := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "form" &&
			(attr(n, "name") == name || attr(n, "id") == name)
	})
	if node == nil {
		return nil, fmt.Errorf("form %q not found", name)
	}

	form := &htmlForm{
		Action: attr(node, "action"),
		Method: strings.ToUpper(attr(node, "method")),
		Fields: url.Values{},
	}
	if form.Method == "" {
		form.Method = http.MethodGet
	}
	collectFields(node, form.Fields)
	return form, nil
}

// collectFields gathers the values a browser would submit without clicking
// a specific button.
func collectFields(n *html.Node, fields url.Values) {
	if n.Type == html.ElementNode {
		name := attr(n, "name")
		switch {
		case name == "" || hasAttr(n, "disabled"):
		case n.Data == "input":
			switch strings.ToLower(attr(n, "type")) {
			case "submit", "image", "button", "reset", "file":
			case "checkbox", "radio":
				if hasAttr(n, "checked") {
					value := attr(n, "value")
					if value == "" {
						value = "on"
					}
					fields.Add(name, value)
				}
			default:
				fields.Add(name, attr(n, "value"))
			}
		case n.Data == "textarea":
			fields.Add(name, textContent(n))
		case n.Data == "select":
			if v, ok := selectedOption(n); ok {
				fields.Add(name, v)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectFields(c, fields)
	}
}

func selectedOption(sel *html.Node) (string, bool) {
	var first *html.Node
	chosen := findNode(sel, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "option" {
			return false
		}
		if first == nil {
			first = n
		}
		return hasAttr(n, "selected")
	})
	if chosen == nil {
		chosen = first
	}
	if chosen == nil {
		return "", false
	}
	if hasAttr(chosen, "value") {
		return attr(chosen, "value"), true
	}
	return strings.TrimSpace(textContent(chosen)), true
}

// metaRefreshURL returns the target of a <meta http-equiv="refresh"> tag.
func metaRefreshURL(page string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", false
	}
	meta := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "meta" &&
			strings.EqualFold(attr(n, "http-equiv"), "refresh")
	})
	if meta == nil {
		return "", false
	}

	// content="0;url=/gp/dmusic/mp3/player"
	content := attr(meta, "content")
	_, after, ok := strings.Cut(content, ";")
	if !ok {
		return "", false
	}
	after = strings.TrimSpace(after)
	if len(after) < 4 || !strings.EqualFold(after[:4], "url=") {
		return "", false
	}
	target := strings.Trim(strings.TrimSpace(after[4:]), `'"`)
	return target, target != ""
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
