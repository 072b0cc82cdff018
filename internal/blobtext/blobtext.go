// Package blobtext recovers message text from the binary attributedBody
// payload stored in iMessage archives.
//
// Newer archives leave the plain-text column NULL and serialize the message
// body as an archived object graph. Recovery is two-stage: a structured
// keyed-archive decode first, then a permissive raw-byte scan for payloads
// (typedstream and friends) the structured path cannot read. Both stages are
// total: any decode failure falls through, and the worst case is an empty
// string, never an error.
package blobtext

import (
	"sort"
	"strings"

	"howett.net/plist"

	"github.com/chatvault/chatvault/internal/textutil"
)

// Recover extracts human text from a serialized message body payload.
// Returns "" when neither recovery stage yields anything.
func Recover(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}
	if text, ok := FromKeyedArchive(payload); ok {
		return text
	}
	if text, ok := FromRawScan(payload); ok {
		return text
	}
	return ""
}

// LooksGarbled reports whether recovered text is likely decode garbage.
// Callers presenting recovered text should surface this instead of trusting
// a silent recovery.
func LooksGarbled(text string) bool {
	return textutil.LooksGarbled(text)
}

// Kind discriminates the Node union.
type Kind int

const (
	// KindString is a scalar string leaf.
	KindString Kind = iota
	// KindList is an ordered collection of nodes.
	KindList
	// KindMap is a string-keyed collection of nodes.
	KindMap
)

// Node is the object-graph union produced by the structured decode:
// a string leaf, a list of nodes, or a string-keyed map of nodes.
// Non-string scalars (numbers, dates, UIDs) are dropped at conversion time.
type Node struct {
	Kind Kind
	Str  string
	List []Node
	Map  map[string]Node
}

// archiveMarker prefixes the bookkeeping strings a keyed archive carries
// alongside real content ("$null", "$class", ...).
const archiveMarker = '$'

// FromKeyedArchive attempts a structured decode of the payload as a keyed
// archive (a binary property list holding an object graph). All nested
// string leaves are collected in traversal order, bookkeeping leaves are
// discarded, and the survivors are de-duplicated and joined with spaces.
// Returns ok=false if the payload is not a plist or nothing survives.
func FromKeyedArchive(payload []byte) (text string, ok bool) {
	root, ok := decodePlist(payload)
	if !ok {
		return "", false
	}

	var leaves []string
	seen := make(map[string]bool)
	visit(root, func(s string) {
		if s == "" || s[0] == archiveMarker {
			return
		}
		if seen[s] {
			return
		}
		seen[s] = true
		leaves = append(leaves, s)
	})

	if len(leaves) == 0 {
		return "", false
	}
	return strings.Join(leaves, " "), true
}

// decodePlist parses payload into a Node graph. The plist decoder can panic
// on some malformed inputs, so the whole parse is fenced.
func decodePlist(payload []byte) (node Node, ok bool) {
	defer func() {
		if recover() != nil {
			node, ok = Node{}, false
		}
	}()

	var raw interface{}
	if _, err := plist.Unmarshal(payload, &raw); err != nil {
		return Node{}, false
	}
	return fromValue(raw)
}

// fromValue converts a decoded plist value into a Node.
// Scalars that are not strings have no text to contribute and are dropped.
func fromValue(v interface{}) (Node, bool) {
	switch val := v.(type) {
	case string:
		return Node{Kind: KindString, Str: val}, true
	case []interface{}:
		n := Node{Kind: KindList}
		for _, item := range val {
			if child, ok := fromValue(item); ok {
				n.List = append(n.List, child)
			}
		}
		return n, true
	case map[string]interface{}:
		n := Node{Kind: KindMap, Map: make(map[string]Node, len(val))}
		for k, item := range val {
			if child, ok := fromValue(item); ok {
				n.Map[k] = child
			}
		}
		return n, true
	default:
		return Node{}, false
	}
}

// visit walks the node graph depth-first, calling fn for every string leaf.
// Map entries are visited in sorted key order so traversal is deterministic.
func visit(n Node, fn func(string)) {
	switch n.Kind {
	case KindString:
		fn(n.Str)
	case KindList:
		for _, child := range n.List {
			visit(child, fn)
		}
	case KindMap:
		keys := make([]string, 0, len(n.Map))
		for k := range n.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			visit(n.Map[k], fn)
		}
	}
}
