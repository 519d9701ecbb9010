// Package browser is the remote-session boundary: a handful of fallible, blocking commands
// against one page of an automated browser.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrConnect wraps failures to reach or start the browser.
var ErrConnect = errors.New("browser: unable to connect")

type LocatorKind int

const (
	ByCSS LocatorKind = iota
	ByID
)

// Locator addresses elements of the current page.
type Locator struct {
	Kind  LocatorKind
	Value string
}

func CSS(selector string) Locator { return Locator{Kind: ByCSS, Value: selector} }

func ID(id string) Locator { return Locator{Kind: ByID, Value: id} }

// Selector renders the locator as a CSS selector. IDs use an attribute selector so that
// identifiers which are not valid CSS idents still match.
func (l Locator) Selector() string {
	if l.Kind == ByID {
		b, _ := json.Marshal(l.Value)
		return "[id=" + string(b) + "]"
	}
	return l.Value
}

func (l Locator) String() string {
	if l.Kind == ByID {
		return "id:" + l.Value
	}
	return "css:" + l.Value
}

// Element is an opaque handle to a node found by FindAll. Handles are only valid until
// the page changes.
type Element struct {
	ref int64
}

func NewElement(ref int64) Element { return Element{ref: ref} }

func (e Element) Ref() int64 { return e.ref }

// Session is a remote browser page. Implementations are not safe for concurrent use;
// the event loop is the only caller.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// FindAll returns every element matching loc. No match is not an error.
	FindAll(ctx context.Context, loc Locator) ([]Element, error)
	// Property reads a DOM property. ok is false when the property is undefined or null.
	Property(ctx context.Context, el Element, name string) (value string, ok bool, err error)
	// ExecuteScript calls the JavaScript function expression script with args and waits
	// for its result, awaiting it if it is a promise. res may be nil.
	ExecuteScript(ctx context.Context, script string, args []any, res any) error
	Close() error
}

// CallExpression builds "(script)(arg1, arg2, ...)" with JSON-encoded arguments.
func CallExpression(script string, args []any) (string, error) {
	encoded := make([]string, 0, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("encode script argument %d: %w", i, err)
		}
		encoded = append(encoded, string(b))
	}
	return "(" + strings.TrimSpace(script) + ")(" + strings.Join(encoded, ", ") + ")", nil
}
