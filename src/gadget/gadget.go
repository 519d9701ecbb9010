// Package gadget installs SelectorGadget into the current page and reads back the
// selector the operator picked with it.
package gadget

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"interactive-scraper/src/browser"
	"interactive-scraper/src/logutil"
)

const (
	// PathFieldID is the input SelectorGadget writes the current selector into.
	PathFieldID = "_sg_path_field"
	// NoSelectionText is what SelectorGadget shows in the field before a valid pick.
	NoSelectionText = "No valid path found."

	DefaultScriptURL = "https://dv0akt2986vzh.cloudfront.net/unstable/lib/selectorgadget.js"
)

// BootstrapScript shows a loading banner and loads the SelectorGadget script. The
// returned promise settles once the script has loaded or failed to load.
//
//go:embed bootstrap.js
var BootstrapScript string

type Kind int

const (
	// Empty: the tool is on the page but nothing valid is selected.
	Empty Kind = iota + 1
	// Selected: the operator picked a selector.
	Selected
	// MissingGadget: the tool is not on the page.
	MissingGadget
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "Empty"
	case Selected:
		return "Selected"
	case MissingGadget:
		return "MissingGadget"
	default:
		return "Unknown"
	}
}

// Selection is the state of the in-page tool at the moment it was read.
// Selector is set only for Kind == Selected.
type Selection struct {
	Kind     Kind
	Selector string
}

func (s Selection) String() string {
	if s.Kind == Selected {
		return fmt.Sprintf("Selected(%q)", s.Selector)
	}
	return s.Kind.String()
}

// Gadget reads and installs SelectorGadget on one session.
type Gadget struct {
	session   browser.Session
	scriptURL string
}

func New(session browser.Session, scriptURL string) *Gadget {
	if scriptURL == "" {
		scriptURL = DefaultScriptURL
	}
	return &Gadget{session: session, scriptURL: scriptURL}
}

// Resolve reads the tool's path field from the live page. The result is never cached:
// a navigation can remove the tool at any time.
func (g *Gadget) Resolve(ctx context.Context) (Selection, error) {
	fields, err := g.session.FindAll(ctx, browser.ID(PathFieldID))
	if err != nil {
		return Selection{}, fmt.Errorf("look up selector gadget: %w", err)
	}
	if len(fields) == 0 {
		return Selection{Kind: MissingGadget}, nil
	}

	value, ok, err := g.session.Property(ctx, fields[0], "value")
	if err != nil {
		return Selection{}, fmt.Errorf("read selector gadget value: %w", err)
	}
	if !ok || value == NoSelectionText || strings.TrimSpace(value) == "" {
		return Selection{Kind: Empty}, nil
	}
	return Selection{Kind: Selected, Selector: value}, nil
}

// EnsureInitialized injects the tool unless it is already on the page. It reports
// whether an injection happened.
func (g *Gadget) EnsureInitialized(ctx context.Context) (bool, error) {
	log := logutil.For(logutil.CompGadget)

	sel, err := g.Resolve(ctx)
	if err != nil {
		return false, err
	}
	if sel.Kind != MissingGadget {
		log.Info("selector gadget already initialized")
		return false, nil
	}

	log.Info("injecting selector gadget", "script", g.scriptURL)
	if err := g.session.ExecuteScript(ctx, BootstrapScript, []any{g.scriptURL}, nil); err != nil {
		return false, fmt.Errorf("inject selector gadget: %w", err)
	}
	log.Info("selector gadget ready")
	return true, nil
}
