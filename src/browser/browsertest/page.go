// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"fmt"
	"sync"

	"interactive-scraper/src/browser"
)

// Node is a fake DOM element. A property missing from Props reads as undefined.
type Node struct {
	Props map[string]string
}

// ScriptCall records one ExecuteScript invocation.
type ScriptCall struct {
	Script string
	Args   []any
}

// Page is a single fake page keyed by CSS selector. It is safe for concurrent use so
// tests can inspect it while an event loop runs.
type Page struct {
	mu         sync.Mutex
	url        string
	nodes      map[string][]*Node
	handles    []*Node
	finds      []browser.Locator
	scripts    []ScriptCall
	navs       []string
	closed     bool
	failures   map[string]error
	onScript   func(p *Page, call ScriptCall) error
	onNavigate func(p *Page, url string)
}

func NewPage() *Page {
	return &Page{nodes: make(map[string][]*Node), failures: make(map[string]error)}
}

// Set replaces the nodes matched by a locator.
func (p *Page) Set(loc browser.Locator, nodes ...Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	list := make([]*Node, 0, len(nodes))
	for i := range nodes {
		n := nodes[i]
		if n.Props == nil {
			n.Props = map[string]string{}
		}
		list = append(list, &n)
	}
	p.nodes[loc.Selector()] = list
}

// Remove deletes every node matched by a locator.
func (p *Page) Remove(loc browser.Locator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.nodes, loc.Selector())
}

// SetProp updates a property on every node matched by loc.
func (p *Page) SetProp(loc browser.Locator, name, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range p.nodes[loc.Selector()] {
		n.Props[name] = value
	}
}

// FailOn makes the named operation ("navigate", "find", "property", "script", "close")
// return err until cleared with a nil error.
func (p *Page) FailOn(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.failures, op)
		return
	}
	p.failures[op] = err
}

// OnScript installs a hook run for every ExecuteScript call.
func (p *Page) OnScript(fn func(p *Page, call ScriptCall) error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onScript = fn
}

// OnNavigate installs a hook run after every successful navigation.
func (p *Page) OnNavigate(fn func(p *Page, url string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onNavigate = fn
}

func (p *Page) Scripts() []ScriptCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ScriptCall(nil), p.scripts...)
}

func (p *Page) Finds() []browser.Locator {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]browser.Locator(nil), p.finds...)
}

func (p *Page) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navs...)
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	if err := p.failures["navigate"]; err != nil {
		p.mu.Unlock()
		return err
	}
	p.url = url
	p.navs = append(p.navs, url)
	p.nodes = make(map[string][]*Node)
	p.handles = nil
	hook := p.onNavigate
	p.mu.Unlock()

	if hook != nil {
		hook(p, url)
	}
	return nil
}

func (p *Page) FindAll(ctx context.Context, loc browser.Locator) ([]browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finds = append(p.finds, loc)
	if err := p.failures["find"]; err != nil {
		return nil, err
	}

	var out []browser.Element
	for _, n := range p.nodes[loc.Selector()] {
		p.handles = append(p.handles, n)
		out = append(out, browser.NewElement(int64(len(p.handles)-1)))
	}
	return out, nil
}

func (p *Page) Property(ctx context.Context, el browser.Element, name string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failures["property"]; err != nil {
		return "", false, err
	}
	ref := el.Ref()
	if ref < 0 || ref >= int64(len(p.handles)) {
		return "", false, fmt.Errorf("stale element reference %d", ref)
	}
	v, ok := p.handles[ref].Props[name]
	return v, ok, nil
}

func (p *Page) ExecuteScript(ctx context.Context, script string, args []any, res any) error {
	p.mu.Lock()
	if err := p.failures["script"]; err != nil {
		p.mu.Unlock()
		return err
	}
	call := ScriptCall{Script: script, Args: append([]any(nil), args...)}
	p.scripts = append(p.scripts, call)
	hook := p.onScript
	p.mu.Unlock()

	if hook != nil {
		return hook(p, call)
	}
	return nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failures["close"]; err != nil {
		return err
	}
	p.closed = true
	return nil
}

var _ browser.Session = (*Page)(nil)
