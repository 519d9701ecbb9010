package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"interactive-scraper/src/logutil"
)

type Options struct {
	// URL is the DevTools endpoint of a running browser (http://host:port or ws://...).
	// Empty launches a local Chrome/Chromium.
	URL      string
	Headless bool
}

// CDPSession drives one tab over the Chrome DevTools Protocol.
type CDPSession struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// Connect attaches to (or launches) a browser and opens a new tab in it.
func Connect(ctx context.Context, opts Options) (*CDPSession, error) {
	log := logutil.For(logutil.CompBrowser)

	var allocCtx context.Context
	var cancelAlloc context.CancelFunc
	if opts.URL != "" {
		log.Info("connecting to browser", "url", opts.URL)
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, opts.URL)
	} else {
		log.Info("launching browser", "headless", opts.Headless)
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, execOpts...)
	}

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	return &CDPSession{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}, nil
}

// run executes actions on the tab. Cancelling ctx aborts the running actions without
// closing the tab.
func (s *CDPSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (s *CDPSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (s *CDPSession) FindAll(ctx context.Context, loc Locator) ([]Element, error) {
	var ids []cdp.NodeID
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		root, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		ids, err = dom.QuerySelectorAll(root.NodeID, loc.Selector()).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", loc, err)
	}

	elems := make([]Element, 0, len(ids))
	for _, id := range ids {
		elems = append(elems, NewElement(int64(id)))
	}
	return elems, nil
}

func (s *CDPSession) Property(ctx context.Context, el Element, name string) (string, bool, error) {
	nameLit, err := json.Marshal(name)
	if err != nil {
		return "", false, err
	}
	fn := fmt.Sprintf("function() { return this[%s]; }", nameLit)

	var res *cdpruntime.RemoteObject
	err = s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(cdp.NodeID(el.Ref())).Do(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = cdpruntime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		var exc *cdpruntime.ExceptionDetails
		res, exc, err = cdpruntime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		return nil
	}))
	if err != nil {
		return "", false, fmt.Errorf("read property %q: %w", name, err)
	}

	if res == nil || res.Type == cdpruntime.TypeUndefined || res.Subtype == cdpruntime.SubtypeNull || len(res.Value) == 0 {
		return "", false, nil
	}

	var v any
	if err := json.Unmarshal(res.Value, &v); err != nil {
		return "", false, fmt.Errorf("decode property %q: %w", name, err)
	}
	switch val := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return val, true, nil
	default:
		return fmt.Sprint(val), true, nil
	}
}

func (s *CDPSession) ExecuteScript(ctx context.Context, script string, args []any, res any) error {
	expr, err := CallExpression(script, args)
	if err != nil {
		return err
	}
	awaitPromise := func(p *cdpruntime.EvaluateParams) *cdpruntime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}
	if err := s.run(ctx, chromedp.Evaluate(expr, res, awaitPromise)); err != nil {
		return fmt.Errorf("execute script: %w", err)
	}
	return nil
}

// Close closes the tab and releases the allocator. A launched browser exits with it; on a
// remote browser chromedp never treats the tab as the browser's first context, so only the
// tab this session opened is closed.
func (s *CDPSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancelTab()
	s.cancelAlloc()
	if err != nil {
		return fmt.Errorf("close browser tab: %w", err)
	}
	return nil
}
