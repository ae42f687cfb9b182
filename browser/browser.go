// CLAUDE:SUMMARY Headless Chrome screenshot collaborator — lazy launch, stealth pages, selector highlight.
// Package browser captures webpage screenshots through Rod. The browser
// launches lazily on first use and is shared by every capture; pages are
// opened per capture and closed when done.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Config configures the screenshot collaborator.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// NavTimeout bounds navigation plus load. Default: 30s.
	NavTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns the shared browser handle.
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewManager creates a Manager. Chrome launches on first capture.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Options describes one screenshot capture.
type Options struct {
	URL      string
	Width    int // viewport width, default 1280
	Height   int // viewport height, default 720
	WaitMS   int // settle time after load, default 200
	FullPage bool
	Selector string // when set: highlight matches and scroll the first into view
}

// highlightCSS is injected when a selector is requested.
const highlightCSS = `.annexe-highlight { outline: 3px solid #ff3b30 !important; outline-offset: 2px !important; }`

func (m *Manager) ensure() (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browser != nil {
		return m.browser, nil
	}
	var b *rod.Browser
	if m.cfg.RemoteURL != "" {
		b = rod.New().ControlURL(m.cfg.RemoteURL)
	} else {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		m.lnch = l
		b = rod.New().ControlURL(u)
	}
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	m.browser = b
	return b, nil
}

// Screenshot navigates to the URL and captures a PNG.
func (m *Manager) Screenshot(ctx context.Context, opts Options) ([]byte, error) {
	b, err := m.ensure()
	if err != nil {
		return nil, err
	}
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}
	if opts.WaitMS <= 0 {
		opts.WaitMS = 200
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavTimeout)
	defer cancel()
	p := page.Context(navCtx)

	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("browser: set viewport: %w", err)
	}
	if err := p.Navigate(opts.URL); err != nil {
		return nil, fmt.Errorf("browser: navigate %s: %w", opts.URL, err)
	}
	if err := p.WaitLoad(); err != nil {
		m.cfg.Logger.Warn("browser: wait load timeout", "url", opts.URL, "error", err)
	}
	time.Sleep(time.Duration(opts.WaitMS) * time.Millisecond)

	if opts.Selector != "" {
		if err := m.highlight(p, opts.Selector); err != nil {
			m.cfg.Logger.Warn("browser: highlight failed", "selector", opts.Selector, "error", err)
		}
		time.Sleep(time.Duration(opts.WaitMS) * time.Millisecond)
	}

	data, err := p.Screenshot(opts.FullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("browser: screenshot %s: %w", opts.URL, err)
	}
	return data, nil
}

// highlight injects the highlight stylesheet, tags matched elements, and
// scrolls the first one into view.
func (m *Manager) highlight(p *rod.Page, selector string) error {
	if _, err := p.Eval(`(css) => {
		const style = document.createElement('style');
		style.textContent = css;
		document.head.appendChild(style);
	}`, highlightCSS); err != nil {
		return err
	}
	_, err := p.Eval(`(sel) => {
		const els = document.querySelectorAll(sel);
		els.forEach(el => el.classList.add('annexe-highlight'));
		if (els.length > 0) {
			els[0].scrollIntoView({block: 'center'});
		}
		return els.length;
	}`, selector)
	return err
}

// Close shuts the shared browser down.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browser != nil {
		_ = m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return nil
}

// Default is the shared manager used by the screenshot presenter.
var Default = NewManager(Config{})
