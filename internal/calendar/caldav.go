package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
)

// CalDAVConfig points at an iCloud-style CalDAV server. CalendarURL skips discovery when set.
type CalDAVConfig struct {
	URL         string
	CalendarURL string
	User        string
	Pass        string
}

// CalDAV writes one .ics resource per job into the first calendar of the account.
type CalDAV struct {
	cfg  CalDAVConfig
	http *http.Client
	now  func() time.Time

	mu       sync.Mutex
	client   *caldav.Client
	endpoint *url.URL
	resolved string // server path of the target calendar collection
}

var errNoCalendar = errors.New("calendar: caldav calendar not found")

func NewCalDAV(cfg CalDAVConfig) *CalDAV {
	return &CalDAV{cfg: cfg, http: &http.Client{Timeout: 15 * time.Second}, now: time.Now}
}

func (c *CalDAV) Configured() bool {
	return c.cfg.URL != "" && c.cfg.User != "" && c.cfg.Pass != ""
}

func (c *CalDAV) Name() string { return "caldav" }

// UpsertEvent PUTs the event under <calendar>/<key>.ics and reads it back.
func (c *CalDAV) UpsertEvent(ctx context.Context, ev Event) (Result, error) {
	if !c.Configured() {
		return Result{}, ErrNotConfigured
	}
	cli, dir, err := c.calendar(ctx)
	if err != nil {
		return Result{}, err
	}
	p := dir + ev.Key + ".ics"

	if _, err := cli.PutCalendarObject(ctx, p, Calendar(ev, c.now())); err != nil {
		return Result{}, fmt.Errorf("calendar: caldav put %s: %w", p, err)
	}
	if _, err := cli.GetCalendarObject(ctx, p); err != nil {
		return Result{}, fmt.Errorf("calendar: caldav event written but unreadable: %w", err)
	}
	u := c.endpoint.ResolveReference(&url.URL{Path: p}).String()
	return Result{ID: u, URL: u}, nil
}

// calendar returns the client and the calendar collection path, discovering it once.
func (c *CalDAV) calendar(ctx context.Context) (*caldav.Client, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil && c.resolved != "" {
		return c.client, c.resolved, nil
	}

	base := strings.TrimSpace(c.cfg.CalendarURL)
	explicit := base != ""
	if !explicit {
		base = strings.TrimSuffix(strings.TrimSpace(c.cfg.URL), "/")
		explicit = strings.Contains(base, "/calendars/")
	}
	endpoint, err := url.Parse(base)
	if err != nil {
		return nil, "", fmt.Errorf("calendar: caldav url: %w", err)
	}
	cli, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(c.http, c.cfg.User, c.cfg.Pass), base)
	if err != nil {
		return nil, "", fmt.Errorf("calendar: caldav client: %w", err)
	}

	dir := endpoint.Path
	if !explicit {
		if dir, err = discover(ctx, cli); err != nil {
			return nil, "", err
		}
	}
	c.client, c.endpoint, c.resolved = cli, endpoint, withSlash(dir)
	return c.client, c.resolved, nil
}

// discover walks current-user-principal, calendar-home-set, then the first calendar collection.
func discover(ctx context.Context, cli *caldav.Client) (string, error) {
	principal, err := cli.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("calendar: caldav principal: %w", err)
	}
	home, err := cli.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("calendar: caldav home set: %w", err)
	}
	cals, err := cli.FindCalendars(ctx, home)
	if err != nil {
		return "", fmt.Errorf("calendar: caldav calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", errNoCalendar
	}
	return cals[0].Path, nil
}

func withSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
