package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	GoogleScope    = gcal.CalendarEventsScope
	googleEndpoint = "https://www.googleapis.com/calendar/v3/"
	googleLayout   = "2006-01-02T15:04:05"
)

// Credentials returns the stored refresh token and target calendar of an account.
type Credentials func(ctx context.Context, account uint) (refreshToken, calendarID string, err error)

// Google pushes events through the Calendar v3 API.
type Google struct {
	oauth    *oauth2.Config
	creds    Credentials
	endpoint string
}

// GoogleConfig builds the OAuth client config. Returns nil when the app has no Google credentials.
func GoogleConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{GoogleScope},
	}
}

func NewGoogle(cfg *oauth2.Config, creds Credentials) *Google {
	if cfg == nil {
		return nil
	}
	return &Google{oauth: cfg, creds: creds, endpoint: googleEndpoint}
}

func (g *Google) Name() string { return "google" }

// AuthURL is the consent page; offline access with forced prompt so a refresh token is always issued.
func (g *Google) AuthURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a refresh token.
func (g *Google) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("calendar: google exchange: %w", err)
	}
	if tok.RefreshToken == "" {
		return "", errors.New("calendar: google returned no refresh token")
	}
	return tok.RefreshToken, nil
}

// UpsertEvent updates ev.ExternalID when set and falls back to an insert when it is gone.
func (g *Google) UpsertEvent(ctx context.Context, ev Event) (Result, error) {
	refresh, calID, err := g.creds(ctx, ev.Account)
	if err != nil {
		return Result{}, err
	}
	if refresh == "" {
		return Result{}, ErrNotConnected
	}
	if calID == "" {
		calID = "primary"
	}
	svc, err := gcal.NewService(ctx,
		option.WithHTTPClient(g.oauth.Client(ctx, &oauth2.Token{RefreshToken: refresh})),
		option.WithEndpoint(g.endpoint),
	)
	if err != nil {
		return Result{}, fmt.Errorf("calendar: google client: %w", err)
	}
	body := &gcal.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.In(Paris).Format(googleLayout), TimeZone: "Europe/Paris"},
		End:         &gcal.EventDateTime{DateTime: ev.End.In(Paris).Format(googleLayout), TimeZone: "Europe/Paris"},
	}

	if ev.ExternalID != "" {
		out, err := svc.Events.Update(calID, ev.ExternalID, body).Context(ctx).Do()
		if err == nil {
			return Result{ID: out.Id, URL: out.HtmlLink}, nil
		}
		var apiErr *googleapi.Error
		if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
			return Result{}, fmt.Errorf("calendar: google update: %w", err)
		}
	}
	out, err := svc.Events.Insert(calID, body).Context(ctx).Do()
	if err != nil {
		return Result{}, fmt.Errorf("calendar: google insert: %w", err)
	}
	return Result{ID: out.Id, URL: out.HtmlLink}, nil
}
