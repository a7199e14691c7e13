package maps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"

	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
)

const (
	defaultBaseURL = "https://places.googleapis.com/v1"
	defaultTimeout = 10 * time.Second
)

// Property addresses only; businesses and landmarks are filtered upstream.
var addressPrimaryTypes = []string{"street_address", "premise", "subpremise"}

type endpoint struct {
	name      string
	method    string
	fieldMask string
}

var (
	autocompleteEndpoint = endpoint{
		name:      "autocomplete",
		method:    http.MethodPost,
		fieldMask: "suggestions.placePrediction.placeId,suggestions.placePrediction.text,suggestions.placePrediction.structuredFormat",
	}
	placeEndpoint = endpoint{
		name:      "place details",
		method:    http.MethodGet,
		fieldMask: "id,formattedAddress,location,addressComponents",
	}
)

var errAPIKeyRequired = errors.New("google maps api key is required")

// Client calls the Places API (New) for the property step of the booking
// wizard.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	regionCode string
	limiter    *rate.Limiter
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithRegionCode limits suggestions to one country unless a request names
// its own regions.
func WithRegionCode(code string) Option {
	return func(c *Client) {
		c.regionCode = strings.ToUpper(strings.TrimSpace(code))
	}
}

// WithRateLimit shares a token bucket of rps across all outbound calls.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		}
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// AutocompleteRequest is the autocomplete body. SessionToken ties one booking
// session's keystrokes to its final place lookup.
type AutocompleteRequest struct {
	Input                string   `json:"input"`
	IncludedRegionCodes  []string `json:"includedRegionCodes,omitempty"`
	IncludedPrimaryTypes []string `json:"includedPrimaryTypes,omitempty"`
	LanguageCode         string   `json:"languageCode,omitempty"`
	SessionToken         string   `json:"sessionToken,omitempty"`
}

// AutocompleteSuggestion splits the prediction the way the address picker
// renders it: street on top, locality underneath.
type AutocompleteSuggestion struct {
	PlaceID       string
	Description   string
	MainText      string
	SecondaryText string
}

type PlaceDetails struct {
	PlaceID           string
	FormattedAddress  string
	Location          LatLng
	AddressComponents []AddressComponent
}

type LatLng struct {
	Latitude  float64
	Longitude float64
}

type AddressComponent struct {
	LongName  string
	ShortName string
	Types     []string
}

// Component returns the long name of the first component tagged typ.
func (p *PlaceDetails) Component(typ string) string {
	long, _ := p.component(typ)
	return long
}

// ShortComponent returns the short name, e.g. "ON" rather than "Ontario".
func (p *PlaceDetails) ShortComponent(typ string) string {
	_, short := p.component(typ)
	return short
}

func (p *PlaceDetails) component(typ string) (string, string) {
	if p == nil {
		return "", ""
	}
	for _, comp := range p.AddressComponents {
		if slices.Contains(comp.Types, typ) {
			return comp.LongName, comp.ShortName
		}
	}
	return "", ""
}

type textValue struct {
	Text string `json:"text"`
}

type autocompleteResponse struct {
	Suggestions []struct {
		Prediction *struct {
			PlaceID          string    `json:"placeId"`
			Text             textValue `json:"text"`
			StructuredFormat struct {
				MainText      textValue `json:"mainText"`
				SecondaryText textValue `json:"secondaryText"`
			} `json:"structuredFormat"`
		} `json:"placePrediction"`
	} `json:"suggestions"`
}

type placeResponse struct {
	ID               string `json:"id"`
	FormattedAddress string `json:"formattedAddress"`
	Location         struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	AddressComponents []struct {
		LongText  string   `json:"longText"`
		ShortText string   `json:"shortText"`
		Types     []string `json:"types"`
	} `json:"addressComponents"`
}

// Autocomplete suggests property addresses for partial input.
func (c *Client) Autocomplete(ctx context.Context, req AutocompleteRequest) ([]AutocompleteSuggestion, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	req.Input = strings.TrimSpace(req.Input)
	if req.Input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "autocomplete input is required")
	}
	if len(req.IncludedRegionCodes) == 0 && c.regionCode != "" {
		req.IncludedRegionCodes = []string{c.regionCode}
	}
	if len(req.IncludedPrimaryTypes) == 0 {
		req.IncludedPrimaryTypes = addressPrimaryTypes
	}

	var resp autocompleteResponse
	if err := c.call(ctx, autocompleteEndpoint, "places:autocomplete", req, &resp); err != nil {
		return nil, err
	}

	out := make([]AutocompleteSuggestion, 0, len(resp.Suggestions))
	for _, s := range resp.Suggestions {
		p := s.Prediction
		if p == nil || p.PlaceID == "" {
			continue
		}
		out = append(out, AutocompleteSuggestion{
			PlaceID:       p.PlaceID,
			Description:   p.Text.Text,
			MainText:      p.StructuredFormat.MainText.Text,
			SecondaryText: p.StructuredFormat.SecondaryText.Text,
		})
	}
	return out, nil
}

// ResolvePlace fetches address components for a suggestion the client
// picked. Passing the same session token closes the billing session.
func (c *Client) ResolvePlace(ctx context.Context, placeID, sessionToken string) (*PlaceDetails, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "place ID is required")
	}

	path := "places/" + url.PathEscape(placeID)
	if token := strings.TrimSpace(sessionToken); token != "" {
		path += "?" + url.Values{"sessionToken": {token}}.Encode()
	}

	var resp placeResponse
	if err := c.call(ctx, placeEndpoint, path, nil, &resp); err != nil {
		return nil, err
	}

	details := &PlaceDetails{
		PlaceID:           resp.ID,
		FormattedAddress:  resp.FormattedAddress,
		Location:          LatLng{Latitude: resp.Location.Latitude, Longitude: resp.Location.Longitude},
		AddressComponents: make([]AddressComponent, 0, len(resp.AddressComponents)),
	}
	for _, comp := range resp.AddressComponents {
		details.AddressComponents = append(details.AddressComponents, AddressComponent{
			LongName:  comp.LongText,
			ShortName: comp.ShortText,
			Types:     comp.Types,
		})
	}
	return details, nil
}

func (c *Client) call(ctx context.Context, ep endpoint, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, ep.name+" throttled")
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+ep.name+" request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, ep.method, c.baseURL+"/"+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build "+ep.name+" request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", ep.fieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, ep.name+" request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		return upstreamError(ep, err)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+ep.name+" response")
	}
	return nil
}

// upstreamError maps a Places failure onto the booking error codes. A bad or
// stale place id is the caller's problem; everything else is ours.
func upstreamError(ep endpoint, err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, ep.name+" request failed")
	}
	switch apiErr.Code {
	case http.StatusBadRequest:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, ep.name+" request rejected")
	case http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "place not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, ep.name+" request failed").
		WithDetails(map[string]any{"upstream_status": apiErr.Code})
}
