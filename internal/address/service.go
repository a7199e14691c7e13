package address

import (
	"context"
	"strings"

	"github.com/snapnest/booking-backend/pkg/errors"
	"github.com/snapnest/booking-backend/pkg/maps"
)

type placesClient interface {
	Autocomplete(ctx context.Context, req maps.AutocompleteRequest) ([]maps.AutocompleteSuggestion, error)
	ResolvePlace(ctx context.Context, placeID, sessionToken string) (*maps.PlaceDetails, error)
}

// Service backs address autocomplete on the property step. Manual entry does
// not go through it.
type Service interface {
	Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error)
	Resolve(ctx context.Context, req ResolveRequest) (Address, error)
}

type service struct {
	places placesClient
}

// NewService wraps a places client. With a nil client every call reports the
// dependency as unavailable and the wizard falls back to manual entry.
func NewService(client placesClient) Service {
	return &service{places: client}
}

type SuggestRequest struct {
	Query        string
	SessionToken string
	Language     string
}

type ResolveRequest struct {
	PlaceID      string
	SessionToken string
}

type Suggestion struct {
	PlaceID       string `json:"place_id"`
	Description   string `json:"description"`
	MainText      string `json:"main_text,omitempty"`
	SecondaryText string `json:"secondary_text,omitempty"`
}

// Address is a resolved property location. Formatted is what the property
// draft stores; the parts are informational.
type Address struct {
	PlaceID    string  `json:"place_id"`
	Formatted  string  `json:"formatted"`
	Line1      string  `json:"line1"`
	Suite      string  `json:"suite,omitempty"`
	City       string  `json:"city,omitempty"`
	Province   string  `json:"province,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	Country    string  `json:"country,omitempty"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

func unavailable() error {
	return errors.New(errors.CodeDependency, "address autocomplete unavailable")
}

func (s *service) Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error) {
	if s == nil || s.places == nil {
		return nil, unavailable()
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, errors.New(errors.CodeValidation, "query is required")
	}

	found, err := s.places.Autocomplete(ctx, maps.AutocompleteRequest{
		Input:        query,
		LanguageCode: strings.TrimSpace(req.Language),
		SessionToken: strings.TrimSpace(req.SessionToken),
	})
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, len(found))
	for i, f := range found {
		out[i] = Suggestion{
			PlaceID:       f.PlaceID,
			Description:   f.Description,
			MainText:      f.MainText,
			SecondaryText: f.SecondaryText,
		}
	}
	return out, nil
}

func (s *service) Resolve(ctx context.Context, req ResolveRequest) (Address, error) {
	if s == nil || s.places == nil {
		return Address{}, unavailable()
	}
	placeID := strings.TrimSpace(req.PlaceID)
	if placeID == "" {
		return Address{}, errors.New(errors.CodeValidation, "place_id is required")
	}

	details, err := s.places.ResolvePlace(ctx, placeID, strings.TrimSpace(req.SessionToken))
	if err != nil {
		return Address{}, err
	}
	return toAddress(details)
}

// toAddress flattens place components. The street line prefers number and
// route, then the first segment of the formatted address for rural lots that
// have neither.
func toAddress(details *maps.PlaceDetails) (Address, error) {
	if details == nil {
		return Address{}, errors.New(errors.CodeDependency, "place details missing")
	}

	formatted := strings.TrimSpace(details.FormattedAddress)
	line1 := strings.TrimSpace(details.Component("street_number") + " " + details.Component("route"))
	if line1 == "" {
		first, _, _ := strings.Cut(formatted, ",")
		line1 = strings.TrimSpace(first)
	}
	if line1 == "" {
		return Address{}, errors.New(errors.CodeDependency, "street address missing")
	}
	if formatted == "" {
		formatted = line1
	}

	return Address{
		PlaceID:    details.PlaceID,
		Formatted:  formatted,
		Line1:      line1,
		Suite:      details.Component("subpremise"),
		City:       firstComponent(details, "locality", "postal_town", "administrative_area_level_2"),
		Province:   details.ShortComponent("administrative_area_level_1"),
		PostalCode: details.Component("postal_code"),
		Country:    details.ShortComponent("country"),
		Lat:        details.Location.Latitude,
		Lng:        details.Location.Longitude,
	}, nil
}

func firstComponent(details *maps.PlaceDetails, types ...string) string {
	for _, typ := range types {
		if v := details.Component(typ); v != "" {
			return v
		}
	}
	return ""
}
