package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gharsewa/internal/general/contracts"
)

// Route is one computed path between an origin and a destination. Either the
// directions provider produced it, or it is a synthetic two-point straight
// line (DurationSeconds 0, Geometry nil).
type Route struct {
	Coordinates     []contracts.GeoPoint
	DistanceMeters  float64
	DurationSeconds float64
	Geometry        json.RawMessage // raw GeoJSON LineString when the provider supplied one
}

// DirectionsClient produces traffic-aware routes from an external provider.
type DirectionsClient interface {
	GetDirections(ctx context.Context, origin, dest contracts.GeoPoint, profile string) (Route, error)
}

var (
	ErrNoRoute        = errors.New("provider returned no route")
	ErrInvalidProfile = errors.New("invalid routing profile")
)

// Routing profiles understood by the provider.
const (
	ProfileDriving        = "driving"
	ProfileDrivingTraffic = "driving-traffic"
	ProfileWalking        = "walking"
	ProfileCycling        = "cycling"
)

// ValidProfile reports whether the profile is one the provider accepts.
func ValidProfile(profile string) bool {
	switch profile {
	case ProfileDriving, ProfileDrivingTraffic, ProfileWalking, ProfileCycling:
		return true
	default:
		return false
	}
}

// HTTPDirections calls a Mapbox-style directions API:
// GET {base}/directions/v5/mapbox/{profile}/{lng},{lat};{lng},{lat}
// with geometries=geojson, and parses the first returned route.
type HTTPDirections struct {
	baseURL     string
	accessToken string
	http        *http.Client
}

// NewHTTPDirections creates a provider client. The HTTP client carries its
// own timeout; route computations inherit it.
func NewHTTPDirections(baseURL, accessToken string) *HTTPDirections {
	return &HTTPDirections{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

type directionsResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Type        string       `json:"type"`
			Coordinates [][2]float64 `json:"coordinates"` // [lng, lat] pairs
		} `json:"geometry"`
	} `json:"routes"`
}

// GetDirections requests a route and converts the GeoJSON line into ordered
// (lat, lng) points.
func (d *HTTPDirections) GetDirections(ctx context.Context, origin, dest contracts.GeoPoint, profile string) (Route, error) {
	if !ValidProfile(profile) {
		return Route{}, ErrInvalidProfile
	}

	coords := fmt.Sprintf("%f,%f;%f,%f", origin.Longitude, origin.Latitude, dest.Longitude, dest.Latitude)
	query := url.Values{}
	query.Set("geometries", "geojson")
	query.Set("overview", "full")
	if d.accessToken != "" {
		query.Set("access_token", d.accessToken)
	}
	endpoint := fmt.Sprintf("%s/directions/v5/mapbox/%s/%s?%s", d.baseURL, profile, coords, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Route{}, fmt.Errorf("build directions request: %w", err)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return Route{}, fmt.Errorf("directions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Route{}, fmt.Errorf("directions provider returned %d", resp.StatusCode)
	}

	var parsed directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Route{}, fmt.Errorf("decode directions response: %w", err)
	}
	if len(parsed.Routes) == 0 || len(parsed.Routes[0].Geometry.Coordinates) == 0 {
		return Route{}, ErrNoRoute
	}

	best := parsed.Routes[0]
	points := make([]contracts.GeoPoint, 0, len(best.Geometry.Coordinates))
	for _, pair := range best.Geometry.Coordinates {
		points = append(points, contracts.GeoPoint{Latitude: pair[1], Longitude: pair[0]})
	}

	geometry, err := json.Marshal(best.Geometry)
	if err != nil {
		geometry = nil
	}

	return Route{
		Coordinates:     points,
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
		Geometry:        geometry,
	}, nil
}
