package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/platform/obs"
	"route-assignment-service/internal/ports"
	"strings"
	"time"
)

// OSRMEngine implements ports.RoutingEngine using the OSRM route service
// with the driving profile.
type OSRMEngine struct {
	session *httpSession
	baseURL string
	profile string
}

func NewOSRMEngine(baseURL string, timeout time.Duration) (*OSRMEngine, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("OSRM base url is empty")
	}

	return &OSRMEngine{
		session: newHTTPSession("osrm", timeout),
		baseURL: baseURL,
		profile: "driving",
	}, nil
}

type osrmResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry json.RawMessage `json:"geometry"`
	Distance float64         `json:"distance"`
	Duration float64         `json:"duration"`
	Legs     []osrmLeg       `json:"legs"`
}

type osrmLeg struct {
	Steps []osrmStep `json:"steps"`
}

type osrmStep struct {
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Name     string       `json:"name"`
	Maneuver osrmManeuver `json:"maneuver"`
}

type osrmManeuver struct {
	Type        string `json:"type"`
	Modifier    string `json:"modifier"`
	Instruction string `json:"instruction"`
}

func (o *OSRMEngine) routeURL(path []domain.Coordinates) string {
	segments := make([]string, 0, len(path))
	for _, c := range path {
		segments = append(segments, c.LngLat())
	}

	q := url.Values{}
	q.Set("overview", "full")
	q.Set("steps", "true")
	q.Set("geometries", "geojson")
	q.Set("alternatives", "false")

	return fmt.Sprintf("%s/route/v1/%s/%s?%s", o.baseURL, o.profile, strings.Join(segments, ";"), q.Encode())
}

func (o *OSRMEngine) Route(
	ctx context.Context,
	path []domain.Coordinates,
) (_ *domain.EngineRoute, err error) {
	defer obs.Time(ctx, "osrm.Route")(&err)

	if len(path) < 2 {
		return nil, fmt.Errorf("osrm route: need at least 2 points, got %d", len(path))
	}

	req, err := o.session.newRequest(ctx, http.MethodGet, o.routeURL(path), nil, "")
	if err != nil {
		return nil, fmt.Errorf("osrm route: %w", err)
	}

	resp, err := o.session.do(req)
	if err != nil {
		return nil, fmt.Errorf("osrm route: %w: %v", ports.ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()

	var or osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return nil, fmt.Errorf("osrm route: decode response: %w: %v", ports.ErrEngineInvalidResponse, err)
	}
	if or.Code != "Ok" || len(or.Routes) == 0 {
		return nil, fmt.Errorf("osrm route: code=%q routes=%d: %w", or.Code, len(or.Routes), ports.ErrEngineInvalidResponse)
	}

	r := or.Routes[0]

	var steps []osrmStep
	if len(r.Legs) > 0 {
		steps = r.Legs[0].Steps
	}

	instructions := make([]domain.Instruction, 0, len(steps))
	for _, s := range steps {
		instructions = append(instructions, domain.Instruction{
			Maneuver:    strings.TrimSpace(s.Maneuver.Type + " " + s.Maneuver.Modifier),
			Instruction: s.Maneuver.Instruction,
			Distance:    s.Distance,
			Duration:    s.Duration,
			Name:        s.Name,
		})
	}

	return &domain.EngineRoute{
		Geometry:        []byte(r.Geometry),
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
		Instructions:    instructions,
	}, nil
}
