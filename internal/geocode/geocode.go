// Package geocode implements the gazetteer collaborator contract of
// §6: geocode(q) -> (lat,lon), geocode_to_gdf(q, which_result, by_osmid)
// -> FeatureCollection sorted by importance, plus a ResolvePlace helper
// that turns a polygon result directly into a truncate.ByPolygon input.
package geocode

import (
	"crypto/tls"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/gotidy/ptr"
	"github.com/valyala/fasthttp"

	"streetgraph/internal/xerrors"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	Endpoint  string
	UserAgent string
	TLSConfig *tls.Config
}

// Client talks to the gazetteer collaborator over HTTP.
type Client struct {
	config     ClientConfig
	httpClient *fasthttp.Client
}

// NewClient creates a gazetteer client.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		config: cfg,
		httpClient: &fasthttp.Client{
			Name:      "streetgraph-geocode",
			TLSConfig: cfg.TLSConfig,
		},
	}
}

// Result is one gazetteer search result.
type Result struct {
	OSMID      int64           `json:"osm_id"`
	Lat        float64         `json:"lat"`
	Lon        float64         `json:"lon"`
	Importance float64         `json:"importance"`
	GeoJSON    json.RawMessage `json:"geojson,omitempty"`
}

// Query is the gazetteer search request. WhichResult selects the
// result index (0-based) instead of the highest-importance match;
// ByOSMID filters to a specific OSM element. Both are optional fields
// modeled as pointers so "unset" is distinguishable from "zero".
type Query struct {
	Q           string
	WhichResult *int
	ByOSMID     *int64
}

func (c *Client) buildRequest(path string, query map[string]string) (*fasthttp.Request, error) {
	req := fasthttp.AcquireRequest()
	if err := req.URI().Parse(nil, []byte(c.config.Endpoint+path)); err != nil {
		fasthttp.ReleaseRequest(req)
		return nil, fmt.Errorf("geocode: build request uri: %w", err)
	}
	for k, v := range query {
		req.URI().QueryArgs().Set(k, v)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	req.Header.SetMethod(fasthttp.MethodGet)
	return req, nil
}

// Geocode returns the (lat,lon) of the highest-importance match for
// q, per §6's geocode(q) -> (lat,lon).
func (c *Client) Geocode(q string) (lat, lon float64, err error) {
	results, err := c.search(Query{Q: q})
	if err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, xerrors.ErrGeocodeMiss
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Importance > best.Importance {
			best = r
		}
	}
	return best.Lat, best.Lon, nil
}

// GeocodeToFeatureCollection returns the full gazetteer result set for
// q as a FeatureCollection sorted by importance (descending), applying
// WhichResult/ByOSMID filters from query. Returns xerrors.ErrGeocodeMiss
// if zero results remain after filtering, or if WhichResult names an
// out-of-range index.
func (c *Client) GeocodeToFeatureCollection(query Query) (*geojson.FeatureCollection, error) {
	results, err := c.search(query)
	if err != nil {
		return nil, err
	}
	if query.ByOSMID != nil {
		var filtered []Result
		for _, r := range results {
			if r.OSMID == *query.ByOSMID {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}
	if len(results) == 0 {
		return nil, xerrors.ErrGeocodeMiss
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Importance > results[j].Importance })

	if query.WhichResult != nil {
		idx := *query.WhichResult
		if idx < 0 || idx >= len(results) {
			return nil, xerrors.ErrGeocodeMiss
		}
		results = []Result{results[idx]}
	}

	fc := geojson.NewFeatureCollection()
	for _, r := range results {
		f := geojson.NewPointFeature([]float64{r.Lon, r.Lat})
		f.Properties["osm_id"] = r.OSMID
		f.Properties["importance"] = r.Importance
		if len(r.GeoJSON) > 0 {
			f.Properties["geojson"] = string(r.GeoJSON)
		}
		fc.AddFeature(f)
	}
	return fc, nil
}

// ResolvePlace geocodes q and returns the (multi)polygon geometry of
// its top result for use as a truncate.ByPolygon input. Returns
// xerrors.ErrGeocodeMiss if the top result carries no polygon.
func (c *Client) ResolvePlace(q string) ([]orb.Polygon, error) {
	one := 0
	fc, err := c.GeocodeToFeatureCollection(Query{Q: q, WhichResult: &one})
	if err != nil {
		return nil, err
	}
	if len(fc.Features) == 0 {
		return nil, xerrors.ErrGeocodeMiss
	}
	raw, _ := fc.Features[0].Properties["geojson"].(string)
	if raw == "" {
		return nil, xerrors.ErrGeocodeMiss
	}
	geom, err := geojson.UnmarshalGeometry([]byte(raw))
	if err != nil {
		return nil, xerrors.ErrGeocodeMiss
	}

	switch {
	case geom.Polygon != nil:
		return []orb.Polygon{ringsToPolygon(geom.Polygon)}, nil
	case geom.MultiPolygon != nil:
		polys := make([]orb.Polygon, 0, len(geom.MultiPolygon))
		for _, rings := range geom.MultiPolygon {
			polys = append(polys, ringsToPolygon(rings))
		}
		return polys, nil
	default:
		return nil, xerrors.ErrGeocodeMiss
	}
}

func ringsToPolygon(rings [][][]float64) orb.Polygon {
	poly := make(orb.Polygon, len(rings))
	for i, ring := range rings {
		r := make(orb.Ring, len(ring))
		for j, pt := range ring {
			r[j] = orb.Point{pt[0], pt[1]}
		}
		poly[i] = r
	}
	return poly
}

func (c *Client) search(query Query) ([]Result, error) {
	params := map[string]string{"q": query.Q, "format": "geojson"}
	req, err := c.buildRequest("/search", params)
	if err != nil {
		return nil, err
	}
	defer fasthttp.ReleaseRequest(req)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := c.httpClient.Do(req, resp); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrFetcherFailure, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: gazetteer returned status %d", xerrors.ErrFetcherFailure, resp.StatusCode())
	}

	var results []Result
	if err := json.Unmarshal(resp.Body(), &results); err != nil {
		return nil, fmt.Errorf("geocode: decode response: %w", err)
	}
	return results, nil
}

// WhichResultPtr and ByOSMIDPtr are thin ptr.* wrappers so callers
// assembling a Query literal don't need to import gotidy/ptr
// themselves.
func WhichResultPtr(i int) *int     { return ptr.Int(i) }
func ByOSMIDPtr(id int64) *int64    { return ptr.Int64(id) }
