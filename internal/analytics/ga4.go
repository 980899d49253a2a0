package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

const defaultEndpoint = "https://analyticsdata.googleapis.com/v1beta"

// GA4Client queries the GA4 Data API runReport endpoint over HTTP.
type GA4Client struct {
	propertyID string
	endpoint   string
	token      string
	client     *http.Client
}

// NewGA4Client creates a client for one GA4 property. The bearer token is
// read once from the named environment variable; how the token gets there
// is the deployment's business.
func NewGA4Client(propertyID, endpoint, tokenEnv string, timeout time.Duration) *GA4Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &GA4Client{
		propertyID: propertyID,
		endpoint:   endpoint,
		token:      os.Getenv(tokenEnv),
		client:     &http.Client{Timeout: timeout},
	}
}

// IsConfigured returns whether the property ID and token are available.
func (c *GA4Client) IsConfigured() bool {
	return c.propertyID != "" && c.token != ""
}

// runReport request/response wire types, trimmed to the fields used here.

type dateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type namedField struct {
	Name string `json:"name"`
}

type metricOrderBy struct {
	MetricName string `json:"metricName"`
}

type orderBy struct {
	Metric metricOrderBy `json:"metric"`
	Desc   bool          `json:"desc"`
}

type inListFilter struct {
	Values        []string `json:"values"`
	CaseSensitive bool     `json:"caseSensitive"`
}

type dimensionFilter struct {
	Filter struct {
		FieldName    string       `json:"fieldName"`
		InListFilter inListFilter `json:"inListFilter"`
	} `json:"filter"`
}

type runReportRequest struct {
	DateRanges      []dateRange      `json:"dateRanges"`
	Dimensions      []namedField     `json:"dimensions,omitempty"`
	Metrics         []namedField     `json:"metrics"`
	OrderBys        []orderBy        `json:"orderBys,omitempty"`
	Limit           string           `json:"limit"`
	DimensionFilter *dimensionFilter `json:"dimensionFilter,omitempty"`
}

type wireValue struct {
	Value string `json:"value"`
}

type wireRow struct {
	DimensionValues []wireValue `json:"dimensionValues"`
	MetricValues    []wireValue `json:"metricValues"`
}

type runReportResponse struct {
	Rows []wireRow `json:"rows"`
}

// Query runs one report request and maps the response onto typed rows.
// Any transport, auth or decode problem surfaces as an error; the caller
// decides whether that means empty data.
func (c *GA4Client) Query(ctx context.Context, req Request) ([]Row, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("ga4 client not configured")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	body := runReportRequest{
		DateRanges: []dateRange{{StartDate: req.Start, EndDate: req.End}},
		Metrics:    make([]namedField, 0, len(req.Metrics)),
		Limit:      strconv.Itoa(limit),
	}
	for _, d := range req.Dimensions {
		body.Dimensions = append(body.Dimensions, namedField{Name: d})
	}
	for _, m := range req.Metrics {
		body.Metrics = append(body.Metrics, namedField{Name: m})
	}
	if req.OrderByMetric != "" {
		body.OrderBys = []orderBy{{Metric: metricOrderBy{MetricName: req.OrderByMetric}, Desc: true}}
	}
	if req.Filter != nil {
		df := &dimensionFilter{}
		df.Filter.FieldName = req.Filter.Dimension
		df.Filter.InListFilter = inListFilter{
			Values:        req.Filter.Values,
			CaseSensitive: req.Filter.CaseSensitive,
		}
		body.DimensionFilter = df
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding report request: %w", err)
	}

	url := fmt.Sprintf("%s/properties/%s:runReport", c.endpoint, c.propertyID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building report request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("running report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("running report: HTTP %d", resp.StatusCode)
	}

	var wire runReportResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding report response: %w", err)
	}

	rows := make([]Row, 0, len(wire.Rows))
	for _, wr := range wire.Rows {
		row := Row{
			Dimensions: make(map[string]string, len(req.Dimensions)),
			Metrics:    make(map[string]Value, len(req.Metrics)),
		}
		for i, d := range req.Dimensions {
			if i < len(wr.DimensionValues) {
				row.Dimensions[d] = wr.DimensionValues[i].Value
			}
		}
		for i, m := range req.Metrics {
			if i < len(wr.MetricValues) {
				row.Metrics[m] = ParseValue(wr.MetricValues[i].Value)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
