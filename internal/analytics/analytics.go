// Package analytics issues range-bounded dimension/metric queries against
// the GA4 Data API and returns typed rows.
package analytics

import (
	"context"
	"strconv"
	"strings"
)

// DefaultLimit is applied when a request does not set its own limit. The
// provider caps row counts anyway; this is "effectively unlimited" for a
// single news site's weekly traffic.
const DefaultLimit = 100000

// Value is a single metric value. The provider sends every metric as a
// string; a string containing a decimal point parses as a float (including
// "12.0"), anything else as an integer. Downstream formatting depends on
// that distinction, so it is preserved rather than collapsed to float64.
type Value struct {
	intVal   int64
	floatVal float64
	isFloat  bool
}

// ParseValue converts a provider metric string into a Value. Unparseable
// input yields the zero integer value.
func ParseValue(s string) Value {
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}
		}
		return Value{floatVal: f, isFloat: true}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Value{}
	}
	return Value{intVal: n}
}

// IntValue builds an integer Value. Used by tests and fakes.
func IntValue(n int64) Value { return Value{intVal: n} }

// FloatValue builds a float Value. Used by tests and fakes.
func FloatValue(f float64) Value { return Value{floatVal: f, isFloat: true} }

// IsFloat reports whether the value carried a decimal point.
func (v Value) IsFloat() bool { return v.isFloat }

// Int returns the value truncated to an integer.
func (v Value) Int() int64 {
	if v.isFloat {
		return int64(v.floatVal)
	}
	return v.intVal
}

// Float returns the value as a float64.
func (v Value) Float() float64 {
	if v.isFloat {
		return v.floatVal
	}
	return float64(v.intVal)
}

// String renders the value the way it arrived: floats keep their fraction,
// integers stay integers.
func (v Value) String() string {
	if v.isFloat {
		return strconv.FormatFloat(v.floatVal, 'f', -1, 64)
	}
	return strconv.FormatInt(v.intVal, 10)
}

// Row is one result row: dimension values keyed by dimension name plus
// metric values keyed by metric name.
type Row struct {
	Dimensions map[string]string
	Metrics    map[string]Value
}

// Dim returns a dimension value, or "" when the row does not carry it.
func (r Row) Dim(name string) string {
	return r.Dimensions[name]
}

// Metric returns a metric value, or the zero value when absent.
func (r Row) Metric(name string) Value {
	return r.Metrics[name]
}

// InListFilter restricts a query to rows whose dimension value is in the
// given set.
type InListFilter struct {
	Dimension     string
	Values        []string
	CaseSensitive bool
}

// Request describes one report query. Dimensions and Metrics are ordered;
// OrderByMetric, when set, sorts descending by that metric.
type Request struct {
	Start         string // YYYY-MM-DD
	End           string // YYYY-MM-DD
	Dimensions    []string
	Metrics       []string
	OrderByMetric string
	Limit         int
	Filter        *InListFilter
}

// Client runs report queries. Implementations own transport, auth and
// retries; callers treat any error as "no data this time".
type Client interface {
	Query(ctx context.Context, req Request) ([]Row, error)
}
