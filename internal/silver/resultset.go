package silver

import (
	"strings"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// Envelope is the stats-API response shape: a resource name, the request
// parameters echoed back, and a list of named tabular result sets.
type Envelope struct {
	Resource   string      `json:"resource"`
	Parameters any         `json:"parameters"`
	ResultSets []ResultSet `json:"resultSets"`
}

type ResultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// Row is one result-set row keyed by header name, post-preprocessing.
type Row map[string]any

// DecodeEnvelope parses a raw stats-API payload and preprocesses it once.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return nil, crerr.Wrap(err, "decode stats envelope")
	}
	env.Parameters = Preprocess(env.Parameters)
	for i := range env.ResultSets {
		for j, row := range env.ResultSets[i].RowSet {
			env.ResultSets[i].RowSet[j] = preprocessRowSlice(row, env.ResultSets[i].Headers)
		}
	}
	return &env, nil
}

// ResultSetByName finds a result set by its upstream name, or nil.
func (e *Envelope) ResultSetByName(name string) *ResultSet {
	if e == nil {
		return nil
	}
	for i := range e.ResultSets {
		if e.ResultSets[i].Name == name {
			return &e.ResultSets[i]
		}
	}
	return nil
}

// ParameterString reads one echoed request parameter. The upstream shape is
// either an object or a list of single-key objects depending on endpoint.
func (e *Envelope) ParameterString(key string) string {
	if e == nil {
		return ""
	}
	switch params := e.Parameters.(type) {
	case map[string]any:
		return stringValue(params[key])
	case []any:
		for _, item := range params {
			if m, ok := item.(map[string]any); ok {
				if v, present := m[key]; present {
					return stringValue(v)
				}
			}
		}
	}
	return ""
}

// Rows materializes the result set as header-keyed dicts. Rows with fewer
// values than headers are skipped.
func (rs *ResultSet) Rows() []Row {
	if rs == nil {
		return nil
	}
	out := make([]Row, 0, len(rs.RowSet))
	for _, raw := range rs.RowSet {
		if len(raw) < len(rs.Headers) {
			continue
		}
		row := make(Row, len(rs.Headers))
		for i, header := range rs.Headers {
			row[header] = raw[i]
		}
		out = append(out, Row(PreprocessRow(row)))
	}
	return out
}

func preprocessRowSlice(row []any, headers []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		key := ""
		if i < len(headers) {
			key = headers[i]
		}
		out[i] = preprocessValue(v, key)
	}
	return out
}

// String reads a field as a string; numbers are not stringified.
func (r Row) String(key string) string {
	return stringValue(r[key])
}

// Int64 reads a numeric field, tolerating float-shaped integers. The second
// return is false for missing, null or non-numeric values.
func (r Row) Int64(key string) (int64, bool) {
	switch v := r[key].(type) {
	case int64:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// Float64 reads a numeric field as a float.
func (r Row) Float64(key string) (float64, bool) {
	switch v := r[key].(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// OptionalInt64 returns nil for missing or empty values.
func (r Row) OptionalInt64(key string) *int64 {
	if v, ok := r.Int64(key); ok {
		return &v
	}
	return nil
}

// OptionalString returns nil for missing or empty values.
func (r Row) OptionalString(key string) *string {
	s := strings.TrimSpace(r.String(key))
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
