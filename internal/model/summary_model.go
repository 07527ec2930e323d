package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Summary holds the server-computed statistics of one upload.
type Summary struct {
	TotalCount       int              `json:"total_count"`
	AvgFlowrate      float64          `json:"avg_flowrate"`
	AvgPressure      float64          `json:"avg_pressure"`
	AvgTemperature   float64          `json:"avg_temperature"`
	TypeDistribution TypeDistribution `json:"type_distribution"`
}

type TypeCount struct {
	Type  string
	Count int
}

// TypeDistribution is a type-name -> count mapping that keeps the key order
// of the JSON object it was decoded from.
type TypeDistribution []TypeCount

func (d TypeDistribution) Len() int {
	return len(d)
}

func (d TypeDistribution) Clone() TypeDistribution {
	if d == nil {
		return nil
	}
	out := make(TypeDistribution, len(d))
	copy(out, d)
	return out
}

func (d *TypeDistribution) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("type_distribution: %w", err)
	}
	if tok == nil {
		*d = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("type_distribution: expected object, got %v", tok)
	}

	out := TypeDistribution{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("type_distribution: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("type_distribution: unexpected key %v", keyTok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("type_distribution[%s]: %w", key, err)
		}
		out = append(out, TypeCount{Type: key, Count: count})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("type_distribution: %w", err)
	}

	*d = out
	return nil
}

func (d TypeDistribution) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, tc := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(tc.Type)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(tc.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
