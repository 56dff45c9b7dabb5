// Package clauses reads clause predictions produced by the external
// classifier service.
package clauses

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"unicode"
)

// Record is one clause prediction. Categories come from a fixed
// vocabulary plus a catch-all value; Text may repeat across records and
// is not guaranteed to appear verbatim on any page.
type Record struct {
	SequenceNumber int    `json:"clause_no"`
	Category       string `json:"category"`
	Text           string `json:"clause"`
}

// envelope is the classifier service's response wrapper.
type envelope struct {
	PredictedClauses []Record `json:"predicted_clauses"`
}

// Decode parses classifier output from r. Both a bare JSON array of
// records and the service envelope {"predicted_clauses": [...]} are
// accepted.
func Decode(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading clause records: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes parses classifier output from a byte slice.
func DecodeBytes(data []byte) ([]Record, error) {
	trimmed := bytes.TrimLeftFunc(data, unicode.IsSpace)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var recs []Record
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decoding clause records: %w", err)
		}
		return renumber(recs), nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding clause records: %w", err)
	}
	return renumber(env.PredictedClauses), nil
}

// Records without a sequence number take their position, the same
// fallback the classifier applies on its side.
func renumber(recs []Record) []Record {
	for i := range recs {
		if recs[i].SequenceNumber == 0 {
			recs[i].SequenceNumber = i + 1
		}
	}
	return recs
}
