package workout

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ErrMissingFields is returned when title, date or type is empty.
var ErrMissingFields = errors.New("missing fields (title/date/type)")

// Request is the payload for one workout session.
type Request struct {
	Title    string    `json:"title"`
	Date     string    `json:"date"`
	Type     string    `json:"type"`
	BodyPart BodyParts `json:"bodyPart"`
	Memo     Text      `json:"memo"`
	Sets     SetInputs `json:"sets"`
	Run      *RunInput `json:"run"`
}

// SetInput is one strength entry. Numeric fields are forwarded only when the
// caller sent a JSON number.
type SetInput struct {
	Exercise Text   `json:"exercise"`
	Weight   Number `json:"weight"`
	Reps     Number `json:"reps"`
	Sets     Number `json:"sets"`
}

// SetInputs is the strength set list. A non-array value decodes as empty.
type SetInputs []SetInput

func (s *SetInputs) UnmarshalJSON(data []byte) error {
	*s = nil
	if !isJSONKind(data, '[') {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(SetInputs, len(raw))
	for i, r := range raw {
		if err := out[i].UnmarshalJSON(r); err != nil {
			return err
		}
	}
	*s = out
	return nil
}

// UnmarshalJSON leaves the set empty for non-object values; an empty set
// has no exercise and is skipped.
func (s *SetInput) UnmarshalJSON(data []byte) error {
	*s = SetInput{}
	if !isJSONKind(data, '{') {
		return nil
	}
	type plain SetInput
	return json.Unmarshal(data, (*plain)(s))
}

// RunInput carries the cardio figures for a Run session.
type RunInput struct {
	DistanceKm Number `json:"distance_km"`
	TimeMin    Number `json:"time_min"`
	StartTime  Text   `json:"start_time"`
}

// UnmarshalJSON leaves the run empty for non-object values, which then
// carries no run data.
func (r *RunInput) UnmarshalJSON(data []byte) error {
	*r = RunInput{}
	if !isJSONKind(data, '{') {
		return nil
	}
	type plain RunInput
	return json.Unmarshal(data, (*plain)(r))
}

// isJSONKind reports whether a JSON value starts with the given delimiter.
func isJSONKind(data []byte, delim byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == delim
}

// Validate reports ErrMissingFields when a required field is empty.
func (r *Request) Validate() error {
	if r.Title == "" || r.Date == "" || r.Type == "" {
		return ErrMissingFields
	}
	return nil
}

func (r *RunInput) hasData() bool {
	if r == nil {
		return false
	}
	return r.DistanceKm.Truthy() || r.TimeMin.Truthy() || r.StartTime.Truthy()
}

// Number is a loosely typed numeric field. Valid is set only for JSON
// numbers within float64 range; other non-empty values still count as
// present.
type Number struct {
	Value float64
	Valid bool

	present bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	v, err := decodeLoose(data)
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(x.String(), 64)
		if err != nil {
			// Out of range: present (and non-zero) but not finite.
			n.present = true
			return nil
		}
		n.Value, n.Valid = f, true
	case string:
		n.present = x != ""
	case bool:
		n.present = x
	case nil:
	default:
		n.present = true
	}
	return nil
}

// Truthy reports whether the field held a non-zero, non-empty value.
func (n Number) Truthy() bool {
	return (n.Valid && n.Value != 0) || n.present
}

// Text is a loosely typed string field. Scalars are converted to their text
// form; zero, false, null, objects and arrays become empty. Objects and
// arrays still count as present.
type Text struct {
	Value string
	// IsString is set when the JSON value was a string.
	IsString bool

	present bool
}

func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text{}
	v, err := decodeLoose(data)
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		t.Value, t.IsString = x, true
	case json.Number:
		f, err := strconv.ParseFloat(x.String(), 64)
		switch {
		case err != nil:
			t.Value = x.String()
		case f != 0:
			t.Value = strconv.FormatFloat(f, 'f', -1, 64)
		}
	case bool:
		if x {
			t.Value = "true"
		}
	case map[string]any, []any:
		t.present = true
	}
	return nil
}

func (t Text) Truthy() bool { return t.Value != "" || t.present }

// BodyParts holds the raw body-part tokens. A string value is split on the
// delimiter set; list elements are kept whole.
type BodyParts []string

func (b *BodyParts) UnmarshalJSON(data []byte) error {
	*b = nil
	v, err := decodeLoose(data)
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		*b = splitBodyParts(x)
	case []any:
		out := make(BodyParts, 0, len(x))
		for _, item := range x {
			var t Text
			raw, err := json.Marshal(item)
			if err != nil {
				return err
			}
			if err := t.UnmarshalJSON(raw); err != nil {
				return err
			}
			out = append(out, t.Value)
		}
		*b = out
	case json.Number:
		var t Text
		if err := t.UnmarshalJSON(data); err != nil {
			return err
		}
		if t.Value != "" {
			*b = BodyParts{t.Value}
		}
	}
	return nil
}

// decodeLoose decodes any JSON value, keeping numbers as json.Number so
// out-of-range values do not fail the whole body.
func decodeLoose(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func splitBodyParts(s string) BodyParts {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ',', '/', '／', '｜', '|', '、':
			return true
		}
		return unicode.IsSpace(r)
	})
}
