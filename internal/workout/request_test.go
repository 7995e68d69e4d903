package workout

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

// TestRequestDecode verifies the loose field types accept the shapes
// webhook callers send.
func TestRequestDecode(t *testing.T) {
	body := `{
		"title": "Push",
		"date": "2024-03-02",
		"type": "gym",
		"bodyPart": ["Chest", "triceps", null],
		"sets": [
			{"exercise": "Bench Press", "weight": 80, "reps": "8", "sets": 3},
			{"exercise": 42},
			null
		],
		"run": {"distance_km": "5", "start_time": 7}
	}`

	var req Request
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}

	if want := (BodyParts{"Chest", "triceps", ""}); !reflect.DeepEqual(req.BodyPart, want) {
		t.Errorf("bodyPart = %v, want %v", req.BodyPart, want)
	}
	if len(req.Sets) != 3 {
		t.Fatalf("got %d sets, want 3", len(req.Sets))
	}

	s := req.Sets[0]
	if !s.Weight.Valid || s.Weight.Value != 80 {
		t.Errorf("weight = %+v, want valid 80", s.Weight)
	}
	if s.Reps.Valid {
		t.Errorf("string reps should not be a valid number")
	}
	if !s.Reps.Truthy() {
		t.Errorf("string reps should still be truthy")
	}
	if req.Sets[1].Exercise.Value != "42" {
		t.Errorf("numeric exercise = %q, want 42", req.Sets[1].Exercise.Value)
	}
	if req.Sets[2].Exercise.Truthy() {
		t.Errorf("null set should have no exercise")
	}

	if !req.Run.hasData() {
		t.Errorf("run with string distance should count as present")
	}
	if req.Run.StartTime.IsString {
		t.Errorf("numeric start_time should not be a string label")
	}
}

// TestBodyPartsString verifies a string value is split on delimiters.
func TestBodyPartsString(t *testing.T) {
	var b BodyParts
	if err := json.Unmarshal([]byte(`"chest, back／legs"`), &b); err != nil {
		t.Fatal(err)
	}
	if want := (BodyParts{"chest", "back", "legs"}); !reflect.DeepEqual(b, want) {
		t.Errorf("got %v, want %v", b, want)
	}
}

// TestRequestValidate verifies the three required fields.
func TestRequestValidate(t *testing.T) {
	valid := Request{Title: "t", Date: "2024-01-01", Type: "run"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request: %v", err)
	}

	for _, r := range []Request{
		{Date: "2024-01-01", Type: "run"},
		{Title: "t", Type: "run"},
		{Title: "t", Date: "2024-01-01"},
	} {
		if err := r.Validate(); !errors.Is(err, ErrMissingFields) {
			t.Errorf("Validate(%+v) = %v, want ErrMissingFields", r, err)
		}
	}
}

// TestRunHasData verifies zero and empty values do not trigger a cardio set.
func TestRunHasData(t *testing.T) {
	var nilRun *RunInput
	if nilRun.hasData() {
		t.Error("nil run should have no data")
	}

	var run RunInput
	if err := json.Unmarshal([]byte(`{"distance_km":0,"time_min":null,"start_time":""}`), &run); err != nil {
		t.Fatal(err)
	}
	if run.hasData() {
		t.Error("zero/empty run should have no data")
	}

	if err := json.Unmarshal([]byte(`{"time_min":32.5}`), &run); err != nil {
		t.Fatal(err)
	}
	if !run.hasData() {
		t.Error("run with time should have data")
	}
}

// TestRequestDecodeUnexpectedShapes verifies well-formed JSON with odd
// optional-field types decodes instead of failing the whole body.
func TestRequestDecodeUnexpectedShapes(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		check func(t *testing.T, req Request)
	}{
		{"sets object", `{"sets":{}}`, func(t *testing.T, req Request) {
			if len(req.Sets) != 0 {
				t.Errorf("sets = %v, want empty", req.Sets)
			}
		}},
		{"sets string", `{"sets":"none"}`, func(t *testing.T, req Request) {
			if len(req.Sets) != 0 {
				t.Errorf("sets = %v, want empty", req.Sets)
			}
		}},
		{"sets mixed elements", `{"sets":["Squat",{"exercise":"Bench"},null,7]}`, func(t *testing.T, req Request) {
			if len(req.Sets) != 4 {
				t.Fatalf("got %d sets, want 4", len(req.Sets))
			}
			if req.Sets[0].Exercise.Truthy() || req.Sets[2].Exercise.Truthy() || req.Sets[3].Exercise.Truthy() {
				t.Errorf("non-object sets should be empty: %+v", req.Sets)
			}
			if req.Sets[1].Exercise.Value != "Bench" {
				t.Errorf("exercise = %q, want Bench", req.Sets[1].Exercise.Value)
			}
		}},
		{"run string", `{"run":"5k"}`, func(t *testing.T, req Request) {
			if req.Run.hasData() {
				t.Errorf("run = %+v, want no data", req.Run)
			}
		}},
		{"memo number", `{"memo":5}`, func(t *testing.T, req Request) {
			if req.Memo.Value != "5" {
				t.Errorf("memo = %q, want 5", req.Memo.Value)
			}
		}},
		{"weight out of range", `{"sets":[{"exercise":"Squat","weight":1e400}]}`, func(t *testing.T, req Request) {
			w := req.Sets[0].Weight
			if w.Valid {
				t.Errorf("weight should not be forwarded: %+v", w)
			}
			if !w.Truthy() {
				t.Error("out-of-range weight should still count as present")
			}
		}},
		{"start time object", `{"run":{"start_time":{}}}`, func(t *testing.T, req Request) {
			if !req.Run.hasData() {
				t.Error("object start_time should count as run data")
			}
			if req.Run.StartTime.IsString {
				t.Error("object start_time should not be a string")
			}
		}},
		{"body part out of range", `{"bodyPart":1e400}`, func(t *testing.T, req Request) {
			if len(req.BodyPart) != 1 {
				t.Errorf("bodyPart = %v, want one token", req.BodyPart)
			}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req Request
			if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
				t.Fatalf("decode %s: %v", tc.body, err)
			}
			tc.check(t, req)
		})
	}
}
