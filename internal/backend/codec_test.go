package backend

import (
	"errors"
	"testing"
)

func TestExtractJSONHandlesFencesAndProse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"fence without language", "```\n[1,2]\n```", `[1,2]`, true},
		{"prose wrapped", `Here you go: {"a":1} hope it helps`, `{"a":1}`, true},
		{"array in prose", `the list: [1,2,3].`, `[1,2,3]`, true},
		{"no json", "sorry, I cannot do that", "", false},
		{"empty", "   ", "", false},
		{"broken braces", "{not json}", "", false},
	}
	for _, tc := range cases {
		got, ok := extractJSON(tc.in)
		if ok != tc.ok {
			t.Fatalf("%s: ok=%v, want %v", tc.name, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestDecodeJSONWrapsMalformed(t *testing.T) {
	var out struct {
		A int `json:"a"`
	}
	if err := decodeJSON(`{"a":1}`, &out); err != nil || out.A != 1 {
		t.Fatalf("decode: %v (a=%d)", err, out.A)
	}
	if err := decodeJSON("no payload here", &out); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if err := decodeJSON(`{"a":"not a number"}`, &out); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for type mismatch, got %v", err)
	}
}

func TestStringField(t *testing.T) {
	if got, ok := stringField(`{"research":"  findings  "}`, "research"); !ok || got != "findings" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
	if _, ok := stringField(`{"other":"x"}`, "research"); ok {
		t.Fatalf("missing field must not be ok")
	}
	if _, ok := stringField(`{"research":""}`, "research"); ok {
		t.Fatalf("empty value must not be ok")
	}
}

func TestParseIntentCompactShapes(t *testing.T) {
	intent, err := parseIntent(`{"navigate":2}`)
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if intent.Kind != IntentNavigate || intent.TargetStep != 2 {
		t.Fatalf("unexpected intent %+v", intent)
	}

	intent, err = parseIntent("```json\n{\"rerun\":\"use a bolder tone\"}\n```")
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if intent.Kind != IntentRerun || intent.Instructions != "use a bolder tone" {
		t.Fatalf("unexpected intent %+v", intent)
	}

	intent, err = parseIntent(`{"answer":"step 3 compares competitors"}`)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if intent.Kind != IntentAnswer || intent.Answer == "" {
		t.Fatalf("unexpected intent %+v", intent)
	}
}

func TestParseIntentExpandedShape(t *testing.T) {
	intent, err := parseIntent(`{"kind":"navigate","target_step":4}`)
	if err != nil {
		t.Fatalf("expanded: %v", err)
	}
	if intent.Kind != IntentNavigate || intent.TargetStep != 4 {
		t.Fatalf("unexpected intent %+v", intent)
	}

	if _, err := parseIntent(`{"kind":"teleport"}`); !errors.Is(err, ErrMalformed) {
		t.Fatalf("unknown kind must be malformed, got %v", err)
	}
	if _, err := parseIntent("just words"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("prose must be malformed, got %v", err)
	}
}
