package models

import (
	"encoding/json"
	"testing"
)

func TestRateValid(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"0.0001", true},
		{"0.1000", true},
		{"1", true},
		{"0", false},
		{"-0.1", false},
		{"1.0001", false},
	}
	for _, tc := range cases {
		r, err := NewRateFromString(tc.input)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.input, err)
		}
		if r.Valid() != tc.want {
			t.Errorf("Valid(%q) want %v got %v", tc.input, tc.want, r.Valid())
		}
	}
}

func TestRateApplyFloorTruncates(t *testing.T) {
	cases := []struct {
		rate   string
		amount int64
		want   int64
	}{
		{"0.10", 999, 99},
		{"0.10", 1000, 100},
		{"0.05", 1999, 99},
		{"0.0833", 100, 8},
		{"1", 12345, 12345},
		{"0.10", 0, 0},
	}
	for _, tc := range cases {
		r, err := NewRateFromString(tc.rate)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.rate, err)
		}
		if got := r.ApplyFloor(tc.amount); got != tc.want {
			t.Errorf("ApplyFloor(%s, %d) want %d got %d", tc.rate, tc.amount, tc.want, got)
		}
	}
}

func TestRateStringAndJSON(t *testing.T) {
	r, err := NewRateFromString("0.25")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if r.String() != "0.2500" {
		t.Errorf("String() want 0.2500 got %s", r.String())
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"0.2500"` {
		t.Errorf("marshal want %q got %s", `"0.2500"`, data)
	}

	var fromString Rate
	if err := json.Unmarshal([]byte(`"0.0833"`), &fromString); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if fromString.String() != "0.0833" {
		t.Errorf("unmarshal string want 0.0833 got %s", fromString.String())
	}

	var fromNumber Rate
	if err := json.Unmarshal([]byte(`0.05`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if fromNumber.String() != "0.0500" {
		t.Errorf("unmarshal number want 0.0500 got %s", fromNumber.String())
	}
}

func TestRateRoundsToFourDecimals(t *testing.T) {
	r, err := NewRateFromString("0.123456")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if r.String() != "0.1235" {
		t.Errorf("want 0.1235 got %s", r.String())
	}
}
