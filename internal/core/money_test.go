package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"5000", 500000, true},
		{"0", 0, true},
		{"12.344", 1234, true}, // third decimal rounds half-up
		{"12.345", 1235, true},
		{"", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: got %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error", tc.in)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	raw, err := json.Marshal(Money{Cents: 1234})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "12.34" {
		t.Fatalf("got %s, want 12.34", raw)
	}

	raw, _ = json.Marshal(Money{Cents: 500000})
	if string(raw) != "5000" {
		t.Fatalf("got %s, want 5000", raw)
	}

	var m Money
	if err := json.Unmarshal([]byte("5000"), &m); err != nil {
		t.Fatal(err)
	}
	if m.Cents != 500000 {
		t.Fatalf("got %d cents, want 500000", m.Cents)
	}

	if err := json.Unmarshal([]byte(`"nope"`), &m); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
}

func TestFormatColones(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{500000, "5 000"},
		{123456700, "1 234 567"},
		{45050, "450,5"},
		{1234, "12,34"},
		{0, "0"},
		{99900, "999"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).FormatColones(); got != tc.want {
			t.Fatalf("%d cents: got %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestCentsFromFloat(t *testing.T) {
	if got := CentsFromFloat(12.34); got != 1234 {
		t.Fatalf("got %d, want 1234", got)
	}
	if got := CentsFromFloat(5000); got != 500000 {
		t.Fatalf("got %d, want 500000", got)
	}
}
