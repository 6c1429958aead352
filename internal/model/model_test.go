package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEventTypeIsValid(t *testing.T) {
	for _, et := range []EventType{EventCreated, EventModified, EventRestored} {
		if !et.IsValid() {
			t.Errorf("%q should be valid", et)
		}
	}
	for _, et := range []EventType{"", "deleted", "CREATED"} {
		if et.IsValid() {
			t.Errorf("%q should be invalid", et)
		}
	}
}

func TestSubscriptionMatches(t *testing.T) {
	wildcard := &Subscription{UserID: "u1"}
	for _, et := range []EventType{EventCreated, EventModified, EventRestored} {
		if !wildcard.Matches(et) {
			t.Errorf("empty set should match %q", et)
		}
	}

	scoped := &Subscription{UserID: "u1", EventTypes: []EventType{EventModified}}
	if !scoped.Matches(EventModified) {
		t.Error("should match modified")
	}
	if scoped.Matches(EventCreated) {
		t.Error("should not match created")
	}
}

func TestValidateName(t *testing.T) {
	for _, tc := range []struct {
		name  string
		valid bool
	}{
		{"db-config", true},
		{"My Config 1.2_beta", true},
		{"  padded  ", true},
		{"", false},
		{"   ", false},
		{strings.Repeat("a", 255), true},
		{strings.Repeat("a", 256), false},
		{"bad/name", false},
		{"name!", false},
	} {
		err := ValidateName(tc.name)
		if tc.valid && err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", tc.name, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("ValidateName(%q) = nil, want error", tc.name)
		}
	}
}

func TestValidateData(t *testing.T) {
	if err := ValidateData(json.RawMessage(`{"x":1}`)); err != nil {
		t.Errorf("valid JSON rejected: %v", err)
	}
	if err := ValidateData(nil); err == nil {
		t.Error("empty data accepted")
	}
	if err := ValidateData(json.RawMessage(`{not json`)); err == nil {
		t.Error("malformed JSON accepted")
	}

	big := make([]byte, MaxDataBytes+1)
	for i := range big {
		big[i] = 'a'
	}
	big[0] = '"'
	big[len(big)-1] = '"'
	if err := ValidateData(big); err == nil {
		t.Error("oversized data accepted")
	}
}

func TestPageNormalize(t *testing.T) {
	for _, tc := range []struct {
		in, want Page
	}{
		{Page{}, Page{Number: 1, Size: DefaultPageSize}},
		{Page{Number: -3, Size: 0}, Page{Number: 1, Size: DefaultPageSize}},
		{Page{Number: 2, Size: 50}, Page{Number: 2, Size: 50}},
		{Page{Number: 1, Size: 5000}, Page{Number: 1, Size: MaxPageSize}},
	} {
		if got := tc.in.Normalize(); got != tc.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}

	p := Page{Number: 3, Size: 20}
	if p.Limit() != 20 || p.Offset() != 40 {
		t.Errorf("got limit=%d offset=%d", p.Limit(), p.Offset())
	}
}
