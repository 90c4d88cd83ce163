package models

import (
	"encoding/json"
	"testing"
)

func TestLooseNumberAcceptsNumberAndString(t *testing.T) {
	var req AddMealRequest

	if err := json.Unmarshal([]byte(`{"name":"Lunch","kcal":350,"protein":"25"}`), &req); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if req.Kcal.String() != "350" {
		t.Errorf("expected kcal 350, got %q", req.Kcal)
	}
	if req.Protein.String() != "25" {
		t.Errorf("expected protein 25, got %q", req.Protein)
	}
}

func TestLooseNumberNull(t *testing.T) {
	var n LooseNumber
	if err := json.Unmarshal([]byte(`null`), &n); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if n.String() != "" {
		t.Errorf("expected empty value for null, got %q", n)
	}
}

func TestLooseNumberRejectsObjects(t *testing.T) {
	var n LooseNumber
	if err := json.Unmarshal([]byte(`{"v":1}`), &n); err == nil {
		t.Error("expected an error for object input")
	}
}
