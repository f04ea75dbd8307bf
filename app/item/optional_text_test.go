package item

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCreateItemRequest_DescriptionForms(t *testing.T) {
	var absent CreateItemRequest
	if err := json.Unmarshal([]byte(`{"name":"a","price":1}`), &absent); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if absent.Item().Description != "" {
		t.Fatalf("expected empty description, got %q", absent.Item().Description)
	}

	var present CreateItemRequest
	if err := json.Unmarshal([]byte(`{"name":"a","price":1,"description":"blue"}`), &present); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if present.Item().Description != "blue" {
		t.Fatalf("expected description blue, got %q", present.Item().Description)
	}
}

func TestCreateItemRequest_NullDescriptionRejected(t *testing.T) {
	var req CreateItemRequest
	err := json.Unmarshal([]byte(`{"name":"a","price":1,"description":null}`), &req)
	if !errors.Is(err, ErrNullText) {
		t.Fatalf("expected ErrNullText, got %v", err)
	}
}

func TestCreateItemRequest_NonStringDescriptionRejected(t *testing.T) {
	var req CreateItemRequest
	if err := json.Unmarshal([]byte(`{"name":"a","price":1,"description":5}`), &req); err == nil {
		t.Fatalf("expected error for numeric description")
	}
}
