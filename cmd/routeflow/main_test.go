package main

import "testing"

func TestParseParams(t *testing.T) {
	params := parseParams([]string{"region=br", "mode=fast", "bad", "=empty"})
	if len(params) != 2 {
		t.Fatalf("params: %v", params)
	}
	if params["region"] != "br" || params["mode"] != "fast" {
		t.Fatalf("params: %v", params)
	}
}

func TestParseParamsEmpty(t *testing.T) {
	if parseParams(nil) != nil {
		t.Fatalf("expected nil for no params")
	}
}

func TestParseParamsValueWithEquals(t *testing.T) {
	params := parseParams([]string{"query=a=b"})
	if params["query"] != "a=b" {
		t.Fatalf("params: %v", params)
	}
}
