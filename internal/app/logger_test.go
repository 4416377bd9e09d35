package app

import "testing"

func TestNewLogger(t *testing.T) {
	if NewLogger(&Config{LogFormat: "json"}) == nil {
		t.Fatal("json logger is nil")
	}
	if NewLogger(&Config{LogFormat: "pretty"}) == nil {
		t.Fatal("text logger is nil")
	}
	if NewLogger(nil) == nil {
		t.Fatal("nil config logger is nil")
	}
}
