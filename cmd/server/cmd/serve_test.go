package cmd

import (
	"strings"
	"testing"
)

func TestServeRejectsUnknownService(t *testing.T) {
	err := runService("billing")
	if err == nil {
		t.Fatal("expected an error for an unknown service name")
	}
	if !strings.Contains(err.Error(), "unknown service") {
		t.Errorf("expected unknown-service error, got: %v", err)
	}
}

func TestKnownServiceNames(t *testing.T) {
	for _, name := range []string{"register", "auth", "contest", "clock", "score", "mail", "read"} {
		if !isKnownService(name) {
			t.Errorf("expected %q to be a known service", name)
		}
	}
	if isKnownService("") {
		t.Error("empty name must not be a known service")
	}
}
