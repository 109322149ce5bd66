package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "proofkit" {
		t.Errorf("expected Use to be 'proofkit', got %s", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	for _, expected := range []string{"version", "typegen"} {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == expected {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected command %s to be registered", expected)
		}
	}
}

func TestTypegenSubcommands(t *testing.T) {
	cmd := NewTypegenCommand()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, expected := range []string{"init", "watch"} {
		if !names[expected] {
			t.Errorf("expected typegen subcommand %s to be registered", expected)
		}
	}

	for _, flag := range []string{"config", "dir", "verbose"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected persistent flag --%s", flag)
		}
	}
	for _, flag := range []string{"check", "json"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected flag --%s", flag)
		}
	}
}

func TestNewVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	BuildDate = "2025-01-01"
	GoVersion = "go1.23"

	cmd := NewVersionCommand()
	if cmd.Use != "version" {
		t.Errorf("expected Use to be 'version', got %s", cmd.Use)
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, []string{})

	for _, want := range []string{"ProofKit version: 1.0.0-test", "Git commit: abc123", "Go version: go1.23"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out.String())
		}
	}
}
