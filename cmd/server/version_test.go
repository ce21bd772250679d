package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	if !strings.HasPrefix(out.String(), "coachapi "+Version) {
		t.Errorf("version output = %q, want prefix %q", out.String(), "coachapi "+Version)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	want := map[string]bool{"serve": false, "migrate": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestMigrateRejectsUnknownDirection(t *testing.T) {
	if err := migrateCmd.Args(migrateCmd, []string{"sideways"}); err == nil {
		t.Error("expected an error for an unknown migrate direction")
	}
	if err := migrateCmd.Args(migrateCmd, []string{"down"}); err != nil {
		t.Errorf("down should be accepted: %v", err)
	}
}
