package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "portal version "+Version) {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestServeCommand_Flags(t *testing.T) {
	cmd := serveCmd()
	f := cmd.Flags().Lookup("env-file")
	if f == nil || f.DefValue != ".env" {
		t.Fatalf("env-file flag missing or wrong default: %+v", f)
	}
}
