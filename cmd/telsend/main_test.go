package main

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bft-labs/telsend/internal/cliconfig"
)

func TestRun_RejectsUnparsedConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*cliconfig.Config)
		wantErr string
	}{
		{name: "bad header", modify: func(c *cliconfig.Config) { c.Headers = []string{"novalue"} }, wantErr: "invalid header"},
		{name: "bad transport", modify: func(c *cliconfig.Config) { c.Transports = []string{"pigeon"} }, wantErr: "pigeon"},
		{name: "bad mode", modify: func(c *cliconfig.Config) { c.Mode = "later" }, wantErr: "later"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := cliconfig.DefaultConfig()
			cfg.URL = "http://127.0.0.1:1/collect"
			tt.modify(&cfg)

			err := run(context.Background(), cfg, map[string]bool{}, "", 0, zerolog.New(io.Discard))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("run() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
