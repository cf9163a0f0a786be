package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bft-labs/telsend/internal/ports"
	pkglog "github.com/bft-labs/telsend/pkg/log"
)

// New returns a console zerolog logger writing to w at the named level.
// "off" or "none" returns a logger that discards everything.
func New(level string, w io.Writer) (ports.Logger, error) {
	switch strings.ToLower(level) {
	case "off", "none":
		return pkglog.NewNoopLogger(), nil
	case "":
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	return pkglog.NewZerologAdapter(w, lvl), nil
}
