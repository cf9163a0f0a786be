package app

import "github.com/bft-labs/telsend/internal/domain"

// Selector chooses a sender from a preference-ordered list. The host's
// capabilities are resolved into concrete senders once, when the Selector
// is built; Select only consults config and availability.
type Selector struct {
	beacon Sender
	fetch  Sender
	xhr    Sender
	legacy Sender

	// crossOriginXhr reports whether the host's xhr reaches other origins
	// natively. When false the xhr slot resolves to the legacy sender.
	crossOriginXhr bool
}

// SelectorConfig lists the senders a host provides. Nil entries are
// transports the host lacks.
type SelectorConfig struct {
	Beacon         Sender
	Fetch          Sender
	Xhr            Sender
	Legacy         Sender
	CrossOriginXhr bool
}

// NewSelector creates a selector over the given senders.
func NewSelector(cfg SelectorConfig) *Selector {
	return &Selector{
		beacon:         cfg.Beacon,
		fetch:          cfg.Fetch,
		xhr:            cfg.Xhr,
		legacy:         cfg.Legacy,
		crossOriginXhr: cfg.CrossOriginXhr,
	}
}

// Select returns the first transport in preference that is enabled by cfg
// and available in the host, or nil when none is.
func (s *Selector) Select(preference []domain.Transport, requiresSync bool, cfg domain.TransportConfig) Sender {
	for _, t := range preference {
		var candidate Sender
		switch t {
		case domain.TransportXhr:
			if cfg.DisableXhr {
				continue
			}
			if s.crossOriginXhr {
				candidate = s.xhr
			} else {
				candidate = s.legacy
			}
		case domain.TransportXDomain:
			if cfg.DisableXhr {
				continue
			}
			candidate = s.legacy
		case domain.TransportFetch:
			if requiresSync && cfg.DisableFetchKeepAlive {
				continue
			}
			candidate = s.fetch
		case domain.TransportBeacon:
			if (requiresSync && cfg.DisableBeaconSync) || (!requiresSync && cfg.DisableBeacon) {
				continue
			}
			candidate = s.beacon
		}
		if candidate != nil && candidate.Available(requiresSync) {
			return candidate
		}
	}
	return nil
}
