package adapters

import (
	"fmt"

	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/ports"
)

// TransportSelector maps a session's transport to the matching uplink.
type TransportSelector struct {
	uplinks map[domain.Transport]ports.Uplink
}

func NewTransportSelector(httpUplink, amqpUplink ports.Uplink) *TransportSelector {
	uplinks := make(map[domain.Transport]ports.Uplink, 2)

	if httpUplink != nil {
		uplinks[domain.TransportHTTP] = httpUplink
	}

	if amqpUplink != nil {
		uplinks[domain.TransportAMQP] = amqpUplink
	}

	return &TransportSelector{uplinks: uplinks}
}

func (s *TransportSelector) Select(transport domain.Transport) (ports.Uplink, error) {
	uplink, ok := s.uplinks[transport]
	if !ok {
		return nil, fmt.Errorf("no uplink configured for transport %q", transport)
	}

	return uplink, nil
}
