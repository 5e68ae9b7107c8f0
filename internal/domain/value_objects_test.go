package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReportEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rawURL  string
		want    string
		wantErr bool
	}{
		{
			name:   "valid https URL",
			rawURL: "https://fleet.example.com/fixes",
			want:   "https://fleet.example.com/fixes",
		},
		{
			name:   "valid http URL",
			rawURL: "http://fleet.example.com/fixes",
			want:   "http://fleet.example.com/fixes",
		},
		{
			name:   "scheme and host are lowercased",
			rawURL: "HTTPS://Fleet.Example.COM/Fixes",
			want:   "https://fleet.example.com/Fixes",
		},
		{
			name:   "default port is stripped",
			rawURL: "https://fleet.example.com:443/fixes",
			want:   "https://fleet.example.com/fixes",
		},
		{
			name:   "fragment is dropped",
			rawURL: "https://fleet.example.com/fixes#section",
			want:   "https://fleet.example.com/fixes",
		},
		{
			name:    "empty URL",
			rawURL:  "   ",
			wantErr: true,
		},
		{
			name:    "missing scheme",
			rawURL:  "fleet.example.com/fixes",
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			rawURL:  "ftp://fleet.example.com/fixes",
			wantErr: true,
		},
		{
			name:    "missing host",
			rawURL:  "https:///fixes",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			endpoint, err := NewReportEndpoint(tt.rawURL)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, endpoint.String())
		})
	}
}
