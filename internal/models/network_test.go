package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNetwork(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Network
		wantErr bool
	}{
		{name: "mainnet", input: "mainnet", want: NetworkMainnet},
		{name: "testnet", input: "testnet", want: NetworkTestnet},
		{name: "cyan", input: "cyan", want: NetworkCyan},
		{name: "unknown", input: "staging", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "case sensitive", input: "Mainnet", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNetwork(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNetworkEndpoints(t *testing.T) {
	assert.Equal(t, "https://auth.sigil.io", NetworkMainnet.GetAuthBaseUrl())
	assert.Equal(t, "https://session.sigil.io", NetworkMainnet.GetApiBaseUrl())

	assert.Equal(t, "https://auth.testnet.sigil.io", NetworkTestnet.GetAuthBaseUrl())
	assert.Equal(t, "https://session.testnet.sigil.io", NetworkTestnet.GetApiBaseUrl())

	assert.Equal(t, "https://auth.cyan.sigil.io", NetworkCyan.GetAuthBaseUrl())
	assert.Equal(t, "https://session.cyan.sigil.io", NetworkCyan.GetApiBaseUrl())
}
