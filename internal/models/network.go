package models

import "fmt"

// Network selects which deployment of the auth and session services the
// client talks to.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkCyan    Network = "cyan"
)

// ParseNetwork validates a user supplied network name.
func ParseNetwork(name string) (Network, error) {
	switch Network(name) {
	case NetworkMainnet, NetworkTestnet, NetworkCyan:
		return Network(name), nil
	}
	return "", fmt.Errorf("unknown network %q: expected mainnet, testnet or cyan", name)
}

// GetAuthBaseUrl returns the browser-facing login page origin for the
// network. Mainnet drops the environment label from the host.
func (n Network) GetAuthBaseUrl() string {
	if n == NetworkMainnet {
		return "https://auth.sigil.io"
	}
	return fmt.Sprintf("https://auth.%s.sigil.io", n)
}

// GetApiBaseUrl returns the session service origin for the network.
func (n Network) GetApiBaseUrl() string {
	if n == NetworkMainnet {
		return "https://session.sigil.io"
	}
	return fmt.Sprintf("https://session.%s.sigil.io", n)
}
