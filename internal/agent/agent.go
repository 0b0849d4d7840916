// Package agent assembles the daemon from its parts: configuration,
// keystore, session manager and the local web service.
package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sigil-io/agent/internal/common"
	"github.com/sigil-io/agent/internal/config"
	"github.com/sigil-io/agent/internal/crypto"
	"github.com/sigil-io/agent/internal/daemon"
	"github.com/sigil-io/agent/internal/flow"
	"github.com/sigil-io/agent/internal/keystore"
	"github.com/sigil-io/agent/internal/provider"
	"github.com/sigil-io/agent/internal/sessions"
)

// StartWebService builds a session manager and starts the local web
// service around it.
func StartWebService(cfg *config.Config) (*daemon.Server, error) {

	manager, err := BuildManager(cfg, nil)
	if err != nil {
		return nil, err
	}

	server := daemon.NewServer(cfg, manager)

	if err := server.Start(); err != nil {
		return nil, err
	}

	return server, nil
}

// BuildManager wires the session manager from configuration. A nil
// launcher falls back to opening the system browser.
func BuildManager(cfg *config.Config, launcher sessions.Launcher) (*sessions.Manager, error) {

	controller, err := flow.NewController(cfg.GetAuthBaseUrl(), cfg.GetInitParams())
	if err != nil {
		return nil, err
	}

	api, err := provider.NewClient(cfg.GetApiBaseUrl(), cfg.GetProviderTimeout())
	if err != nil {
		return nil, err
	}

	store, err := buildKeystore(cfg)
	if err != nil {
		return nil, err
	}

	if launcher == nil {
		launcher = BrowserLauncher()
	}

	return sessions.NewManager(sessions.ManagerConfig{
		Flow:     controller,
		Store:    store,
		Provider: api,
		Launcher: launcher,
		Timeout:  cfg.GetProviderTimeout(),
	})
}

// LoadStatus reports the persisted session without starting the agent
// or touching the network. Authorization is a live property, so it is
// always reported false here.
func LoadStatus(cfg *config.Config) (sessions.Status, error) {

	store, err := buildKeystore(cfg)
	if err != nil {
		return sessions.Status{}, err
	}

	sessionID, err := store.Get(keystore.KeySessionID)
	if err != nil {
		return sessions.Status{}, err
	}
	if len(sessionID) == 0 {
		return sessions.Status{}, nil
	}

	keyPair, err := crypto.KeyPairFromSessionID(sessionID)
	if err != nil {
		return sessions.Status{}, err
	}

	return sessions.Status{
		Active:    true,
		PublicKey: keyPair.PublicKeyHex(),
	}, nil
}

func buildKeystore(cfg *config.Config) (keystore.Store, error) {

	if cfg.Keystore.Ephemeral {
		logrus.Debugln("Using an in-memory keystore, nothing will persist")
		return keystore.NewMemory(), nil
	}

	storePath := cfg.GetKeystorePath()

	passphrase := cfg.Keystore.Passphrase
	if len(passphrase) == 0 {
		generated, err := loadOrCreatePassphrase(storePath)
		if err != nil {
			return nil, err
		}
		passphrase = generated
	}

	return keystore.NewFile(storePath, passphrase)
}

// loadOrCreatePassphrase manages the generated passphrase kept alongside
// the keystore. Without it every restart would need an interactive
// prompt before the persisted session could be recovered.
func loadOrCreatePassphrase(storePath string) (string, error) {

	passPath := filepath.Join(filepath.Dir(storePath), "keystore.pass")

	existing, err := os.ReadFile(passPath)
	if err == nil {
		passphrase := strings.TrimSpace(string(existing))
		if len(passphrase) == 0 {
			return "", fmt.Errorf("passphrase file %s is empty", passPath)
		}
		return passphrase, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read the passphrase file: %w", err)
	}

	passphrase, err := common.GenerateSecureRandomString(48)
	if err != nil {
		return "", fmt.Errorf("failed to generate a keystore passphrase: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(passPath), 0700); err != nil {
		return "", fmt.Errorf("failed to create the keystore directory: %w", err)
	}
	if err := os.WriteFile(passPath, []byte(passphrase), 0600); err != nil {
		return "", fmt.Errorf("failed to write the passphrase file: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"path": passPath,
	}).Debugln("Generated a new keystore passphrase")

	return passphrase, nil
}
