// Package sessions orchestrates the login lifecycle: launching browser
// requests, matching redirects back to the operations that started them,
// deriving session keys, and keeping share authorization fresh.
package sessions

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sigil-io/agent/internal/codec"
	"github.com/sigil-io/agent/internal/crypto"
	"github.com/sigil-io/agent/internal/flow"
	"github.com/sigil-io/agent/internal/keystore"
	"github.com/sigil-io/agent/internal/models"
)

const defaultProviderTimeout = 30 * time.Second

// Launcher delivers a request URL to the user, normally by opening the
// system browser.
type Launcher interface {
	OpenURL(url string) error
}

// LauncherFunc adapts a plain function to the Launcher interface.
type LauncherFunc func(url string) error

func (f LauncherFunc) OpenURL(url string) error {
	return f(url)
}

// ProviderAPI is the slice of the session service the manager needs.
type ProviderAPI interface {
	AuthorizeSession(ctx context.Context, publicKeyHex string) (*models.ShareMetadata, error)
	Logout(ctx context.Context, request models.LogoutRequest) error
}

// Status is a snapshot of the manager for status commands and the local
// status endpoint.
type Status struct {
	Active     bool   `json:"active"`
	Authorized bool   `json:"authorized"`
	PublicKey  string `json:"publicKey,omitempty"`
}

type ManagerConfig struct {
	Flow     *flow.Controller
	Store    keystore.Store
	Provider ProviderAPI
	Launcher Launcher

	// Timeout bounds background calls against the session service.
	Timeout time.Duration
}

// Manager owns the session state machine. All exported methods are safe
// for concurrent use.
type Manager struct {
	mu sync.Mutex

	flow     *flow.Controller
	store    keystore.Store
	api      ProviderAPI
	launcher Launcher
	timeout  time.Duration

	pending *registry

	current    *models.AuthResponse
	keyPair    *crypto.SessionKeyPair
	share      []byte
	authorized bool

	background sync.WaitGroup
}

func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Flow == nil {
		return nil, fmt.Errorf("flow controller is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("keystore is required")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider client is required")
	}

	launcher := cfg.Launcher
	if launcher == nil {
		launcher = LauncherFunc(func(string) error {
			return fmt.Errorf("no browser launcher configured")
		})
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	manager := &Manager{
		flow:     cfg.Flow,
		store:    cfg.Store,
		api:      cfg.Provider,
		launcher: launcher,
		timeout:  timeout,
		pending:  newRegistry(),
	}
	manager.restore()
	return manager, nil
}

// restore picks up a persisted session on startup and refreshes its
// authorization in the background.
func (m *Manager) restore() {
	sessionID, err := m.store.Get(keystore.KeySessionID)
	if err != nil {
		logrus.WithError(err).Warnln("Failed to read the persisted session")
		return
	}
	if len(sessionID) == 0 {
		return
	}

	keyPair, err := crypto.KeyPairFromSessionID(sessionID)
	if err != nil {
		logrus.WithError(err).Warnln("Persisted session identifier is unusable")
		return
	}

	m.mu.Lock()
	m.keyPair = keyPair
	m.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"publicKey": keyPair.PublicKeyHex(),
	}).Debugln("Restored persisted session")

	m.spawnAuthorize(keyPair)
}

// Login launches a browser login and returns the pending operation. The
// result arrives through HandleRedirect; callers block on Await.
func (m *Manager) Login(ctx context.Context, params models.Params) (*Operation[*models.AuthResponse], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	op := m.pending.beginLogin()

	tracking := models.Params{}
	tracking.SetKeyWithValue(models.RequestTokenParam, op.Token())

	requestURL, err := m.flow.BuildRequestUrl(flow.PathLogin, params, tracking)
	if err != nil {
		m.pending.resolveLogin(op.Token(), nil, err)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"requestId": op.Token(),
	}).Debugln("Launching login request")

	if err := m.launcher.OpenURL(requestURL); err != nil {
		launchErr := fmt.Errorf("failed to open the login url: %w", err)
		m.pending.resolveLogin(op.Token(), nil, launchErr)
		return nil, launchErr
	}

	return op, nil
}

// Logout launches a browser logout and fires the service-side teardown
// alongside it. Teardown is best effort; the browser acknowledgement is
// the result callers wait on.
func (m *Manager) Logout(ctx context.Context, params models.Params) (*Operation[struct{}], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	op := m.pending.beginLogout()

	m.background.Add(1)
	go func() {
		defer m.background.Done()

		teardownCtx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		if err := m.sessionTeardown(teardownCtx); err != nil {
			logrus.WithError(err).Warnln("Session teardown request failed")
		}
	}()

	tracking := models.Params{}
	tracking.SetKeyWithValue(models.RequestTokenParam, op.Token())

	requestURL, err := m.flow.BuildRequestUrl(flow.PathLogout, params, tracking)
	if err != nil {
		m.pending.resolveLogout(op.Token(), err)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"requestId": op.Token(),
	}).Debugln("Launching logout request")

	if err := m.launcher.OpenURL(requestURL); err != nil {
		launchErr := fmt.Errorf("failed to open the logout url: %w", err)
		m.pending.resolveLogout(op.Token(), launchErr)
		return nil, launchErr
	}

	return op, nil
}

// HandleRedirect consumes a redirect URL captured from the browser,
// updates session state and resolves the operation the redirect belongs
// to. A delivered session identifier is persisted before anything
// resolves, whatever the outcome; a logout acknowledgement may re-key
// the store for the next login.
func (m *Manager) HandleRedirect(rawURL string) (*flow.Outcome, error) {
	outcome, err := m.flow.ParseRedirect(rawURL)
	if err != nil {
		if !m.pending.resolveError("", err) {
			logrus.WithError(err).Warnln("Redirect failed with no operation awaiting it")
		}
		return nil, err
	}

	response := outcome.Response
	token := response.RequestID

	if len(response.SessionID) > 0 {
		if err := m.store.Set(keystore.KeySessionID, response.SessionID); err != nil {
			logrus.WithError(err).Warnln("Failed to persist the session identifier")
		}
	}

	if outcome.Err != nil {
		if !m.pending.resolveError(token, outcome.Err) {
			logrus.WithError(outcome.Err).Warnln("Provider error with no operation awaiting it")
		}
		return outcome, nil
	}

	switch outcome.Kind {
	case models.OperationLogout:
		m.completeLogout()
		if !m.pending.resolveLogout(token, nil) {
			logrus.Warnln("Logout acknowledged with no operation awaiting it")
		}
	default:
		if err := m.completeLogin(response); err != nil {
			m.pending.resolveError(token, err)
			return nil, err
		}
		if !m.pending.resolveLogin(token, response, nil) {
			logrus.Warnln("Login completed with no operation awaiting it")
		}
	}

	return outcome, nil
}

// completeLogin installs the delivered session. The session identifier,
// not the caller-facing key payload, is the scalar the session keys are
// recovered from.
func (m *Manager) completeLogin(response *models.AuthResponse) error {
	var keyPair *crypto.SessionKeyPair
	if len(response.SessionID) > 0 {
		recovered, err := crypto.KeyPairFromSessionID(response.SessionID)
		if err != nil {
			return err
		}
		keyPair = recovered
	}

	m.mu.Lock()
	m.current = response
	m.keyPair = keyPair
	m.share = nil
	m.authorized = false
	m.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"requestId": response.RequestID,
	}).Debugln("Login completed")

	if keyPair != nil {
		m.spawnAuthorize(keyPair)
	}
	return nil
}

func (m *Manager) completeLogout() {
	m.mu.Lock()
	m.current = nil
	m.keyPair = nil
	m.share = nil
	m.authorized = false
	m.mu.Unlock()

	logrus.Debugln("Session state cleared")
}

// AuthorizeSession fetches and opens the share held for the active
// session.
func (m *Manager) AuthorizeSession(ctx context.Context) error {
	m.mu.Lock()
	keyPair := m.keyPair
	m.mu.Unlock()

	if keyPair == nil {
		return models.ErrNoSession
	}
	return m.authorize(ctx, keyPair)
}

func (m *Manager) spawnAuthorize(keyPair *crypto.SessionKeyPair) {
	m.background.Add(1)
	go func() {
		defer m.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		if err := m.authorize(ctx, keyPair); err != nil {
			logrus.WithError(err).Warnln("Session authorization failed")
		}
	}()
}

func (m *Manager) authorize(ctx context.Context, keyPair *crypto.SessionKeyPair) error {
	meta, err := m.api.AuthorizeSession(ctx, keyPair.PublicKeyHex())
	if err != nil {
		return err
	}

	peer, err := crypto.ParsePublicKeyHex(meta.EphemeralPublicKey)
	if err != nil {
		return err
	}
	iv, err := codec.DecodeHex(meta.IV)
	if err != nil {
		return fmt.Errorf("share iv: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(meta.Ciphertext)
	if err != nil {
		return fmt.Errorf("share ciphertext: %w", models.ErrMalformedEncoding)
	}

	// TODO confirm the share payload encoding with the provider before
	// wiring reconstruction; until then the decrypted share is only held.
	share, err := crypto.DecryptCBC(keyPair.DeriveSharedKey(peer), iv, ciphertext)
	if err != nil {
		return err
	}

	// The envelope is persisted so teardown requests can be sealed and
	// signed after a restart.
	if err := m.store.Set(keystore.KeyEphemeralPublicKey, meta.EphemeralPublicKey); err != nil {
		return err
	}
	if err := m.store.Set(keystore.KeyIV, meta.IV); err != nil {
		return err
	}

	m.mu.Lock()
	if m.keyPair == keyPair {
		m.share = share
		m.authorized = true
	}
	m.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"publicKey": keyPair.PublicKeyHex(),
	}).Debugln("Session authorized")
	return nil
}

// sessionTeardown posts the signed, sealed invalidation request for the
// active session.
func (m *Manager) sessionTeardown(ctx context.Context) error {
	m.mu.Lock()
	keyPair := m.keyPair
	current := m.current
	m.mu.Unlock()

	if keyPair == nil {
		return models.ErrNoSession
	}

	ephemeralKey, err := m.store.Get(keystore.KeyEphemeralPublicKey)
	if err != nil {
		return err
	}
	ivHex, err := m.store.Get(keystore.KeyIV)
	if err != nil {
		return err
	}
	if len(ephemeralKey) == 0 || len(ivHex) == 0 {
		return fmt.Errorf("no authorization envelope stored, cannot seal the teardown request")
	}

	peer, err := crypto.ParsePublicKeyHex(ephemeralKey)
	if err != nil {
		return err
	}
	iv, err := codec.DecodeHex(ivHex)
	if err != nil {
		return err
	}

	if current == nil {
		current = &models.AuthResponse{}
	}
	body, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to encode the teardown payload: %w", err)
	}

	r, s := keyPair.SignDigest(crypto.Hash256(body))
	signature, err := crypto.TransportSignature(crypto.SignatureBlob(r, s))
	if err != nil {
		return err
	}

	sealed, err := crypto.EncryptCBC(keyPair.DeriveSharedKey(peer), iv, body)
	if err != nil {
		return err
	}

	return m.api.Logout(ctx, models.LogoutRequest{
		Key:       keyPair.PublicKeyHex(),
		Data:      base64.StdEncoding.EncodeToString(sealed),
		Signature: signature,
		Timeout:   0,
	})
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := Status{Authorized: m.authorized}
	if m.keyPair != nil {
		status.Active = true
		status.PublicKey = m.keyPair.PublicKeyHex()
	}
	return status
}

// Wait blocks until in-flight background requests finish. Used on
// shutdown and in tests.
func (m *Manager) Wait() {
	m.background.Wait()
}
