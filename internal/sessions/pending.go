package sessions

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sigil-io/agent/internal/models"
)

// Operation is a single-resolution future for one browser round trip.
// The launcher holds it while the user works through the provider pages;
// the redirect handler resolves it from another goroutine.
type Operation[T any] struct {
	token string
	kind  models.OperationKind

	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func newOperation[T any](kind models.OperationKind) *Operation[T] {
	return &Operation[T]{
		token: uuid.NewString(),
		kind:  kind,
		done:  make(chan struct{}),
	}
}

// Token is the request identifier injected into the outbound payload and
// expected back on the redirect.
func (o *Operation[T]) Token() string {
	return o.token
}

func (o *Operation[T]) Kind() models.OperationKind {
	return o.kind
}

// resolve records the result. Only the first call counts; a duplicate
// redirect cannot overwrite a delivered result.
func (o *Operation[T]) resolve(value T, err error) {
	o.once.Do(func() {
		o.value = value
		o.err = err
		close(o.done)
	})
}

// Await blocks until the operation resolves or ctx ends. Multiple callers
// may await the same operation; all observe the same result.
func (o *Operation[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-o.done:
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done exposes the resolution signal for select loops.
func (o *Operation[T]) Done() <-chan struct{} {
	return o.done
}

// registry tracks unresolved operations by token. A redirect carrying the
// echoed token resolves exactly the operation that launched it; a
// redirect without a recognizable token falls back to the most recently
// launched operation of the matching kind, so a provider that drops the
// request id cannot strand the flow.
type registry struct {
	mu           sync.Mutex
	logins       map[string]*Operation[*models.AuthResponse]
	logouts      map[string]*Operation[struct{}]
	latestLogin  string
	latestLogout string
}

func newRegistry() *registry {
	return &registry{
		logins:  make(map[string]*Operation[*models.AuthResponse]),
		logouts: make(map[string]*Operation[struct{}]),
	}
}

func (r *registry) beginLogin() *Operation[*models.AuthResponse] {
	op := newOperation[*models.AuthResponse](models.OperationLogin)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins[op.token] = op
	r.latestLogin = op.token
	return op
}

func (r *registry) beginLogout() *Operation[struct{}] {
	op := newOperation[struct{}](models.OperationLogout)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.logouts[op.token] = op
	r.latestLogout = op.token
	return op
}

func (r *registry) popLogin(token string, useLatest bool) *Operation[*models.AuthResponse] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return pop(r.logins, &r.latestLogin, token, useLatest)
}

func (r *registry) popLogout(token string, useLatest bool) *Operation[struct{}] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return pop(r.logouts, &r.latestLogout, token, useLatest)
}

// resolveLogin delivers a login result to the operation matching token,
// or to the latest login when the token is absent or unknown. Reports
// whether any operation was waiting.
func (r *registry) resolveLogin(token string, response *models.AuthResponse, err error) bool {
	op := r.popLogin(token, false)
	if op == nil {
		op = r.popLogin("", true)
	}
	if op == nil {
		return false
	}
	op.resolve(response, err)
	return true
}

func (r *registry) resolveLogout(token string, err error) bool {
	op := r.popLogout(token, false)
	if op == nil {
		op = r.popLogout("", true)
	}
	if op == nil {
		return false
	}
	op.resolve(struct{}{}, err)
	return true
}

// resolveError fails whichever operation the redirect belonged to: exact
// token match of either kind first, then the latest login, then the
// latest logout.
func (r *registry) resolveError(token string, failure error) bool {
	if op := r.popLogin(token, false); op != nil {
		op.resolve(nil, failure)
		return true
	}
	if op := r.popLogout(token, false); op != nil {
		op.resolve(struct{}{}, failure)
		return true
	}
	if op := r.popLogin("", true); op != nil {
		op.resolve(nil, failure)
		return true
	}
	if op := r.popLogout("", true); op != nil {
		op.resolve(struct{}{}, failure)
		return true
	}
	return false
}

// pop removes the operation for token, or for *latest when useLatest is
// set. Caller holds the registry lock.
func pop[T any](ops map[string]*Operation[T], latest *string, token string, useLatest bool) *Operation[T] {
	if useLatest {
		token = *latest
	}

	op, ok := ops[token]
	if !ok {
		return nil
	}

	delete(ops, token)
	if *latest == token {
		*latest = ""
	}
	return op
}
