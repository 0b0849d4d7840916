package models

// RequestTokenParam is the parameter name the client injects into every
// outbound request payload and expects echoed back on the redirect, so a
// response can be matched to the operation that launched it.
const RequestTokenParam = "requestId"

// OperationKind distinguishes the two request flows a redirect can
// resolve.
type OperationKind string

const (
	OperationLogin  OperationKind = "login"
	OperationLogout OperationKind = "logout"
)

// InitParams is the static client configuration carried in the init
// section of every request payload.
type InitParams struct {
	ClientID    string         `json:"clientId"`
	Network     Network        `json:"network"`
	RedirectURL string         `json:"redirectUrl,omitempty"`
	WhiteLabel  map[string]any `json:"whiteLabel,omitempty"`
	LoginConfig map[string]any `json:"loginConfig,omitempty"`
}

// Params is a free-form parameter bag for the params section of a request
// payload. A nil Params reads as empty.
type Params map[string]any

// Merge returns a new bag holding the receiver's entries overlaid with
// overrides. Keys whose override value is nil are dropped entirely.
func (p Params) Merge(overrides Params) Params {
	merged := make(Params, len(p)+len(overrides))
	for key, value := range p {
		merged[key] = value
	}
	for key, value := range overrides {
		if value == nil {
			delete(merged, key)
			continue
		}
		merged[key] = value
	}
	return merged
}

func (p Params) GetString(key string) string {
	return p.GetStringWithDefault(key, "")
}

func (p Params) GetStringWithDefault(key, fallback string) string {
	if p == nil {
		return fallback
	}
	if value, ok := p[key].(string); ok {
		return value
	}
	return fallback
}

func (p *Params) SetKeyWithValue(key string, value any) {
	if *p == nil {
		*p = make(Params)
	}
	(*p)[key] = value
}

// AsMap always returns a non-nil map so the bag marshals as {} rather
// than null.
func (p Params) AsMap() map[string]any {
	if p == nil {
		return map[string]any{}
	}
	return p
}
