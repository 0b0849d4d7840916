package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsMerge(t *testing.T) {
	base := Params{
		"loginProvider": "google",
		"mfaLevel":      "default",
	}

	merged := base.Merge(Params{
		"loginProvider": "github",
		"mfaLevel":      nil,
		"extraField":    42,
	})

	assert.Equal(t, "github", merged.GetString("loginProvider"))
	assert.NotContains(t, merged, "mfaLevel")
	assert.Equal(t, 42, merged["extraField"])

	// The receiver must stay untouched.
	assert.Equal(t, "google", base.GetString("loginProvider"))
	assert.Contains(t, base, "mfaLevel")
}

func TestParamsMergeNilReceiver(t *testing.T) {
	var base Params

	merged := base.Merge(Params{"loginProvider": "google"})

	assert.Equal(t, "google", merged.GetString("loginProvider"))
}

func TestParamsGetString(t *testing.T) {
	params := Params{
		"name":  "sigil",
		"count": 3,
	}

	assert.Equal(t, "sigil", params.GetString("name"))
	assert.Empty(t, params.GetString("count"), "non-string values read as absent")
	assert.Equal(t, "fallback", params.GetStringWithDefault("missing", "fallback"))

	var empty Params
	assert.Equal(t, "fallback", empty.GetStringWithDefault("anything", "fallback"))
}

func TestParamsSetKeyWithValue(t *testing.T) {
	var params Params
	params.SetKeyWithValue("requestId", "abc-123")

	assert.Equal(t, "abc-123", params.GetString("requestId"))
	assert.NotNil(t, params.AsMap())

	var untouched Params
	assert.NotNil(t, untouched.AsMap())
	assert.Empty(t, untouched.AsMap())
}
