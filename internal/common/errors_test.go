package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name            string
		originalError   error
		message         string
		expectedMessage string
	}{
		{
			name:            "wrap simple error",
			originalError:   errors.New("original error"),
			message:         "wrapper message",
			expectedMessage: "wrapper message: original error",
		},
		{
			name:            "empty wrapper message",
			originalError:   errors.New("original error"),
			message:         "",
			expectedMessage: ": original error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrappedError := WrapError(tt.originalError, tt.message)
			require.Error(t, wrappedError)
			assert.Equal(t, tt.expectedMessage, wrappedError.Error())
			assert.ErrorIs(t, wrappedError, tt.originalError)
		})
	}

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, WrapError(nil, "ignored"))
		assert.NoError(t, WrapErrorf(nil, "ignored %d", 1))
	})
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("monitor_config", "clipboard_interval", "must be positive")

	assert.Equal(t, "configuration error in section 'monitor_config', field 'clipboard_interval': must be positive", err.Error())
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Equal(t, "configuration error: broken", NewConfigurationError("", "", "broken").Error())
	assert.Equal(t, "configuration error in field 'Mode': failed rule 'required'", NewConfigurationError("", "Mode", "failed rule 'required'").Error())
}

func TestPathError(t *testing.T) {
	err := NewPathError("/tmp/missing", ErrNotDirectory)

	assert.ErrorIs(t, err, ErrNotDirectory)
	assert.Contains(t, err.Error(), "/tmp/missing")
}

func TestErrorCollector(t *testing.T) {
	var ec ErrorCollector
	assert.False(t, ec.HasErrors())
	assert.NoError(t, ec.Error())

	first := errors.New("first")
	ec.Add(nil)
	ec.Add(first)
	assert.True(t, ec.HasErrors())
	assert.Same(t, first, ec.Error())

	ec.AddWithContext(errors.New("second"), "while closing")
	assert.Len(t, ec.Errors(), 2)
	assert.Equal(t, "multiple errors occurred: [first; while closing: second]", ec.Error().Error())
}

func TestCombineErrors_KeepsChain(t *testing.T) {
	err := CombineErrors([]error{
		nil,
		NewPathError("/data", ErrNotFound),
		NewConfigurationError("MonitorConfig", "DebounceMs", "too small"),
	})
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "DebounceMs", cfgErr.Field)
	assert.NoError(t, CombineErrors([]error{nil, nil}))
}
