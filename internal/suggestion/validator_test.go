package suggestion

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Boundaries(t *testing.T) {
	validDetails := strings.Repeat("d", 10)

	tests := []struct {
		name      string
		req       Request
		wantField string
	}{
		{"empty name", Request{UserName: "", Details: validDetails}, "user_name"},
		{"whitespace name", Request{UserName: "   ", Details: validDetails}, "user_name"},
		{"name of 51", Request{UserName: strings.Repeat("n", 51), Details: validDetails}, "user_name"},
		{"name of 1", Request{UserName: "n", Details: validDetails}, ""},
		{"name of 50", Request{UserName: strings.Repeat("n", 50), Details: validDetails}, ""},
		{"details of 9", Request{UserName: "Dana", Details: strings.Repeat("d", 9)}, "details"},
		{"details of 1001", Request{UserName: "Dana", Details: strings.Repeat("d", 1001)}, "details"},
		{"details of 10", Request{UserName: "Dana", Details: strings.Repeat("d", 10)}, ""},
		{"details of 1000", Request{UserName: "Dana", Details: strings.Repeat("d", 1000)}, ""},
		{"details short after trim", Request{UserName: "Dana", Details: "   short    "}, "details"},
		{"multibyte counts characters", Request{UserName: strings.Repeat("é", 50), Details: validDetails}, ""},
	}
	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestValidator_ReturnsTrimmedRequest(t *testing.T) {
	got, err := NewValidator().Validate(Request{UserName: "  Dana  ", Details: "\n More courts please \t"})
	require.NoError(t, err)
	assert.Equal(t, "Dana", got.UserName)
	assert.Equal(t, "More courts please", got.Details)
}

func TestValidator_NameReportedBeforeDetails(t *testing.T) {
	_, err := NewValidator().Validate(Request{})
	assert.Equal(t, MsgInvalidName, UserMessage(err))
}

func TestIsBot(t *testing.T) {
	assert.False(t, IsBot(Request{UserName: "Dana"}))
	assert.True(t, IsBot(Request{Website: "http://spam.example"}))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, MsgInvalidDetails, UserMessage(&ValidationError{Field: "details", Message: MsgInvalidDetails}))
	assert.Equal(t, MsgInvalidName, UserMessage(fmt.Errorf("submit: %w", &ValidationError{Message: MsgInvalidName})))
	assert.Equal(t, MsgSubmitFailed, UserMessage(errors.New("connection refused")))
}
