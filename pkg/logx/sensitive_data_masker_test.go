package logx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"geo_feedback/pkg/logx"
)

func TestSensitiveDataMaskerMask(t *testing.T) {
	rq := require.New(t)

	masker := logx.NewSensitiveDataMasker()

	testCases := []struct {
		name   string
		input  []byte
		output []byte
	}{
		{
			name:   "Password",
			input:  []byte(`{"hello":"world","password":"abc123"}`),
			output: []byte(`{"hello":"world","password":"[MASKED]"}`),
		},
		{
			name:   "Password capital letter",
			input:  []byte(`{"hello":"world","Password":"abc123"}`),
			output: []byte(`{"hello":"world","Password":"[MASKED]"}`),
		},
		{
			name:   "Comment request",
			input:  []byte(`{"nickname":"anna","password":"secret","comment":"fresh honey","rank":5}`),
			output: []byte(`{"nickname":"[MASKED]","password":"[MASKED]","comment":"fresh honey","rank":5}`),
		},
		{
			name:   "Telegram user",
			input:  []byte(`{"from": {"id": 42, "first_name": "John", "last_name": "Doe", "username": "jdoe"}}`),
			output: []byte(`{"from": {"id": 42, "first_name": "[MASKED]", "last_name": "[MASKED]", "username": "[MASKED]"}}`),
		},
		{
			name:   "Bot token in URL",
			input:  []byte(`POST https://api.telegram.org/bot123456:AAE-x_yz/sendMessage`),
			output: []byte(`POST https://api.telegram.org/bot[MASKED]/sendMessage`),
		},
		{
			name:   "Nothing to mask",
			input:  []byte(`{"code":"101000"}`),
			output: []byte(`{"code":"101000"}`),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			output := masker.Mask(tc.input)
			rq.Equal(tc.input, logx.NewNopSensitiveDataMasker().Mask(tc.input))

			rq.Equal(tc.output, output, "%s vs %s", tc.output, output)
		})
	}
}
