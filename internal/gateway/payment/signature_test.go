//go:build unit

package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSigner_Verify(t *testing.T) {
	signer := NewSigner("webhook-secret")
	body := []byte(`{"external_event_id":"evt_1","payment_reference":"pay_1","status":"succeeded"}`)

	tests := []struct {
		name      string
		body      []byte
		signature string
		want      bool
	}{
		{
			name:      "valid signature",
			body:      body,
			signature: signer.Sign(body),
			want:      true,
		},
		{
			name:      "empty signature",
			body:      body,
			signature: "",
			want:      false,
		},
		{
			name:      "not hex",
			body:      body,
			signature: "zzzz",
			want:      false,
		},
		{
			name:      "signed with different secret",
			body:      body,
			signature: NewSigner("other-secret").Sign(body),
			want:      false,
		},
		{
			name:      "tampered body",
			body:      []byte(`{"external_event_id":"evt_1","payment_reference":"pay_1","status":"failed"}`),
			signature: signer.Sign(body),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, signer.Verify(tt.body, tt.signature))
		})
	}
}
