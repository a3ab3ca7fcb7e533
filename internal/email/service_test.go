package email

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movigoo/host-server/internal/config"
)

func TestNewService_DisabledSkipsValidation(t *testing.T) {
	svc, err := NewService(config.EmailConfig{Enabled: false}, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, svc.client)
}

func TestNewService_EnabledRejectsBadSender(t *testing.T) {
	_, err := NewService(config.EmailConfig{
		Enabled:      true,
		ResendAPIKey: "re_test",
		From:         "not-an-address",
	}, zerolog.Nop())
	require.Error(t, err)
}

func TestKycSubmitted_DisabledIsNoop(t *testing.T) {
	svc, err := NewService(config.EmailConfig{Enabled: false}, zerolog.Nop())
	require.NoError(t, err)

	assert.NoError(t, svc.KycSubmitted(t.Context(), "Asha", "asha@example.com"))
}

func TestKycSubmitted_RejectsBadRecipient(t *testing.T) {
	svc, err := NewService(config.EmailConfig{Enabled: false}, zerolog.Nop())
	require.NoError(t, err)

	assert.Error(t, svc.KycSubmitted(t.Context(), "Asha", "nope"))
}

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, validateAddress("host@movigoo.com"))
	assert.NoError(t, validateAddress("Asha Rao <asha@example.com>"))
	assert.Error(t, validateAddress(""))
	assert.Error(t, validateAddress("   "))
	assert.Error(t, validateAddress("missing-domain@"))
}
