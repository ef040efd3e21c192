package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRService_BindLink(t *testing.T) {
	svc := NewQRService("deeptracex_bot", testLogger())

	assert.Equal(t, "https://t.me/deeptracex_bot?start=123456", svc.BindLink("123456"))
}

func TestQRService_BindQR(t *testing.T) {
	svc := NewQRService("deeptracex_bot", testLogger())

	png, err := svc.BindQR("123456")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
