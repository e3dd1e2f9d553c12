package license

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viewtouch/posk/internal/poserr"
)

var testKey = []byte("unit-test-blowfish-key")

func TestHardwareIDIsDeterministic(t *testing.T) {
	require.Equal(t, HardwareID("00:11:22:33:44:55"), HardwareID("00:11:22:33:44:55"))
	require.NotEqual(t, HardwareID("a"), HardwareID("b"))
}

func TestCheckInDecodesBlowfishResponse(t *testing.T) {
	plain := "full,true,365,4,2"
	cipherBody, err := encryptForTest(testKey, plain)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "2", r.Form.Get("protocol"))
		w.Write(cipherBody)
	}))
	defer srv.Close()

	c := New(srv.URL, testKey)
	status, err := c.CheckIn(t.Context(), HardwareID("mac-addr"), 42)
	require.NoError(t, err)
	require.Equal(t, "full", status.LicenseType)
	require.True(t, status.Paid)
	require.Equal(t, 365, status.DaysLeft)
	require.Equal(t, 4, status.Terminals)
	require.Equal(t, 2, status.Printers)
}

func TestCheckInRejectsMalformedFieldCountAsProtocolError(t *testing.T) {
	cipherBody, err := encryptForTest(testKey, "only,three,fields")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(cipherBody)
	}))
	defer srv.Close()

	c := New(srv.URL, testKey)
	_, err = c.CheckIn(t.Context(), "hwid", 1)
	require.ErrorIs(t, err, poserr.ErrProtocol)
}
