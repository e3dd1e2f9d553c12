package printer

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viewtouch/posk/internal/money"
)

func TestChannelSendFramesJob(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	ch := NewChannel(client)
	job := NewJob(1, "Kitchen")
	job.AddLine("Burger", money.Money(1299), 0)

	done := make(chan error, 1)
	go func() { done <- ch.Send(job) }()

	var header [4]byte
	_, err := io.ReadFull(server, header[:])
	require.NoError(t, err)
	n := binary.BigEndian.Uint32(header[:])

	buf := make([]byte, n)
	_, err = io.ReadFull(server, buf)
	require.NoError(t, err)
	require.NoError(t, <-done)

	var got Job
	require.NoError(t, json.Unmarshal(buf, &got))
	require.Equal(t, "Kitchen", got.Header)
	require.Len(t, got.Lines, 1)
}

func TestChannelMarksDeadAfterConsecutiveFailures(t *testing.T) {
	client, server := net.Pipe()
	ch := NewChannel(client)
	server.Close() // forces every subsequent read to fail immediately

	for i := 0; i < MaxConsecutiveReadFailures; i++ {
		_, err := ch.ReadAck()
		require.Error(t, err)
	}
	require.True(t, ch.Dead())
}
