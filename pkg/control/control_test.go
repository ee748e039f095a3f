package control

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		msg  Message
		line string
	}{
		{Start(), "SESSION_START"},
		{Restart(), "SESSION_RESTART"},
		{Single("Nf3"), "MOVE_SINGLE:Nf3"},
		{Bulk([]string{"e4", "e5", "Nf3"}), "MOVE_BULK:e4,e5,Nf3"},
		{Bulk(nil), "MOVE_BULK"},
		{Report("+0.35", "512/400/88", "+1"), "STATUS:+0.35|512/400/88|+1"},
		{Failure("RUNTIME", ""), "ERROR:RUNTIME"},
		{Failure("CONFIRMATION", "3 attempts"), "ERROR:CONFIRMATION:3 attempts"},
		{Ack(), "ACK_CLEARED"},
	}

	for _, test := range tests {
		assert.Equal(t, test.line, test.msg.Encode())
	}
}

func TestParse(t *testing.T) {
	msg, err := Parse("ERROR:ORACLE:engine exited\n")
	require.NoError(t, err)
	assert.Equal(t, Error, msg.Tag)
	assert.Equal(t, "ORACLE:engine exited", msg.Payload)

	msg, err = Parse(" ACK_CLEARED ")
	require.NoError(t, err)
	assert.Equal(t, Ack(), msg)

	_, err = Parse("HELLO")
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestPipe(t *testing.T) {
	pipe := NewPipe(2)
	require.NoError(t, pipe.Send(Start()))
	require.NoError(t, pipe.Send(Single("e4")))
	assert.ErrorIs(t, pipe.Send(Single("e5")), ErrFull)

	assert.Equal(t, Start(), <-pipe.Messages())
	assert.Equal(t, Single("e4"), <-pipe.Messages())

	pipe.Ack()
	pipe.Ack()
	require.NoError(t, pipe.AwaitAck(context.Background()))

	// duplicate acknowledgements collapse into one
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pipe.AwaitAck(ctx), context.DeadlineExceeded)

	pipe.Close()
	assert.ErrorIs(t, pipe.AwaitAck(context.Background()), ErrClosed)
	assert.ErrorIs(t, pipe.Send(Start()), ErrClosed)
}

func TestStream(t *testing.T) {
	in, feed := io.Pipe()
	var out strings.Builder

	stream := NewStream(in, &out)
	require.NoError(t, stream.Send(Restart()))
	require.NoError(t, stream.Send(Bulk([]string{"d4", "d5"})))
	assert.Equal(t, "SESSION_RESTART\nMOVE_BULK:d4,d5\n", out.String())

	go func() {
		_, _ = io.WriteString(feed, "garbage\nSTATUS:x\nACK_CLEARED\n")
	}()
	require.NoError(t, stream.AwaitAck(context.Background()))

	require.NoError(t, feed.Close())
	assert.ErrorIs(t, stream.AwaitAck(context.Background()), ErrClosed)
}

func TestServer(t *testing.T) {
	server := NewServer(0)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	require.NoError(t, server.Send(Start()))
	require.NoError(t, server.Send(Single("c4")))

	body := get(t, ts.URL+"/messages")
	assert.Equal(t, "SESSION_START\nMOVE_SINGLE:c4\n", body)
	assert.Empty(t, get(t, ts.URL+"/messages"))

	done := make(chan error, 1)
	go func() { done <- server.AwaitAck(context.Background()) }()

	res, err = http.Post(ts.URL+"/ack", "text/plain", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	res.Body.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("acknowledgement was not delivered")
	}
}

func TestServerLimit(t *testing.T) {
	server := NewServer(1)
	require.NoError(t, server.Send(Start()))
	assert.ErrorIs(t, server.Send(Start()), ErrFull)

	server.Close()
	assert.ErrorIs(t, server.AwaitAck(context.Background()), ErrClosed)
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard{}.Send(Start()))
	assert.NoError(t, Discard{}.AwaitAck(context.Background()))
}

func get(t *testing.T, url string) string {
	t.Helper()

	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(body)
}
