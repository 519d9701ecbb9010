package eventchan

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interactive-scraper/src/messages"
)

func TestFIFOOrder(t *testing.T) {
	tx, rx := New()
	want := []messages.AppEvent{
		messages.InitializeGadget,
		messages.GetSelected,
		messages.GetSelected,
		messages.GetHelp,
		messages.Quit,
	}
	for _, ev := range want {
		require.NoError(t, tx.Send(ev))
	}
	assert.Equal(t, len(want), rx.Len())

	ctx := context.Background()
	for i, ev := range want {
		got, err := rx.Recv(ctx)
		require.NoError(t, err)
		assert.Equal(t, ev, got, "position %d", i)
	}
}

func TestSendNeverBlocks(t *testing.T) {
	tx, rx := New()
	const n = 100000
	for i := 0; i < n; i++ {
		require.NoError(t, tx.Send(messages.GetHelp))
	}
	assert.Equal(t, n, rx.Len())
}

func TestRecvWaitsForProducer(t *testing.T) {
	tx, rx := New()

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = tx.Send(messages.GetSelected)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := rx.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, messages.GetSelected, got)
}

func TestSenderCloseDrainsThenEOF(t *testing.T) {
	tx, rx := New()
	require.NoError(t, tx.Send(messages.GetHelp))
	tx.Close()

	ctx := context.Background()
	got, err := rx.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, messages.GetHelp, got)

	_, err = rx.Recv(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSenderCloseWakesBlockedReceiver(t *testing.T) {
	tx, rx := New()
	errCh := make(chan error, 1)
	go func() {
		_, err := rx.Recv(context.Background())
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	tx.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(5 * time.Second):
		t.Fatal("receiver was not woken by Close")
	}
}

func TestReceiverCloseFailsSends(t *testing.T) {
	tx, rx := New()
	require.NoError(t, tx.Send(messages.GetHelp))
	rx.Close()

	assert.ErrorIs(t, tx.Send(messages.Quit), ErrReceiverClosed)
	assert.Equal(t, 0, rx.Len())
}

func TestRecvHonorsContext(t *testing.T) {
	_, rx := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rx.Recv(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentProducerPreservesOrder(t *testing.T) {
	tx, rx := New()
	const n = 2000
	seq := []messages.AppEvent{messages.InitializeGadget, messages.GetSelected, messages.GetHelp}

	go func() {
		for i := 0; i < n; i++ {
			_ = tx.Send(seq[i%len(seq)])
		}
		tx.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for i := 0; i < n; i++ {
		got, err := rx.Recv(ctx)
		require.NoError(t, err)
		require.Equal(t, seq[i%len(seq)], got, "position %d", i)
	}
	_, err := rx.Recv(ctx)
	assert.ErrorIs(t, err, io.EOF)
}
