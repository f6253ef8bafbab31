package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	listenErr error
	started   chan struct{}
	stop      chan struct{}
	shutdown  atomic.Bool
}

func newFakeServer(listenErr error) *fakeServer {
	return &fakeServer{listenErr: listenErr, started: make(chan struct{}), stop: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	close(f.started)
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdown.Store(true)
	close(f.stop)
	return nil
}

func TestHTTPService_ShutdownOnCancel(t *testing.T) {
	var server = newFakeServer(nil)
	var svc = NewHTTPService(server)
	var ctx, cancel = context.WithCancel(context.Background())

	var done = make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	<-server.started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.True(t, server.shutdown.Load())
	assert.Equal(t, "http-server", svc.String())
}

func TestHTTPService_ListenError(t *testing.T) {
	var svc = NewHTTPService(newFakeServer(errors.New("address already in use")))

	err := svc.Serve(context.Background())
	require.Error(t, err)
	assert.Equal(t, "http server failed: address already in use", err.Error())
}

func TestSupervisor_RunsServices(t *testing.T) {
	var sup = New("test")
	var server = newFakeServer(nil)
	sup.Add(NewHTTPService(server))

	var ctx, cancel = context.WithCancel(context.Background())
	var errCh = sup.ServeBackground(ctx)
	select {
	case <-server.started:
	case <-time.After(5 * time.Second):
		t.Fatal("service did not start")
	}
	cancel()

	select {
	case <-errCh:
	case <-time.After(15 * time.Second):
		t.Fatal("supervisor did not stop")
	}
	assert.True(t, server.shutdown.Load())
}
