// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package control

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Server is a Channel served over HTTP. The supervisor polls
// GET /messages, which drains every queued message as lines of text,
// and acknowledges with POST /ack.
type Server struct {
	mu      sync.Mutex
	queue   []Message
	limit   int
	acks    acks
	closed  chan struct{}
	once    sync.Once
	handler http.Handler
}

var _ Channel = (*Server)(nil)

// NewServer returns a new Server which queues up to limit undelivered
// messages.
func NewServer(limit int) *Server {
	server := &Server{
		limit:  limit,
		acks:   newAcks(),
		closed: make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/messages", server.drain)
	r.Post("/ack", server.ack)

	server.handler = r
	return server
}

// Handler returns the server's HTTP handler.
func (server *Server) Handler() http.Handler {
	return server.handler
}

func (server *Server) Send(msg Message) error {
	server.mu.Lock()
	defer server.mu.Unlock()

	if server.limit > 0 && len(server.queue) >= server.limit {
		return ErrFull
	}

	server.queue = append(server.queue, msg)
	return nil
}

func (server *Server) AwaitAck(ctx context.Context) error {
	return server.acks.await(ctx, server.closed)
}

func (server *Server) drain(w http.ResponseWriter, r *http.Request) {
	server.mu.Lock()
	queue := server.queue
	server.queue = nil
	server.mu.Unlock()

	var body strings.Builder
	for _, msg := range queue {
		body.WriteString(msg.Encode())
		body.WriteByte('\n')
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(body.String()))
}

func (server *Server) ack(w http.ResponseWriter, r *http.Request) {
	logrus.WithField("remote", r.RemoteAddr).Debug("received control acknowledgement")
	server.acks.deliver()
	w.WriteHeader(http.StatusNoContent)
}

// ListenAndServe serves the channel on the given address until the
// context is done.
func (server *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logrus.WithField("addr", addr).Info("serving control channel")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		server.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("control server: %w", err)

	case <-ctx.Done():
		server.Close()

		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

// Close unblocks any waiting AwaitAck with ErrClosed.
func (server *Server) Close() {
	server.once.Do(func() { close(server.closed) })
}
