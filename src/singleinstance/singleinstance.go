// Package singleinstance keeps two interactive instances from installing global key
// hooks at the same time. The owner holds a loopback TCP port and answers PING with PONG.
package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"interactive-scraper/src/logutil"
)

const (
	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongResponse = "PONG\n"
	pingTimeout  = 300 * time.Millisecond
)

// ErrAlreadyRunning means another instance answered on the guard port.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Guard owns the port until Close.
type Guard struct {
	lis       net.Listener
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Acquire binds the guard port. When the port is taken by a live instance it returns
// ErrAlreadyRunning; any other bind failure is returned wrapped.
func Acquire(ctx context.Context, port int) (*Guard, error) {
	log := logutil.For(logutil.CompInstance)
	addr := net.JoinHostPort(residentHost, strconv.Itoa(port))

	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		if Detect(ctx, port) {
			log.Info("resident instance answered", "addr", addr)
			return nil, fmt.Errorf("%w (port %d)", ErrAlreadyRunning, port)
		}
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}

	g := &Guard{lis: lis}
	g.wg.Add(1)
	go g.acceptLoop()
	log.Info("single instance guard listening", "addr", addr)
	return g, nil
}

func (g *Guard) acceptLoop() {
	defer g.wg.Done()
	for {
		c, err := g.lis.Accept()
		if err != nil {
			return
		}
		g.answer(c)
	}
}

func (g *Guard) answer(c net.Conn) {
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(3 * time.Second))
	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil || line != pingRequest {
		logutil.For(logutil.CompInstance).Debug("ignoring guard request", "remote", c.RemoteAddr().String())
		return
	}
	_, _ = c.Write([]byte(pongResponse))
}

// Close releases the port and waits for the accept loop to exit.
func (g *Guard) Close() error {
	var err error
	g.closeOnce.Do(func() {
		err = g.lis.Close()
		g.wg.Wait()
	})
	return err
}

// Detect reports whether a resident instance answers PING on port.
func Detect(ctx context.Context, port int) bool {
	timeout := pingTimeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < timeout {
			timeout = d
		}
	}

	addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
