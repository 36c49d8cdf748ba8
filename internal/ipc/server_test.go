package ipc

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "tomatick/internal/foundation/errors"
)

func startServer(t *testing.T, config ServerConfig) (*Server, *Client) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(listener, config, nil)
	ctx, cancel := context.WithCancel(context.Background())
	server.Start(ctx)
	t.Cleanup(func() {
		cancel()
		server.Stop()
	})
	return server, NewClient(listener.Addr().String(), "Tomatick")
}

// serve answers every request with handler until ctx is done.
func serve(ctx context.Context, server *Server, handler func(Command) Response) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case request := <-server.Requests():
				request.Reply(handler(request.Command))
			}
		}
	}()
}

func sendRaw(t *testing.T, addr, line string) Response {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(line))
	require.NoError(t, err)

	buf := make([]byte, 4096)
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(buf[:n]), "\n"), "responses are newline terminated")

	resp, err := ParseResponse(buf[:n])
	require.NoError(t, err)
	return resp
}

func TestRoundTrip(t *testing.T) {
	server, client := startServer(t, ServerConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serve(ctx, server, func(cmd Command) Response {
		return NewOk("handled " + string(cmd.Kind()))
	})

	resp, err := client.Send(context.Background(), PauseCommand{})
	require.NoError(t, err)
	assert.Equal(t, NewOk("handled pause"), resp)
}

func TestPingAnsweredWhileControlLoopBusy(t *testing.T) {
	_, client := startServer(t, ServerConfig{ResponseTimeout: 500 * time.Millisecond})

	pending := make(chan Response, 1)
	go func() {
		resp, _ := client.Send(context.Background(), StatusCommand{})
		pending <- resp
	}()
	time.Sleep(50 * time.Millisecond)

	started := time.Now()
	resp, err := client.Send(context.Background(), PingCommand{})
	require.NoError(t, err)
	assert.Equal(t, PongResponse{}, resp)
	assert.Less(t, time.Since(started), 250*time.Millisecond)

	assert.Equal(t, NewError("Response timeout"), <-pending)
}

func TestMalformedLineNeverReachesQueue(t *testing.T) {
	server, _ := startServer(t, ServerConfig{})

	resp := sendRaw(t, server.Addr().String(), "{not json}\n")
	errResp, ok := resp.(ErrorResponse)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(errResp.Message, "Invalid command: "), errResp.Message)

	resp = sendRaw(t, server.Addr().String(), `{"command":"explode"}`+"\n")
	assert.Contains(t, resp.(ErrorResponse).Message, "Invalid command")
	assert.Empty(t, server.Requests())
}

func TestResponseTimeout(t *testing.T) {
	_, client := startServer(t, ServerConfig{ResponseTimeout: 100 * time.Millisecond})

	resp, err := client.Send(context.Background(), SkipCommand{})
	require.NoError(t, err)
	assert.Equal(t, NewError("Response timeout"), resp)
}

func TestConcurrentRequestsGetTheirOwnResponses(t *testing.T) {
	server, client := startServer(t, ServerConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serve(ctx, server, func(cmd Command) Response {
		start := cmd.(StartCommand)
		time.Sleep(2 * time.Millisecond)
		return NewOk(*start.SessionType)
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			resp, err := client.Send(context.Background(), StartCommand{SessionType: &id})
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, NewOk(id), resp)
		}(fmt.Sprintf("req-%d", i))
	}
	wg.Wait()
}

func TestRequestsArriveInOrder(t *testing.T) {
	server, client := startServer(t, ServerConfig{})
	var seen []CommandKind
	var mu sync.Mutex
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serve(ctx, server, func(cmd Command) Response {
		mu.Lock()
		seen = append(seen, cmd.Kind())
		mu.Unlock()
		return OkResponse{}
	})

	for _, cmd := range []Command{StartCommand{}, PauseCommand{}, ResumeCommand{}, StopCommand{}} {
		_, err := client.Send(context.Background(), cmd)
		require.NoError(t, err)
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []CommandKind{KindStart, KindPause, KindResume, KindStop}, seen)
}

func TestStopClosesListener(t *testing.T) {
	server, client := startServer(t, ServerConfig{})
	require.True(t, client.Ping(context.Background()))

	server.Stop()
	assert.False(t, client.Ping(context.Background()))
}

func TestClientConnectFailure(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	_, err = NewClient(addr, "Tomatick").Send(context.Background(), StatusCommand{})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConnection))

	classified, _ := ferrors.AsClassified(err)
	assert.True(t, strings.HasPrefix(classified.Message(), "Cannot connect to Tomatick. Is it running? ("))
}

func TestClientReadTimeout(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			time.Sleep(500 * time.Millisecond)
			conn.Close()
		}
	}()

	client := NewClient(listener.Addr().String(), "Tomatick").WithTimeout(100 * time.Millisecond)
	_, err = client.Send(context.Background(), StatusCommand{})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConnection))
}

func TestRequestReplyKeepsFirstResponse(t *testing.T) {
	request := NewRequest(StatusCommand{})
	request.Reply(NewOk("first"))
	request.Reply(NewOk("second"))

	resp, ok := request.Wait(context.Background(), time.Second)
	require.True(t, ok)
	assert.Equal(t, NewOk("first"), resp)
}
