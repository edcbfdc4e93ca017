package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const BackendMemory = "memory"

// EmbeddedRedis is the fallback store used when Redis is not configured or
// unreachable: an in-process Redis server behind the regular RedisClient.
// Data lives only as long as the process.
//
// The embedded server only ages keys when told to, so a clock goroutine
// advances it every tick. A tick of zero leaves expiry to FastForward.
type EmbeddedRedis struct {
	*RedisClient
	server *miniredis.Miniredis

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ KVClient = (*EmbeddedRedis)(nil)

func NewEmbeddedRedis(tick time.Duration) (*EmbeddedRedis, error) {
	server, err := miniredis.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start embedded redis: %w", err)
	}

	e := &EmbeddedRedis{
		RedisClient: &RedisClient{
			Client: redis.NewClient(&redis.Options{Addr: server.Addr()}),
		},
		server: server,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	if tick > 0 {
		go e.runClock(tick)
	} else {
		close(e.done)
	}
	return e, nil
}

func (e *EmbeddedRedis) runClock(tick time.Duration) {
	defer close(e.done)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-e.stop:
			return
		case now := <-ticker.C:
			e.server.FastForward(now.Sub(last))
			last = now
		}
	}
}

// FastForward ages every key by d.
func (e *EmbeddedRedis) FastForward(d time.Duration) {
	e.server.FastForward(d)
}

func (e *EmbeddedRedis) Backend() string {
	return BackendMemory
}

func (e *EmbeddedRedis) Close() error {
	var err error
	e.closeOnce.Do(func() {
		close(e.stop)
		<-e.done
		err = e.RedisClient.Close()
		e.server.Close()
	})
	return err
}
