// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package link

import (
	"bytes"
	"io"
	"sync"

	"go.uber.org/zap"
)

// outbox decouples senders from a possibly slow writer.
type outbox struct {
	queue chan []byte
	done  chan struct{}
	once  sync.Once
}

func newOutbox(depth int) *outbox {
	return &outbox{
		queue: make(chan []byte, depth),
		done:  make(chan struct{}),
	}
}

// offer queues a copy of data, or fails immediately.
func (ob *outbox) offer(data []byte) (n int, err error) {
	select {
	case <-ob.done:
		err = ErrNotConnected
		return
	default:
	}

	select {
	case ob.queue <- bytes.Clone(data):
		n = len(data)
	default:
		err = ErrSendQueueFull
	}

	return
}

// drain writes queued data to w until close, or until a write fails.
func (ob *outbox) drain(w io.Writer, log *zap.Logger) {
	for {
		select {
		case <-ob.done:
			return
		case data := <-ob.queue:
			_, err := w.Write(data)
			if err != nil {
				log.Debug("link: write failed", zap.Error(err))
				ob.close()
				return
			}
		}
	}
}

func (ob *outbox) close() {
	ob.once.Do(func() { close(ob.done) })
}
