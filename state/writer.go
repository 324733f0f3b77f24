package state

import (
	"context"
	"log"
	"sync"
)

// writer 后台写入：只保留最新一份待写文档，调用方不等待写入结果
type writer struct {
	p       Persister
	mu      sync.Mutex
	idle    *sync.Cond
	pending *Document
	writing bool
	closed  bool
	kick    chan struct{}
	done    chan struct{}
}

func newWriter(p Persister) *writer {
	w := &writer{
		p:    p,
		kick: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	w.idle = sync.NewCond(&w.mu)
	go w.loop()
	return w
}

func (w *writer) enqueue(doc Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending = &doc
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

func (w *writer) loop() {
	defer close(w.done)
	for range w.kick {
		for {
			w.mu.Lock()
			doc := w.pending
			w.pending = nil
			if doc == nil {
				w.writing = false
				w.idle.Broadcast()
				w.mu.Unlock()
				break
			}
			w.writing = true
			w.mu.Unlock()

			if err := w.p.Save(context.Background(), *doc); err != nil {
				log.Printf("警告: 本地状态写入失败: %v", err)
			}
		}
	}
}

func (w *writer) flush() {
	w.mu.Lock()
	for w.pending != nil || w.writing {
		w.idle.Wait()
	}
	w.mu.Unlock()
}

func (w *writer) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.kick)
	w.mu.Unlock()
	<-w.done
}
