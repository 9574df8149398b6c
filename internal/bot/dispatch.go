package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// dispatcher runs updates of one user strictly in arrival order while
// different users are handled concurrently. A user's goroutine exits as soon
// as their backlog is empty.
type dispatcher struct {
	mu      sync.Mutex
	backlog map[int64][]tgbotapi.Update
	wg      sync.WaitGroup
	handle  func(context.Context, tgbotapi.Update)
}

func newDispatcher(handle func(context.Context, tgbotapi.Update)) *dispatcher {
	return &dispatcher{
		backlog: make(map[int64][]tgbotapi.Update),
		handle:  handle,
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, userID int64, update tgbotapi.Update) {
	d.mu.Lock()
	if queue, running := d.backlog[userID]; running {
		d.backlog[userID] = append(queue, update)
		d.mu.Unlock()
		return
	}
	d.backlog[userID] = nil
	d.wg.Add(1)
	d.mu.Unlock()

	go d.run(ctx, userID, update)
}

func (d *dispatcher) run(ctx context.Context, userID int64, update tgbotapi.Update) {
	defer d.wg.Done()

	for {
		d.handle(ctx, update)

		d.mu.Lock()
		queue := d.backlog[userID]
		if len(queue) == 0 {
			delete(d.backlog, userID)
			d.mu.Unlock()
			return
		}
		update = queue[0]
		d.backlog[userID] = queue[1:]
		d.mu.Unlock()
	}
}

// Wait blocks until every dispatched update has been handled.
func (d *dispatcher) Wait() {
	d.wg.Wait()
}
