package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// memBroker — in-memory реализация Broker для тестов пула воркеров.
type memBroker struct {
	ch chan Job
}

func newMemBroker() *memBroker {
	return &memBroker{ch: make(chan Job, 64)}
}

func (b *memBroker) Enqueue(_ context.Context, job Job) error {
	b.ch <- job
	return nil
}

func (b *memBroker) Dequeue(ctx context.Context) (*Job, error) {
	select {
	case j := <-b.ch:
		return &j, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Millisecond):
		return nil, nil
	}
}

// waitFor опрашивает условие до истечения дедлайна.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("условие не выполнено: %s", msg)
}

// TestWorker_Success проверяет успешную обработку задания.
func TestWorker_Success(t *testing.T) {
	broker := newMemBroker()
	var calls atomic.Int64
	var gotFileID atomic.Value

	handler := func(_ context.Context, job Job) error {
		calls.Add(1)
		gotFileID.Store(job.FileID)
		return nil
	}

	w := NewWorker(broker, handler, 2, 3, slog.Default())
	w.Start(context.Background())
	defer w.Stop()

	if err := broker.Enqueue(context.Background(), Job{OwnerID: "u1", FileID: "f1"}); err != nil {
		t.Fatalf("ошибка постановки задания: %v", err)
	}

	waitFor(t, func() bool { return calls.Load() == 1 }, "задание обработано один раз")

	if got := gotFileID.Load(); got != "f1" {
		t.Errorf("fileId: ожидалось f1, получено %v", got)
	}

	// Повторной доставки быть не должно
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 1 {
		t.Errorf("ожидалась ровно одна попытка, получено %d", calls.Load())
	}
}

// TestWorker_PermanentFailure проверяет, что постоянная ошибка не повторяется.
func TestWorker_PermanentFailure(t *testing.T) {
	broker := newMemBroker()
	var calls atomic.Int64

	handler := func(_ context.Context, _ Job) error {
		calls.Add(1)
		return fmt.Errorf("%w: отсутствует fileId", ErrPermanent)
	}

	w := NewWorker(broker, handler, 1, 3, slog.Default())
	w.Start(context.Background())
	defer w.Stop()

	_ = broker.Enqueue(context.Background(), Job{OwnerID: "u1"})

	waitFor(t, func() bool { return calls.Load() == 1 }, "одна попытка обработки")

	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 1 {
		t.Errorf("постоянная ошибка не должна повторяться, попыток: %d", calls.Load())
	}
}

// TestWorker_TransientRetry проверяет повтор transient-ошибок до лимита попыток.
func TestWorker_TransientRetry(t *testing.T) {
	broker := newMemBroker()
	var calls atomic.Int64

	handler := func(_ context.Context, _ Job) error {
		calls.Add(1)
		return errors.New("временный сбой blob-хранилища")
	}

	const maxAttempts = 3
	w := NewWorker(broker, handler, 1, maxAttempts, slog.Default())
	w.Start(context.Background())
	defer w.Stop()

	_ = broker.Enqueue(context.Background(), Job{OwnerID: "u1", FileID: "f1"})

	waitFor(t, func() bool { return calls.Load() == maxAttempts }, "исчерпание лимита попыток")

	time.Sleep(50 * time.Millisecond)
	if calls.Load() != maxAttempts {
		t.Errorf("ожидалось %d попыток, получено %d", maxAttempts, calls.Load())
	}
}

// TestWorker_TransientThenSuccess проверяет успех после повтора.
func TestWorker_TransientThenSuccess(t *testing.T) {
	broker := newMemBroker()
	var calls atomic.Int64

	handler := func(_ context.Context, job Job) error {
		n := calls.Add(1)
		if n == 1 {
			if job.Attempts != 0 {
				return fmt.Errorf("%w: первая доставка должна иметь attempts=0", ErrPermanent)
			}
			return errors.New("временный сбой")
		}
		if job.Attempts != 1 {
			t.Errorf("attempts при повторе: ожидалось 1, получено %d", job.Attempts)
		}
		return nil
	}

	w := NewWorker(broker, handler, 1, 3, slog.Default())
	w.Start(context.Background())
	defer w.Stop()

	_ = broker.Enqueue(context.Background(), Job{OwnerID: "u1", FileID: "f1"})

	waitFor(t, func() bool { return calls.Load() == 2 }, "повтор после transient-ошибки")
}

// TestWorker_StopDrainsGracefully проверяет остановку пула без паник и утечек.
func TestWorker_StopDrainsGracefully(t *testing.T) {
	broker := newMemBroker()
	handler := func(_ context.Context, _ Job) error { return nil }

	w := NewWorker(broker, handler, 4, 3, slog.Default())
	w.Start(context.Background())

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop не завершился за отведённое время")
	}
}

// ctxBroker — Broker, отклоняющий постановку по отменённому контексту
// (как Redis-клиент).
type ctxBroker struct {
	*memBroker
}

func (b *ctxBroker) Enqueue(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.memBroker.Enqueue(ctx, job)
}

// TestWorker_RequeueSurvivesShutdown: transient-задание, провалившееся
// во время остановки пула, возвращается в очередь, а не теряется.
func TestWorker_RequeueSurvivesShutdown(t *testing.T) {
	broker := &ctxBroker{memBroker: newMemBroker()}
	started := make(chan struct{})

	handler := func(ctx context.Context, _ Job) error {
		close(started)
		// Остановка пула начинается во время обработки
		<-ctx.Done()
		return errors.New("временный сбой")
	}

	w := NewWorker(broker, handler, 1, 3, slog.Default())
	w.Start(context.Background())

	if err := broker.Enqueue(context.Background(), Job{OwnerID: "u1", FileID: "f1"}); err != nil {
		t.Fatalf("ошибка постановки задания: %v", err)
	}

	<-started
	w.Stop()

	select {
	case job := <-broker.ch:
		if job.Attempts != 1 {
			t.Errorf("attempts: ожидалось 1, получено %d", job.Attempts)
		}
	default:
		t.Fatal("задание потеряно при остановке пула")
	}
}
