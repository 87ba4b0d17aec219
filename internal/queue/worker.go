// worker.go — пул воркеров thumbnail pipeline.
//
// Каждый воркер в цикле забирает по одному заданию из общей очереди
// и передаёт его обработчику. Классификация ошибок:
//   - nil — задание выполнено;
//   - ошибка с маркером ErrPermanent — задание отбрасывается без повтора;
//   - прочие ошибки — transient: задание возвращается в очередь,
//     пока не исчерпан лимит попыток.
//
// Запускается как пул горутин со Start/Stop (по образцу фоновых
// сервисов хранилища).
package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// requeueTimeout — бюджет возврата transient-задания в очередь.
const requeueTimeout = 5 * time.Second

// Prometheus метрики очереди
var (
	// jobsProcessedTotal — количество обработанных заданий по результату.
	jobsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fm_queue_jobs_total",
			Help: "Общее количество обработанных заданий очереди",
		},
		[]string{"result"}, // ok | retried | failed
	)

	// jobDurationSeconds — длительность обработки одного задания.
	jobDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fm_queue_job_duration_seconds",
		Help:    "Длительность обработки задания очереди в секундах",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})
)

// Handler — обработчик одного задания.
type Handler func(ctx context.Context, job Job) error

// Worker — пул горутин, обрабатывающих задания очереди.
type Worker struct {
	broker      Broker
	handler     Handler
	workers     int
	maxAttempts int
	logger      *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker создаёт пул воркеров.
// workers — количество горутин, maxAttempts — лимит попыток задания.
func NewWorker(broker Broker, handler Handler, workers, maxAttempts int, logger *slog.Logger) *Worker {
	return &Worker{
		broker:      broker,
		handler:     handler,
		workers:     workers,
		maxAttempts: maxAttempts,
		logger:      logger.With(slog.String("component", "queue_worker")),
	}
}

// Start запускает пул воркеров. Вызывается один раз при старте процесса.
func (w *Worker) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.run(runCtx, id)
		}(i)
	}

	w.logger.Info("Пул воркеров запущен",
		slog.Int("workers", w.workers),
		slog.Int("max_attempts", w.maxAttempts),
	)
}

// Stop останавливает пул и дожидается завершения текущих заданий.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.logger.Info("Пул воркеров остановлен")
}

// run — основной цикл одного воркера: одно задание за раз.
func (w *Worker) run(ctx context.Context, id int) {
	logger := w.logger.With(slog.Int("worker", id))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.broker.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Ошибка выборки задания",
				slog.String("error", err.Error()),
			)
			continue
		}
		if job == nil {
			// Очередь пуста, ждём следующий BRPOP
			continue
		}

		w.process(ctx, logger, *job)
	}
}

// process выполняет задание и применяет политику повторов.
func (w *Worker) process(ctx context.Context, logger *slog.Logger, job Job) {
	timer := prometheus.NewTimer(jobDurationSeconds)
	err := w.handler(ctx, job)
	timer.ObserveDuration()

	if err == nil {
		jobsProcessedTotal.WithLabelValues("ok").Inc()
		logger.Info("Задание выполнено",
			slog.String("file_id", job.FileID),
			slog.String("owner_id", job.OwnerID),
		)
		return
	}

	if errors.Is(err, ErrPermanent) {
		jobsProcessedTotal.WithLabelValues("failed").Inc()
		logger.Warn("Задание отброшено: постоянная ошибка",
			slog.String("file_id", job.FileID),
			slog.String("owner_id", job.OwnerID),
			slog.String("error", err.Error()),
		)
		return
	}

	// Transient-ошибка: возвращаем в очередь до исчерпания лимита
	job.Attempts++
	if job.Attempts >= w.maxAttempts {
		jobsProcessedTotal.WithLabelValues("failed").Inc()
		logger.Error("Задание отброшено: исчерпан лимит попыток",
			slog.String("file_id", job.FileID),
			slog.Int("attempts", job.Attempts),
			slog.String("error", err.Error()),
		)
		return
	}

	// Возврат в очередь не зависит от контекста пула: задание,
	// провалившееся во время shutdown, не должно теряться
	requeueCtx, cancel := context.WithTimeout(context.Background(), requeueTimeout)
	defer cancel()

	if reqErr := w.broker.Enqueue(requeueCtx, job); reqErr != nil {
		jobsProcessedTotal.WithLabelValues("failed").Inc()
		logger.Error("Ошибка возврата задания в очередь",
			slog.String("file_id", job.FileID),
			slog.String("error", reqErr.Error()),
		)
		return
	}

	jobsProcessedTotal.WithLabelValues("retried").Inc()
	logger.Warn("Задание возвращено в очередь",
		slog.String("file_id", job.FileID),
		slog.Int("attempts", job.Attempts),
		slog.String("error", err.Error()),
	)
}
