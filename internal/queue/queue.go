// Пакет queue — долговременная очередь заданий thumbnail pipeline
// поверх Redis-списка. Доставка at-least-once: обработчик обязан быть
// идемпотентным (производные перезаписываются при повторе).
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultKey — Redis-ключ списка заданий генерации миниатюр.
const defaultKey = "fm:queue:thumbnails"

// dequeueTimeout — таймаут блокирующего BRPOP. Ограничивает задержку
// реакции воркера на отмену контекста при пустой очереди.
const dequeueTimeout = time.Second

// ErrPermanent — маркер постоянной ошибки обработки. Задание, обработчик
// которого вернул ошибку с этим маркером, не ставится в очередь повторно:
// некорректный payload или отсутствующая запись сами не исправятся.
var ErrPermanent = errors.New("постоянная ошибка задания")

// Job — задание генерации миниатюр. Поля — ссылки в каталог метаданных,
// не денормализованные копии: воркер перечитывает авторитетную запись.
type Job struct {
	OwnerID string `json:"userId"`
	FileID  string `json:"fileId"`
	// Attempts — количество уже выполненных попыток обработки
	Attempts int `json:"attempts"`
}

// Broker — поверхность очереди: постановка и выборка заданий.
type Broker interface {
	// Enqueue помещает задание в очередь.
	Enqueue(ctx context.Context, job Job) error
	// Dequeue блокирующе забирает одно задание.
	// (nil, nil) — очередь пуста по истечении таймаута ожидания.
	Dequeue(ctx context.Context) (*Job, error)
}

// RedisBroker — реализация Broker поверх Redis-списка (LPUSH/BRPOP).
type RedisBroker struct {
	rdb *redis.Client
	key string
}

// NewRedisBroker создаёт брокер очереди поверх готового Redis-клиента.
func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb, key: defaultKey}
}

// Enqueue сериализует задание в JSON и кладёт в голову списка.
func (b *RedisBroker) Enqueue(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("ошибка сериализации задания: %w", err)
	}
	if err := b.rdb.LPush(ctx, b.key, payload).Err(); err != nil {
		return fmt.Errorf("ошибка постановки задания в очередь: %w", err)
	}
	return nil
}

// Dequeue блокирующе забирает задание из хвоста списка.
func (b *RedisBroker) Dequeue(ctx context.Context) (*Job, error) {
	res, err := b.rdb.BRPop(ctx, dequeueTimeout, b.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка выборки из очереди: %w", err)
	}

	// BRPOP возвращает пару [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("неожиданный ответ BRPOP: %d элементов", len(res))
	}

	job := &Job{}
	if err := json.Unmarshal([]byte(res[1]), job); err != nil {
		return nil, fmt.Errorf("ошибка разбора задания: %w", err)
	}
	return job, nil
}
