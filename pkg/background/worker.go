package background

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"gathr/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Task - периодическая задача.
type Task interface {
	// TTL интервал между запусками, неположительный отключает периодический запуск.
	TTL() time.Duration

	Do(context.Context) error

	// Info имя задачи для логов и метрик.
	Info() string
}

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Worker struct {
	log   handlerLogger
	tasks []Task
	wg    sync.WaitGroup
}

// New прогревает задачи: каждая выполняется один раз синхронно, ошибка или паника
// любой из них возвращается сразу. Затем задачи крутятся в фоне до отмены ctx.
func New(ctx context.Context, log handlerLogger, tasks []Task) (*Worker, error) {
	worker := &Worker{
		log:   log,
		tasks: tasks,
	}
	if len(tasks) == 0 {
		return worker, nil
	}

	initGroup, initCtx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		initGroup.Go(func() error {
			log.Info("initializing background task", logger.NewField("task", task.Info()))
			return worker.execute(initCtx, task)
		})
	}
	if err := initGroup.Wait(); err != nil {
		return nil, fmt.Errorf("failed to initialize tasks: %w", err)
	}

	for _, task := range tasks {
		worker.wg.Add(1)
		go func() {
			defer worker.wg.Done()
			worker.run(ctx, task)
		}()
	}

	return worker, nil
}

// Wait ждёт остановки всех задач после отмены контекста.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, task Task) {
	ttl := task.TTL()
	if ttl <= 0 {
		w.log.Warn("invalid TTL, skipping periodic execution",
			logger.NewField("task", task.Info()),
			logger.NewField("ttl", ttl),
		)
		return
	}
	w.log.Info("starting periodic execution",
		logger.NewField("task", task.Info()),
		logger.NewField("ttl", ttl),
	)

	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("stopping background task", logger.NewField("task", task.Info()))
			return
		case <-ticker.C:
			if err := w.execute(ctx, task); err != nil {
				w.log.Error("background task failed",
					logger.NewField("task", task.Info()),
					logger.NewField("error", err),
				)
			}
		}
	}
}

// execute превращает панику задачи в ошибку и пишет метрики запуска.
func (w *Worker) execute(ctx context.Context, task Task) (err error) {
	name := task.Info()
	started := time.Now()

	defer func() {
		taskDuration.WithLabelValues(name).Observe(time.Since(started).Seconds())

		if r := recover(); r != nil {
			stack := debug.Stack()
			w.log.Error("background task panic",
				logger.NewField("task", name),
				logger.NewField("recover", r),
				logger.NewField("stack", string(stack)),
			)
			taskRunsTotal.WithLabelValues(name, resultPanic).Inc()
			err = fmt.Errorf("task %s panic: %v", name, r)
			return
		}

		if err != nil {
			taskRunsTotal.WithLabelValues(name, resultError).Inc()
			return
		}
		taskRunsTotal.WithLabelValues(name, resultOK).Inc()
	}()

	return task.Do(ctx)
}
