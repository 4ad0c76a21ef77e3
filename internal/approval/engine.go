package approval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xela07ax/corpadmin-portal/internal/domain"
	"go.uber.org/zap"
)

var (
	// ErrEffectApplication — эффект одобрения не применился; заявка осталась pending.
	ErrEffectApplication = errors.New("effect application failed")
	// ErrSelfApproval — мейкер пытается утвердить собственную заявку.
	ErrSelfApproval = errors.New("maker and checker must be different admins")
)

// DecisionSignaller транслирует принятое решение подписчикам (Redis Pub/Sub).
type DecisionSignaller interface {
	BroadcastDecision(ctx context.Context, actionID string, status domain.ActionStatus) error
}

// Engine фиксирует решение чекера по pending-заявке.
//
// Последовательность "прочитать -> проверить -> применить эффект -> записать"
// выполняется как одна критическая секция на ID заявки: решения по разным
// заявкам идут параллельно, по одной — строго по очереди.
type Engine struct {
	store   ActionStore
	applier *Applier
	signals DecisionSignaller
	logger  *zap.Logger
	metrics *Metrics

	// Запрет самоутверждения (maker != checker)
	enforceDualControl bool

	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(store ActionStore, applier *Applier, signals DecisionSignaller, metrics *Metrics, enforceDualControl bool, logger *zap.Logger) *Engine {
	return &Engine{
		store:              store,
		applier:            applier,
		signals:            signals,
		logger:             logger.Named("decision-engine"),
		metrics:            metrics,
		enforceDualControl: enforceDualControl,
		now:                time.Now,
		locks:              make(map[string]*sync.Mutex),
	}
}

// Decide переводит заявку из pending в approved/rejected.
// При approve эффект применяется ДО смены статуса: одобрено == применено.
// Если эффект не применился, заявка остается pending и ошибка уходит наверх.
func (e *Engine) Decide(ctx context.Context, actionID string, approve bool, approverID, comment string) (*domain.Action, *EffectReport, error) {
	lock := e.actionLock(actionID)
	lock.Lock()
	defer lock.Unlock()

	action, err := e.store.Get(ctx, actionID)
	if err != nil {
		return nil, nil, err
	}

	status := domain.StatusRejected
	if approve {
		status = domain.StatusApproved
	}
	if err := action.CanTransitionTo(status); err != nil {
		return nil, nil, err
	}

	if e.enforceDualControl && action.InitiatedBy == approverID {
		return nil, nil, fmt.Errorf("%w: %s", ErrSelfApproval, approverID)
	}

	var report *EffectReport
	if approve {
		report, err = e.applier.Apply(ctx, action)
		if err != nil {
			e.logger.Error("effect application failed, action stays pending",
				zap.String("action_id", actionID),
				zap.String("type", string(action.Type)),
				zap.Error(err))
			if e.metrics != nil {
				e.metrics.EffectFailures.Inc()
			}
			return nil, nil, fmt.Errorf("%w: %s", ErrEffectApplication, err)
		}
	}

	updated, err := e.store.RecordDecision(ctx, actionID, status, approverID, comment, e.now().UTC())
	if err != nil {
		// Сюда можно попасть только при гонке с другим инстансом:
		// локальный lock мы держим, а БД-guard (status='pending') сработал у соседа
		return nil, nil, err
	}

	if e.metrics != nil {
		e.metrics.DecisionsTotal.WithLabelValues(string(status), string(updated.Type)).Inc()
	}

	// Сигнал для подписчиков (дашборды, шлюз). Решение уже зафиксировано,
	// поэтому сбой доставки не откатывает его — подписчики дочитают из БД.
	if e.signals != nil {
		if err := e.signals.BroadcastDecision(ctx, actionID, status); err != nil {
			e.logger.Warn("decision signal delivery failed",
				zap.String("action_id", actionID),
				zap.Error(err))
		}
	}

	e.logger.Info("maker-checker decision processed",
		zap.String("action_id", actionID),
		zap.String("reviewer", approverID),
		zap.String("result", string(status)))

	return updated, report, nil
}

// actionLock возвращает мьютекс конкретной заявки.
// Мапа растет на одну запись за заявку — объем ограничен числом заявок.
func (e *Engine) actionLock(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}
