package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/guardiao/base-security-service/internal/config"
	"github.com/guardiao/base-security-service/internal/models"
	"github.com/guardiao/base-security-service/internal/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrSuperseded is returned to a resolver whose input was replaced by a newer
// query before the settle delay elapsed.
var ErrSuperseded = errors.New("lookup superseded by newer input")

// Service answers autofill lookups: given a document number or vehicle plate,
// return the most recent access-log entry so gate operators get name, model
// and destination pre-filled. Queries go through a trailing debouncer so a
// burst of keystrokes produces one fetch; results are cached in redis with a
// short TTL.
type Service struct {
	accessLogs *store.AccessLogRepository
	redis      *redis.Client
	cfg        config.LookupConfig
	namespace  string
	logger     *zap.Logger

	debounce *Debouncer
	mu       sync.Mutex
	waiting  chan lookupResult
}

type lookupResult struct {
	entry *models.AccessLogEntry
	err   error
}

// New constructs the lookup service.
func New(accessLogs *store.AccessLogRepository, redisClient *redis.Client, cfg config.LookupConfig, namespace string, logger *zap.Logger) *Service {
	return &Service{
		accessLogs: accessLogs,
		redis:      redisClient,
		cfg:        cfg,
		namespace:  namespace,
		logger:     logger,
		debounce:   NewDebouncer(cfg.DebounceDelay),
	}
}

// Resolve answers one autofill query through the debouncer. The call waits
// for the input to settle; when a newer query arrives first the superseded
// call returns ErrSuperseded, so a stale result is never applied to the gate
// form. Identification wins when both parameters are present.
func (s *Service) Resolve(ctx context.Context, identification, plate string) (*models.AccessLogEntry, error) {
	input := "ident:" + identification
	fetch := func() (*models.AccessLogEntry, error) {
		return s.ByIdentification(ctx, identification)
	}
	if identification == "" {
		input = "plate:" + plate
		fetch = func() (*models.AccessLogEntry, error) {
			return s.ByPlate(ctx, plate)
		}
	}

	done := make(chan lookupResult, 1)
	s.mu.Lock()
	if s.waiting != nil {
		s.waiting <- lookupResult{err: ErrSuperseded}
	}
	s.waiting = done
	s.mu.Unlock()

	s.debounce.Trigger(input, func(in string) {
		entry, err := fetch()
		if s.debounce.Stale(in) {
			return
		}
		s.mu.Lock()
		if s.waiting == done {
			s.waiting = nil
			done <- lookupResult{entry: entry, err: err}
		}
		s.mu.Unlock()
	})

	select {
	case res := <-done:
		return res.entry, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close cancels any pending debounced lookup and releases its waiter.
func (s *Service) Close() {
	s.debounce.Stop()
	s.mu.Lock()
	if s.waiting != nil {
		s.waiting <- lookupResult{err: ErrSuperseded}
		s.waiting = nil
	}
	s.mu.Unlock()
}

// ByIdentification returns the latest entry for a document number.
func (s *Service) ByIdentification(ctx context.Context, identification string) (*models.AccessLogEntry, error) {
	return s.lookup(ctx, "ident:"+identification, func() (*models.AccessLogEntry, error) {
		return s.accessLogs.LatestByIdentification(ctx, identification)
	})
}

// ByPlate returns the latest entry for a vehicle plate.
func (s *Service) ByPlate(ctx context.Context, plate string) (*models.AccessLogEntry, error) {
	return s.lookup(ctx, "plate:"+plate, func() (*models.AccessLogEntry, error) {
		return s.accessLogs.LatestByPlate(ctx, plate)
	})
}

func (s *Service) lookup(ctx context.Context, key string, fetch func() (*models.AccessLogEntry, error)) (*models.AccessLogEntry, error) {
	cacheKey := fmt.Sprintf("%s:lookup:%s", s.namespace, key)

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var entry models.AccessLogEntry
			if err := json.Unmarshal([]byte(cached), &entry); err == nil {
				return &entry, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("lookup cache read failed", zap.Error(err))
		}
	}

	entry, err := fetch()
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if raw, err := json.Marshal(entry); err == nil {
			if err := s.redis.Set(ctx, cacheKey, raw, s.cfg.CacheTTL).Err(); err != nil {
				s.logger.Warn("lookup cache write failed", zap.Error(err))
			}
		}
	}
	return entry, nil
}
