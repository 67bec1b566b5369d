// internal/actions/store/store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	commonerrors "childcare-assistant/internal/common/errors"
	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/models"
)

const keyPrefix = "action:intent:"

// confirmScript is the single mechanism preventing two concurrent confirms
// from both dispatching: move pending -> confirmed only while pending and
// unexpired, as one atomic server-side step. A pending record past its
// deadline is marked expired here as well, so the caller always observes a
// one-way transition.
var confirmScript = redis.NewScript(`
local status = redis.call('HGET', KEYS[1], 'status')
if not status then
  return 'NOT_FOUND'
end
if status ~= 'pending' then
  return 'STATUS:' .. status
end
local expires = tonumber(redis.call('HGET', KEYS[1], 'expiresAtUnix'))
if tonumber(ARGV[1]) > expires then
  redis.call('HSET', KEYS[1], 'status', 'expired')
  return 'STATUS:expired'
end
redis.call('HSET', KEYS[1], 'status', 'confirmed')
return 'OK'
`)

// transitionScript moves status from ARGV[1] to ARGV[2] conditionally,
// optionally recording one terminal metadata field (ARGV[3]=name,
// ARGV[4]=value), an execution timestamp (ARGV[5]) and a retention TTL in
// seconds (ARGV[6]).
var transitionScript = redis.NewScript(`
local status = redis.call('HGET', KEYS[1], 'status')
if not status then
  return 'NOT_FOUND'
end
if status ~= ARGV[1] then
  return 'STATUS:' .. status
end
redis.call('HSET', KEYS[1], 'status', ARGV[2])
if ARGV[3] ~= '' then
  redis.call('HSET', KEYS[1], ARGV[3], ARGV[4])
end
if ARGV[5] ~= '' then
  redis.call('HSET', KEYS[1], 'executedAt', ARGV[5])
end
if tonumber(ARGV[6]) > 0 then
  redis.call('EXPIRE', KEYS[1], ARGV[6])
end
return 'OK'
`)

// Store holds staged ActionIntents in Redis. The record body is immutable
// after creation; only the status and terminal metadata hash fields move,
// and only through the conditional scripts above.
type Store struct {
	client    *redis.Client
	retention time.Duration
	logger    logger.Logger
}

func New(client *redis.Client, retention time.Duration, log logger.Logger) *Store {
	return &Store{
		client:    client,
		retention: retention,
		logger:    log.WithFields(map[string]interface{}{"component": "action-store"}),
	}
}

// Create stages a new ActionIntent in pending state. The id is an unguessable
// uuid; the preview is computed by the caller from the same params that are
// stored and later dispatched.
func (s *Store) Create(ctx context.Context, userID string, actionType models.ActionType, params map[string]interface{}, preview string, ttl time.Duration) (*models.ActionIntent, error) {
	now := time.Now().UTC()
	intent := &models.ActionIntent{
		ID:         uuid.NewString(),
		UserID:     userID,
		ActionType: actionType,
		Params:     params,
		Preview:    preview,
		Status:     models.StatusPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}

	record, err := json.Marshal(intent)
	if err != nil {
		return nil, fmt.Errorf("marshal action intent: %w", err)
	}

	key := keyPrefix + intent.ID
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		"record", record,
		"status", string(models.StatusPending),
		"expiresAtUnix", strconv.FormatInt(intent.ExpiresAt.Unix(), 10),
	)
	// Keys outlive the staging window by the retention period so terminal
	// records stay readable as audit tombstones.
	pipe.Expire(ctx, key, ttl+s.retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, commonerrors.NewStoreUnavailableError(err)
	}

	s.logger.Info("action intent staged", map[string]interface{}{
		"intentId":   intent.ID,
		"actionType": actionType,
		"expiresAt":  intent.ExpiresAt,
	})

	return intent, nil
}

// Get loads an ActionIntent and applies lazy expiry: a pending record past
// its deadline is reported (and best-effort persisted) as expired, never as
// pending.
func (s *Store) Get(ctx context.Context, id string) (*models.ActionIntent, error) {
	fields, err := s.client.HGetAll(ctx, keyPrefix+id).Result()
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(err)
	}
	if len(fields) == 0 {
		return nil, commonerrors.NewActionNotFoundError(id)
	}

	var intent models.ActionIntent
	if err := json.Unmarshal([]byte(fields["record"]), &intent); err != nil {
		return nil, fmt.Errorf("unmarshal action intent %s: %w", id, err)
	}

	intent.Status = models.ActionStatus(fields["status"])
	intent.ResultSummary = fields["resultSummary"]
	intent.FailureReason = fields["failureReason"]
	if raw := fields["executedAt"]; raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			intent.ExecutedAt = &ts
		}
	}

	if intent.Expired(time.Now().UTC()) {
		intent.Status = models.StatusExpired
		s.expirePending(ctx, id)
	}

	return &intent, nil
}

// expirePending persists lazy expiry. Conditional on pending, so a racing
// confirm is never clobbered; failure is ignored because correctness comes
// from the read-time check.
func (s *Store) expirePending(ctx context.Context, id string) {
	res, err := transitionScript.Run(ctx, s.client, []string{keyPrefix + id},
		string(models.StatusPending), string(models.StatusExpired),
		"", "", "", strconv.Itoa(int(s.retention.Seconds()))).Text()
	if err != nil || res != "OK" {
		s.logger.Debug("lazy expiry not persisted", map[string]interface{}{
			"intentId": id, "result": res,
		})
	}
}

// TransitionToConfirmed performs the atomic pending -> confirmed step.
// Any non-pending observation surfaces as the Expired error family: once the
// pending state is consumed, confirmation is not retryable.
func (s *Store) TransitionToConfirmed(ctx context.Context, id string) error {
	res, err := confirmScript.Run(ctx, s.client, []string{keyPrefix + id},
		strconv.FormatInt(time.Now().UTC().Unix(), 10)).Text()
	if err != nil {
		return commonerrors.NewStoreUnavailableError(err)
	}
	return s.mapTransitionResult(id, res)
}

// MarkExecuted resolves confirmed -> executed and records the result summary.
func (s *Store) MarkExecuted(ctx context.Context, id string, summary string) error {
	res, err := transitionScript.Run(ctx, s.client, []string{keyPrefix + id},
		string(models.StatusConfirmed), string(models.StatusExecuted),
		"resultSummary", summary,
		time.Now().UTC().Format(time.RFC3339),
		strconv.Itoa(int(s.retention.Seconds()))).Text()
	if err != nil {
		return commonerrors.NewStoreUnavailableError(err)
	}
	return s.mapTransitionResult(id, res)
}

// MarkFailed resolves confirmed -> failed and records the failure reason.
func (s *Store) MarkFailed(ctx context.Context, id string, reason string) error {
	res, err := transitionScript.Run(ctx, s.client, []string{keyPrefix + id},
		string(models.StatusConfirmed), string(models.StatusFailed),
		"failureReason", reason,
		time.Now().UTC().Format(time.RFC3339),
		strconv.Itoa(int(s.retention.Seconds()))).Text()
	if err != nil {
		return commonerrors.NewStoreUnavailableError(err)
	}
	return s.mapTransitionResult(id, res)
}

// Cancel resolves pending -> cancelled. Once confirmed, cancellation is
// refused to avoid racing in-flight execution.
func (s *Store) Cancel(ctx context.Context, id string) error {
	res, err := transitionScript.Run(ctx, s.client, []string{keyPrefix + id},
		string(models.StatusPending), string(models.StatusCancelled),
		"", "", "",
		strconv.Itoa(int(s.retention.Seconds()))).Text()
	if err != nil {
		return commonerrors.NewStoreUnavailableError(err)
	}
	return s.mapTransitionResult(id, res)
}

// SweepExpired walks staged intents and persists lazy expiry for any pending
// record past its deadline. Pure housekeeping: correctness never depends on
// this running, reads already report such records as expired. The returned
// count covers only records this pass transitioned, never ones already
// terminal.
func (s *Store) SweepExpired(ctx context.Context) (int, error) {
	var swept int
	now := time.Now().UTC().Unix()
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		vals, err := s.client.HMGet(ctx, key, "status", "expiresAtUnix").Result()
		if err != nil || len(vals) < 2 {
			continue
		}
		status, _ := vals[0].(string)
		rawExpires, _ := vals[1].(string)
		expires, convErr := strconv.ParseInt(rawExpires, 10, 64)
		if status != string(models.StatusPending) || convErr != nil || now <= expires {
			continue
		}
		// Conditional on pending, so a confirm racing the sweep wins.
		res, err := transitionScript.Run(ctx, s.client, []string{key},
			string(models.StatusPending), string(models.StatusExpired),
			"", "", "", strconv.Itoa(int(s.retention.Seconds()))).Text()
		if err == nil && res == "OK" {
			swept++
		}
	}
	return swept, iter.Err()
}

func (s *Store) mapTransitionResult(id, res string) error {
	switch {
	case res == "OK":
		return nil
	case res == "NOT_FOUND":
		return commonerrors.NewActionNotFoundError(id)
	case strings.HasPrefix(res, "STATUS:"):
		return commonerrors.NewActionExpiredError(id, strings.TrimPrefix(res, "STATUS:"))
	default:
		return fmt.Errorf("unexpected transition result %q for intent %s", res, id)
	}
}
