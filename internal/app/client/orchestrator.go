package client

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"tripkeeper/internal/domain/sync"
)

// Phase is where a sync cycle currently is. AuthRetry is a sub-state entered
// from pulling or pushing while an expired credential is being refreshed.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePulling   Phase = "pulling"
	PhaseMerging   Phase = "merging"
	PhasePushing   Phase = "pushing"
	PhaseDone      Phase = "done"
	PhaseAuthRetry Phase = "auth_retry"
)

// Store is the storage surface the orchestrator needs: the record cache, the
// pending-operation queue and the transactional mutation boundary, all backed
// by the same database.
type Store interface {
	sync.LocalStore
	sync.OperationQueue
	sync.MutationStore
}

// PushReport summarizes one drain of the pending-operation queue. Per-record
// failures are isolated: one failing operation never aborts the batch.
type PushReport struct {
	Pushed   int
	Requeued int
	Flagged  int
	Dropped  int
}

// Status is a point-in-time view of the engine for callers and the CLI.
type Status struct {
	Phase         Phase
	LastPull      time.Time
	LastPush      time.Time
	OldestPending *time.Time
	Overdue       bool
}

// Orchestrator drives pull and push cycles against the remote gateway. It is
// the only component that talks to the gateway, and it reaches records only
// through the store.
type Orchestrator struct {
	store     Store
	gateway   sync.Gateway
	refresher sync.Refresher
	log       *slog.Logger

	// entityTypes is the set of entity types a pull reconciles.
	entityTypes []string

	// escalation is how long an operation may stay pending before Status
	// reports it overdue.
	escalation time.Duration

	mu       gosync.Mutex
	phase    Phase
	running  bool
	lastPull time.Time
	lastPush time.Time
}

func NewOrchestrator(store Store, gateway sync.Gateway, refresher sync.Refresher,
	entityTypes []string, escalation time.Duration, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:       store,
		gateway:     gateway,
		refresher:   refresher,
		log:         log.With("component", "sync"),
		entityTypes: entityTypes,
		escalation:  escalation,
		phase:       PhaseIdle,
	}
}

// Pull fetches the owner's authoritative records, merges them against the
// local cache and commits the result in one transaction. Any fetch failure
// aborts the whole pull with the cache untouched: stale but consistent beats
// partially merged.
func (o *Orchestrator) Pull(ctx context.Context, ownerID string) error {
	if !o.begin(PhasePulling) {
		return sync.ErrSyncInProgress
	}
	defer o.finish()

	return o.pull(ctx, ownerID)
}

func (o *Orchestrator) pull(ctx context.Context, ownerID string) error {
	o.setPhase(PhasePulling)

	var remote []sync.Record
	for _, entityType := range o.entityTypes {
		var fetched []sync.Record
		err := o.remote(ctx, func(ctx context.Context) error {
			var callErr error
			fetched, callErr = o.gateway.FetchAll(ctx, ownerID, entityType)
			return callErr
		})
		if err != nil {
			return err
		}
		remote = append(remote, fetched...)
	}

	o.setPhase(PhaseMerging)

	local, err := o.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}

	res := sync.Merge(local, remote, time.Now())
	if err := o.store.ApplyMerge(ctx, ownerID, res); err != nil {
		return err
	}

	o.mu.Lock()
	o.lastPull = time.Now()
	o.mu.Unlock()

	o.log.Debug("pull complete", "owner_id", ownerID,
		"adopted", len(res.Upserts), "removed", len(res.Deletes))
	return nil
}

// Push drains the pending-operation queue in priority-then-FIFO order. Each
// operation is confirmed remotely before it is acknowledged, so a crash in
// between re-applies an idempotent upsert rather than losing the intent.
func (o *Orchestrator) Push(ctx context.Context, ownerID string) (*PushReport, error) {
	if !o.begin(PhasePushing) {
		return nil, sync.ErrSyncInProgress
	}
	defer o.finish()

	return o.push(ctx, ownerID)
}

func (o *Orchestrator) push(ctx context.Context, ownerID string) (*PushReport, error) {
	o.setPhase(PhasePushing)

	ops, err := o.store.Drain(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	report := &PushReport{}
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			// Cancelled between operations; everything not yet applied
			// stays queued.
			return report, err
		}
		if err := o.apply(ctx, op, report); err != nil {
			return report, err
		}
	}

	o.mu.Lock()
	o.lastPush = time.Now()
	o.mu.Unlock()

	o.log.Debug("push complete", "owner_id", ownerID,
		"pushed", report.Pushed, "requeued", report.Requeued,
		"flagged", report.Flagged, "dropped", report.Dropped)
	return report, nil
}

// apply sends one operation and settles its queue entry. Settlement is
// conditional on the drained snapshot: a record mutated again while this
// snapshot was in flight keeps its dirty status, and its superseded queue row
// keeps the newer intent for the next drain. Only storage errors propagate;
// everything else is classified and isolated to this operation.
func (o *Orchestrator) apply(ctx context.Context, op sync.Operation, report *PushReport) error {
	var callErr error
	switch op.Action {
	case sync.ActionCreate, sync.ActionUpdate:
		callErr = o.remote(ctx, func(ctx context.Context) error {
			_, err := o.gateway.Upsert(ctx, op.EntityType, sync.Record{
				ID:      op.EntityID,
				OwnerID: op.OwnerID,
				Payload: op.Payload,
				Version: op.Version,
			})
			return err
		})
	case sync.ActionDelete:
		callErr = o.remote(ctx, func(ctx context.Context) error {
			return o.gateway.Delete(ctx, op.EntityType, op.EntityID)
		})
	default:
		callErr = sync.ErrValidation
	}

	switch {
	case callErr == nil:
		if err := o.store.Acknowledge(ctx, op); err != nil {
			return err
		}
		if op.Action == sync.ActionDelete {
			if err := o.store.ConfirmDelete(ctx, op.EntityType, op.EntityID, op.Version); err != nil {
				return err
			}
		} else {
			if err := o.store.MarkSynced(ctx, op.EntityType, op.EntityID, op.Version, time.Now()); err != nil && !errors.Is(err, sync.ErrNotFound) {
				return err
			}
		}
		report.Pushed++
		return nil

	case errors.Is(callErr, sync.ErrConflict):
		// A true conflict: the remote moved past the version this push
		// assumed. Keep the intent, but flagged so callers can pull fresh
		// state instead of blindly retrying the same mismatch.
		o.log.Warn("push conflict", "entity_type", op.EntityType, "entity_id", op.EntityID, "version", op.Version)
		if err := o.store.Requeue(ctx, op, true); err != nil {
			return err
		}
		report.Flagged++
		return nil

	case errors.Is(callErr, sync.ErrValidation):
		// Permanently rejected; retrying can never succeed.
		o.log.Error("operation rejected by remote, dropping",
			"entity_type", op.EntityType, "entity_id", op.EntityID, "action", op.Action)
		if err := o.store.Drop(ctx, op); err != nil {
			return err
		}
		report.Dropped++
		return nil

	case sync.IsStorage(callErr):
		return callErr

	default:
		// Network failures and exhausted credential retries both leave the
		// operation pending for the next cycle.
		o.log.Warn("push attempt failed", "entity_type", op.EntityType,
			"entity_id", op.EntityID, "attempts", op.Attempts+1, "error", callErr)
		if err := o.store.Requeue(ctx, op, false); err != nil {
			return err
		}
		report.Requeued++
		return nil
	}
}

// Cycle runs a full pull-then-push pass, the shape of the periodic background
// sync. A pull failure still lets the push run: queued local intent should
// reach the server even when the remote set cannot be fetched.
func (o *Orchestrator) Cycle(ctx context.Context, ownerID string) error {
	if !o.begin(PhasePulling) {
		return sync.ErrSyncInProgress
	}
	defer o.finish()

	pullErr := o.pull(ctx, ownerID)
	if pullErr != nil {
		o.log.Warn("pull failed", "owner_id", ownerID, "error", pullErr)
	}

	if _, err := o.push(ctx, ownerID); err != nil {
		return err
	}
	return pullErr
}

// RunPeriodic drives the background cycle until the context is cancelled.
func (o *Orchestrator) RunPeriodic(ctx context.Context, ownerID string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.log.Info("background sync stopped")
			return
		case <-ticker.C:
			if err := o.Cycle(ctx, ownerID); err != nil && !errors.Is(err, sync.ErrSyncInProgress) {
				o.log.Warn("background sync cycle failed", "error", err)
			}
		}
	}
}

// Status reports the current phase and whether any operation has been pending
// past the escalation threshold.
func (o *Orchestrator) Status(ctx context.Context, ownerID string) (Status, error) {
	oldest, err := o.store.OldestPending(ctx, ownerID)
	if err != nil {
		return Status{}, err
	}

	o.mu.Lock()
	st := Status{
		Phase:         o.phase,
		LastPull:      o.lastPull,
		LastPush:      o.lastPush,
		OldestPending: oldest,
	}
	o.mu.Unlock()

	if oldest != nil && o.escalation > 0 && time.Since(*oldest) > o.escalation {
		st.Overdue = true
	}
	return st, nil
}

// remote issues one gateway call through the bounded auth-retry wrapper,
// surfacing the refresh as the auth-retry sub-state.
func (o *Orchestrator) remote(ctx context.Context, call func(ctx context.Context) error) error {
	return withAuthRetry(ctx, refresherFunc(func(ctx context.Context, force bool) error {
		prev := o.swapPhase(PhaseAuthRetry)
		defer o.setPhase(prev)
		return o.refresher.Refresh(ctx, force)
	}), call)
}

type refresherFunc func(ctx context.Context, force bool) error

func (f refresherFunc) Refresh(ctx context.Context, force bool) error { return f(ctx, force) }

func (o *Orchestrator) begin(phase Phase) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return false
	}
	o.running = true
	o.phase = phase
	return true
}

func (o *Orchestrator) finish() {
	o.mu.Lock()
	o.phase = PhaseDone
	o.running = false
	o.mu.Unlock()
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

func (o *Orchestrator) swapPhase(p Phase) Phase {
	o.mu.Lock()
	prev := o.phase
	o.phase = p
	o.mu.Unlock()
	return prev
}
