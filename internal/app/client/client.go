package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"tripkeeper/internal/app/client/config"
	"tripkeeper/internal/domain/company"
	"tripkeeper/internal/domain/expense"
	"tripkeeper/internal/domain/sync"
	"tripkeeper/internal/domain/trip"
	"tripkeeper/internal/domain/vehicle"
)

// EntityTypes is every entity type the engine syncs for an owner.
var EntityTypes = []string{trip.EntityType, expense.EntityType, vehicle.EntityType, company.EntityType}

// App wires the offline-first client together. It is constructed explicitly
// at startup and torn down on logout or shutdown; nothing here lives in
// package-level state.
type App struct {
	config       *config.Config
	log          *slog.Logger
	session      *SessionStore
	storage      *SQLiteStorage
	gateway      *HTTPGateway
	refresher    *AuthRefresher
	orchestrator *Orchestrator

	wg     gosync.WaitGroup
	cancel context.CancelFunc
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	session, err := NewSessionStore(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}

	storage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("init local storage: %w", err)
	}

	gateway := NewHTTPGateway(cfg, session, log)
	refresher := NewAuthRefresher(cfg, session, log)
	orchestrator := NewOrchestrator(storage, gateway, refresher, EntityTypes, cfg.PendingEscalation, log)

	return &App{
		config:       cfg,
		log:          log,
		session:      session,
		storage:      storage,
		gateway:      gateway,
		refresher:    refresher,
		orchestrator: orchestrator,
	}, nil
}

// Run starts the periodic background sync and blocks until Shutdown.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.session.Authenticated() {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.orchestrator.RunPeriodic(ctx, a.session.OwnerID(), a.config.SyncInterval)
		}()
	}

	a.log.Info("client started", "server", a.config.ServerAddress, "env", a.config.Env)
	a.wg.Wait()
	return nil
}

func (a *App) Shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	if err := a.storage.Close(); err != nil {
		a.log.Warn("closing local storage", "error", err)
	}
}

func (a *App) IsAuthenticated() bool { return a.session.Authenticated() }

func (a *App) OwnerID() string { return a.session.OwnerID() }

func (a *App) Sync() *Orchestrator { return a.orchestrator }

// CheckConnection verifies the server is reachable.
func (a *App) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return a.gateway.HealthCheck(ctx)
}

// ==================== Authentication ====================

type authResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

// Login authenticates against the server and stores the session. It then
// kicks a cycle so a returning user's cache warms up immediately.
func (a *App) Login(ctx context.Context, login, password string) error {
	resp, err := a.authRequest(ctx, "/api/v1/auth/login", login, password)
	if err != nil {
		return err
	}

	err = a.session.Set(Session{
		OwnerID:      resp.UserID,
		Login:        login,
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		RefreshedAt:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	a.log.Info("signed in", "login", login)
	return nil
}

// Register creates the account server-side. The caller logs in afterwards.
func (a *App) Register(ctx context.Context, login, password string) error {
	if _, err := a.authRequest(ctx, "/api/v1/auth/register", login, password); err != nil {
		return err
	}
	a.log.Info("account registered", "login", login)
	return nil
}

// Logout tears the session down. Cached records stay on disk so a later
// login by the same owner starts warm; owner scoping keeps them isolated.
func (a *App) Logout() error {
	if a.cancel != nil {
		a.cancel()
	}
	if err := a.session.Clear(); err != nil {
		return err
	}
	a.log.Info("signed out")
	return nil
}

func (a *App) authRequest(ctx context.Context, path, login, password string) (*authResponse, error) {
	body, err := json.Marshal(struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}{Login: login, Password: password})
	if err != nil {
		return nil, fmt.Errorf("marshal auth request: %w", err)
	}

	scheme := "http://"
	if a.config.EnableTLS {
		scheme = "https://"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, scheme+a.config.ServerAddress+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &sync.NetworkError{Op: "auth request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var out struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		if out.Error != "" {
			return nil, fmt.Errorf("server rejected request: %s", out.Error)
		}
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var out authResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	return &out, nil
}

// ==================== Local mutations ====================

// saveEntity is the single local-write path: bump the version, mark the
// record dirty, queue the matching operation in the same transaction, then
// trigger an out-of-band push. The local write always succeeds or fails on
// its own; network state never blocks it.
func (a *App) saveEntity(ctx context.Context, entityType, id string, payload any) (string, error) {
	if !a.session.Authenticated() {
		return "", fmt.Errorf("not signed in; run: tripkeeper auth login")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	now := time.Now()
	action := sync.ActionUpdate
	rec := sync.Record{
		ID:         id,
		EntityType: entityType,
		OwnerID:    a.session.OwnerID(),
		Payload:    data,
		Status:     sync.StatusPendingUpload,
		UpdatedAt:  now,
	}

	if id == "" {
		rec.ID = uuid.NewString()
		rec.Version = 1
		action = sync.ActionCreate
	} else {
		existing, err := a.storage.Get(ctx, entityType, id)
		if err != nil {
			return "", err
		}
		rec.Version = existing.Version + 1
		rec.LastSyncedAt = existing.LastSyncedAt
	}

	if err := a.storage.SaveWithIntent(ctx, rec, sync.NewOperation(rec, action)); err != nil {
		return "", err
	}

	a.pushSoon()
	return rec.ID, nil
}

// DeleteEntity marks the record pending-delete and queues the remote delete;
// the row disappears locally once the server confirms.
func (a *App) DeleteEntity(ctx context.Context, entityType, id string) error {
	rec, err := a.storage.Get(ctx, entityType, id)
	if err != nil {
		return err
	}

	rec.Version++
	rec.Status = sync.StatusPendingDelete
	rec.UpdatedAt = time.Now()

	if err := a.storage.SaveWithIntent(ctx, *rec, sync.NewOperation(*rec, sync.ActionDelete)); err != nil {
		return err
	}

	a.pushSoon()
	return nil
}

// pushSoon runs one out-of-band push so a mutation reaches the server with
// low latency when online. Overlap with a running cycle is fine; the queued
// operation is picked up by the next drain.
func (a *App) pushSoon() {
	ownerID := a.session.OwnerID()
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.config.SyncInterval)
		defer cancel()
		if _, err := a.orchestrator.Push(ctx, ownerID); err != nil && !errors.Is(err, sync.ErrSyncInProgress) {
			a.log.Debug("immediate push failed, operation stays queued", "error", err)
		}
	}()
}

func (a *App) listPayloads(ctx context.Context, entityType string) ([]sync.Record, error) {
	records, err := a.storage.ListByOwner(ctx, a.session.OwnerID())
	if err != nil {
		return nil, err
	}
	var out []sync.Record
	for _, rec := range records {
		if rec.EntityType == entityType && rec.Status != sync.StatusPendingDelete {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ==================== Typed entity operations ====================

func (a *App) SaveTrip(ctx context.Context, id string, t trip.Trip) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	return a.saveEntity(ctx, trip.EntityType, id, t)
}

func (a *App) ListTrips(ctx context.Context) ([]sync.Record, error) {
	return a.listPayloads(ctx, trip.EntityType)
}

func (a *App) DeleteTrip(ctx context.Context, id string) error {
	return a.DeleteEntity(ctx, trip.EntityType, id)
}

func (a *App) SaveExpense(ctx context.Context, id string, e expense.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	return a.saveEntity(ctx, expense.EntityType, id, e)
}

func (a *App) ListExpenses(ctx context.Context) ([]sync.Record, error) {
	return a.listPayloads(ctx, expense.EntityType)
}

func (a *App) SaveVehicle(ctx context.Context, id string, v vehicle.Vehicle) (string, error) {
	if err := v.Validate(); err != nil {
		return "", err
	}
	return a.saveEntity(ctx, vehicle.EntityType, id, v)
}

func (a *App) ListVehicles(ctx context.Context) ([]sync.Record, error) {
	return a.listPayloads(ctx, vehicle.EntityType)
}

func (a *App) ListCompanyLinks(ctx context.Context) ([]sync.Record, error) {
	return a.listPayloads(ctx, company.EntityType)
}

// ActivateInvitation turns an invitation code into an active company link via
// the server-side procedure, then pulls so the new link lands in the cache.
func (a *App) ActivateInvitation(ctx context.Context, code string) (*company.Link, error) {
	args := company.ActivateArgs{Code: code}
	if err := args.Validate(); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	err := withAuthRetry(ctx, a.refresher, func(ctx context.Context) error {
		var callErr error
		raw, callErr = a.gateway.CallProcedure(ctx, company.ProcActivateInvitation, args)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	var link company.Link
	if err := json.Unmarshal(raw, &link); err != nil {
		return nil, fmt.Errorf("decode activation result: %w", err)
	}

	if err := a.orchestrator.Pull(ctx, a.session.OwnerID()); err != nil && !errors.Is(err, sync.ErrSyncInProgress) {
		a.log.Warn("pull after activation failed", "error", err)
	}
	return &link, nil
}
