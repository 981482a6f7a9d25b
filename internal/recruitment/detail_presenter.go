package recruitment

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

type Phase string

const (
	PhaseIdle         Phase = "IDLE"
	PhaseLoading      Phase = "LOADING"
	PhaseLoaded       Phase = "LOADED"
	PhaseLoadFailed   Phase = "LOAD_FAILED"
	PhaseUpdating     Phase = "UPDATING"
	PhaseUpdated      Phase = "UPDATED"
	PhaseConflicted   Phase = "CONFLICTED"
	PhaseUpdateFailed Phase = "UPDATE_FAILED"
)

var (
	ErrNoApplication    = errors.New("no application loaded")
	ErrUpdateInProgress = errors.New("status update already in progress")
	// ErrSuperseded is returned when the presenter moved to another
	// application (or was closed) before the request finished. The result
	// was discarded.
	ErrSuperseded = errors.New("result discarded, presenter moved on")
)

const subscriberBuffer = 16

// DetailState is a snapshot of the detail presenter. Application is a copy;
// changing it has no effect on the presenter.
type DetailState struct {
	Phase         Phase              `json:"phase"`
	PersonID      int64              `json:"personID"`
	Application   *ApplicationDetail `json:"application,omitempty"`
	Loading       bool               `json:"loading"`
	LoadError     string             `json:"loadError,omitempty"`
	Updating      bool               `json:"updating"`
	UpdateError   string             `json:"updateError,omitempty"`
	UpdateSuccess bool               `json:"updateSuccess"`
	Conflict      bool               `json:"conflict"`
}

// DetailPresenter drives the recruiter's view of a single application: it
// fetches on Open and runs the optimistic status update protocol. A
// version conflict triggers an automatic refetch that replaces the held
// record.
//
// Results of requests started for an earlier Open (or before Close) are
// discarded. At most one status update is in flight at a time.
type DetailPresenter struct {
	fetcher Fetcher
	updater Updater

	mu          sync.Mutex
	generation  uint64
	state       DetailState
	subscribers map[chan DetailState]struct{}
}

func NewDetailPresenter(fetcher Fetcher, updater Updater) *DetailPresenter {
	return &DetailPresenter{
		fetcher:     fetcher,
		updater:     updater,
		state:       DetailState{Phase: PhaseIdle},
		subscribers: make(map[chan DetailState]struct{}),
	}
}

// Open discards any held application and loads personID.
func (p *DetailPresenter) Open(ctx context.Context, personID int64) error {
	p.mu.Lock()
	p.generation++
	generation := p.generation
	p.state = DetailState{Phase: PhaseLoading, PersonID: personID, Loading: true}
	p.notifyLocked()
	p.mu.Unlock()

	application, err := p.fetcher.GetApplication(ctx, personID)

	p.mu.Lock()
	defer p.mu.Unlock()

	if generation != p.generation {
		log.Debug().Int64("personId", personID).Msg("Discarding stale application fetch")
		return ErrSuperseded
	}

	if err != nil {
		log.Error().Err(err).Int64("personId", personID).Msg("Failed to load application")
		p.state = DetailState{Phase: PhaseLoadFailed, PersonID: personID, LoadError: err.Error()}
		p.notifyLocked()
		return err
	}

	p.state = DetailState{Phase: PhaseLoaded, PersonID: personID, Application: application}
	p.notifyLocked()
	return nil
}

// UpdateStatus sends status with the held version. On success the held
// record takes the new status and version+1 without a refetch. On a
// version conflict the record is replaced by a fresh fetch and the conflict
// error is returned. Any other failure leaves the record untouched.
func (p *DetailPresenter) UpdateStatus(ctx context.Context, status Status) error {
	p.mu.Lock()
	if p.state.Application == nil {
		p.mu.Unlock()
		return ErrNoApplication
	}
	if p.state.Updating {
		personID := p.state.PersonID
		p.mu.Unlock()
		log.Warn().Int64("personId", personID).Msg("Ignoring status update while another is in flight")
		return ErrUpdateInProgress
	}

	generation := p.generation
	personID := p.state.PersonID
	version := p.state.Application.Version
	p.state.Phase = PhaseUpdating
	p.state.Updating = true
	p.state.UpdateError = ""
	p.state.UpdateSuccess = false
	p.state.Conflict = false
	p.notifyLocked()
	p.mu.Unlock()

	err := p.updater.UpdateStatus(ctx, personID, status, version)

	p.mu.Lock()
	if generation != p.generation {
		p.mu.Unlock()
		return ErrSuperseded
	}

	if err == nil {
		p.state.Application.Status = status
		p.state.Application.Version = version + 1
		p.state.Phase = PhaseUpdated
		p.state.Updating = false
		p.state.UpdateSuccess = true
		p.notifyLocked()
		p.mu.Unlock()
		log.Info().
			Int64("personId", personID).
			Str("status", string(status)).
			Int64("version", version+1).
			Msg("Application status updated")
		return nil
	}

	if !errors.Is(err, ErrVersionConflict) {
		p.state.Phase = PhaseUpdateFailed
		p.state.Updating = false
		p.state.UpdateError = err.Error()
		p.notifyLocked()
		p.mu.Unlock()
		log.Error().Err(err).Int64("personId", personID).Msg("Failed to update application status")
		return err
	}

	// The conflict is reported only once the resync settles. Updating stays
	// set so no second update can start against the stale version.
	p.state.Loading = true
	p.notifyLocked()
	p.mu.Unlock()

	fresh, fetchErr := p.fetcher.GetApplication(ctx, personID)

	p.mu.Lock()
	defer p.mu.Unlock()
	if generation != p.generation {
		return ErrSuperseded
	}

	p.state.Phase = PhaseConflicted
	p.state.Conflict = true
	p.state.Loading = false
	p.state.Updating = false
	if fetchErr != nil {
		log.Error().Err(fetchErr).Int64("personId", personID).Msg("Failed to resync application after conflict")
		p.state.UpdateError = fetchErr.Error()
	} else {
		p.state.Application = fresh
		log.Info().
			Int64("personId", personID).
			Int64("version", fresh.Version).
			Msg("Application resynced after version conflict")
	}
	p.notifyLocked()
	return err
}

// State returns a snapshot safe to keep and modify.
func (p *DetailPresenter) State() DetailState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// DismissResult clears the success, conflict and update error flags.
func (p *DetailPresenter) DismissResult() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.UpdateSuccess = false
	p.state.Conflict = false
	p.state.UpdateError = ""
	switch p.state.Phase {
	case PhaseUpdated, PhaseConflicted, PhaseUpdateFailed:
		if !p.state.Updating {
			p.state.Phase = PhaseLoaded
		}
	}
	p.notifyLocked()
}

// Close drops the held application. Requests still in flight finish but
// their results are discarded.
func (p *DetailPresenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	p.state = DetailState{Phase: PhaseIdle}
	p.notifyLocked()
}

// Subscribe returns a channel receiving a snapshot after every state
// change, and a function to stop the subscription. Snapshots are dropped
// when the subscriber falls behind.
func (p *DetailPresenter) Subscribe() (<-chan DetailState, func()) {
	ch := make(chan DetailState, subscriberBuffer)

	p.mu.Lock()
	p.subscribers[ch] = struct{}{}
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subscribers, ch)
			p.mu.Unlock()
			close(ch)
		})
	}
}

func (p *DetailPresenter) snapshotLocked() DetailState {
	snapshot := p.state
	snapshot.Application = p.state.Application.Clone()
	return snapshot
}

func (p *DetailPresenter) notifyLocked() {
	if len(p.subscribers) == 0 {
		return
	}
	snapshot := p.snapshotLocked()
	for ch := range p.subscribers {
		select {
		case ch <- snapshot:
		default:
			log.Warn().
				Str("phase", string(snapshot.Phase)).
				Msg("Detail subscriber buffer full, dropping state")
		}
	}
}
