package state

import (
	"fmt"
	"sync"
	"time"
)

// Phase is the stage of a publish job.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCreating
	PhaseUploading
	PhaseSaving
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseCreating:
		return "creating draft"
	case PhaseUploading:
		return "uploading"
	case PhaseSaving:
		return "saving draft"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Item statuses. The UI keys its badge colors on these strings.
const (
	StatusPending   = "pending"
	StatusUploading = "uploading"
	StatusUploaded  = "uploaded"
	StatusFailed    = "failed"
)

// Item is one file of the job.
type Item struct {
	Path   string
	Title  string
	Status string
	UUID   string
	Err    error
}

// Snapshot represents the latest job data available to the UI.
type Snapshot struct {
	Phase       Phase
	Items       []Item
	Current     int // index of the file being uploaded, -1 when none
	DraftURL    string
	LastError   error
	StartedAt   time.Time
	LastUpdated time.Time
}

// Running reports whether the job is still in flight.
func (s Snapshot) Running() bool {
	return s.Phase == PhaseCreating || s.Phase == PhaseUploading || s.Phase == PhaseSaving
}

// Counts returns the number of uploaded and failed items.
func (s Snapshot) Counts() (uploaded, failed int) {
	for _, it := range s.Items {
		switch it.Status {
		case StatusUploaded:
			uploaded++
		case StatusFailed:
			failed++
		}
	}
	return uploaded, failed
}

// Progress is the finished share of items in [0, 1].
func (s Snapshot) Progress() float64 {
	if len(s.Items) == 0 {
		return 0
	}
	uploaded, failed := s.Counts()
	return float64(uploaded+failed) / float64(len(s.Items))
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Begin starts a new job over items, all pending.
func (s *Store) Begin(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.snapshot = Snapshot{
		Phase:       PhaseCreating,
		Items:       cloneItems(items),
		Current:     -1,
		StartedAt:   now,
		LastUpdated: now,
	}
	for i := range s.snapshot.Items {
		s.snapshot.Items[i].Status = StatusPending
	}
}

// SetPhase moves the job to p.
func (s *Store) SetPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Phase = p
	s.snapshot.LastUpdated = time.Now()
}

// StartItem marks item i as uploading.
func (s *Store) StartItem(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.snapshot.Items) {
		return
	}
	s.snapshot.Phase = PhaseUploading
	s.snapshot.Current = i
	s.snapshot.Items[i].Status = StatusUploading
	s.snapshot.LastUpdated = time.Now()
}

// FinishItem records the outcome of item i. A nil err means uploaded.
func (s *Store) FinishItem(i int, uuid string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.snapshot.Items) {
		return
	}
	item := &s.snapshot.Items[i]
	if err != nil {
		item.Status = StatusFailed
		item.Err = err
	} else {
		item.Status = StatusUploaded
		item.UUID = uuid
	}
	s.snapshot.Current = -1
	s.snapshot.LastUpdated = time.Now()
}

// Finish ends the job. When err is non-nil the job is failed and the items
// are kept for inspection.
func (s *Store) Finish(draftURL string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Current = -1
	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.Phase = PhaseFailed
		s.snapshot.LastError = err
		return
	}
	s.snapshot.Phase = PhaseDone
	s.snapshot.DraftURL = draftURL
	s.snapshot.LastError = nil
}

// Reset returns the store to idle.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{Current: -1, LastUpdated: time.Now()}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Items = cloneItems(s.snapshot.Items)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneItems(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}
