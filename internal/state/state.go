package state

import (
	"sync"

	"github.com/rook-computer/hsbposter/internal/hsb"
)

type Phase int

const (
	BOOTING Phase = iota
	READY
	RENDERING
	DONE
	ERROR
)

func (p Phase) String() string {
	switch p {
	case BOOTING:
		return "booting"
	case READY:
		return "ready"
	case RENDERING:
		return "rendering"
	case DONE:
		return "done"
	case ERROR:
		return "error"
	default:
		return "unknown"
	}
}

// Params describes one poster. Colors are already normalized.
type Params struct {
	Title      string
	Subtitle   string
	Base       hsb.Color
	Background hsb.Color
	Foreground hsb.Color
	Rows       int
	Cols       int
	HueStep    float64 // degrees added per grid cell
	Shade      float64 // brightness percentage of the lower triangle
	QRPayload  string
}

type State struct {
	Phase    Phase
	Poster   Params
	Revision uint64 // bumped on every poster change
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore(poster Params) *Store {
	return &Store{state: State{Phase: BOOTING, Poster: poster}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	store.mu.Unlock()
}

func (store *Store) UpdatePoster(poster Params) {
	store.mu.Lock()
	store.state.Poster = poster
	store.state.Revision++
	store.mu.Unlock()
}

// UpdateBase replaces the base color and returns the new revision.
func (store *Store) UpdateBase(base hsb.Color) uint64 {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.state.Poster.Base = base
	store.state.Revision++
	return store.state.Revision
}
