package navigation

import (
	"context"
	"fmt"
	"sync"

	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
)

// Screen is entered whenever it becomes the visible destination.
type Screen interface {
	Enter(ctx context.Context)
}

// ScreenFunc adapts a function to Screen.
type ScreenFunc func(ctx context.Context)

// Enter calls f.
func (f ScreenFunc) Enter(ctx context.Context) { f(ctx) }

// Leaver is implemented by screens that release state once they leave the back stack.
type Leaver interface {
	Leave(ctx context.Context)
}

// ScreenHooks builds a Screen from enter and leave callbacks. Either may be nil.
type ScreenHooks struct {
	OnEnter func(ctx context.Context)
	OnLeave func(ctx context.Context)
}

func (h ScreenHooks) Enter(ctx context.Context) {
	if h.OnEnter != nil {
		h.OnEnter(ctx)
	}
}

func (h ScreenHooks) Leave(ctx context.Context) {
	if h.OnLeave != nil {
		h.OnLeave(ctx)
	}
}

// Navigator keeps a back stack of destinations, starting at the map.
type Navigator struct {
	screens map[domain.Destination]Screen

	mu       sync.Mutex
	notifier ports.StateNotifier
	stack    []domain.Destination
}

// NewNavigator creates a navigator. Destinations without a screen are still navigable.
func NewNavigator(screens map[domain.Destination]Screen) *Navigator {
	if screens == nil {
		screens = map[domain.Destination]Screen{}
	}
	return &Navigator{
		screens: screens,
		stack:   []domain.Destination{domain.DestinationMap},
	}
}

// SetNotifier registers the receiver of state changes.
func (n *Navigator) SetNotifier(notifier ports.StateNotifier) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifier = notifier
}

// Start enters the start destination.
func (n *Navigator) Start(ctx context.Context) {
	n.enter(ctx, n.State().Current)
}

// State returns the current destination and back stack.
func (n *Navigator) State() domain.NavState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stateLocked()
}

// Navigate pushes dest. Navigating to the current destination does nothing;
// navigating to a destination already on the stack pops back to it.
func (n *Navigator) Navigate(ctx context.Context, dest domain.Destination) (domain.NavState, error) {
	if !dest.IsValid() {
		return n.State(), fmt.Errorf("%w: %q", domain.ErrUnknownDestination, dest)
	}

	n.mu.Lock()
	if n.stack[len(n.stack)-1] == dest {
		st := n.stateLocked()
		n.mu.Unlock()
		return st, nil
	}
	var left []domain.Destination
	if i := n.indexLocked(dest); i >= 0 {
		left = n.popLocked(i + 1)
	} else {
		n.stack = append(n.stack, dest)
	}
	st := n.stateLocked()
	notifier := n.notifier
	n.mu.Unlock()

	if notifier != nil {
		notifier.NotifyNav(st)
	}
	n.leave(ctx, left)
	n.enter(ctx, dest)
	return st, nil
}

// Back pops the current destination. At the start destination it does nothing.
func (n *Navigator) Back(ctx context.Context) domain.NavState {
	n.mu.Lock()
	if len(n.stack) == 1 {
		st := n.stateLocked()
		n.mu.Unlock()
		return st
	}
	left := n.popLocked(len(n.stack) - 1)
	st := n.stateLocked()
	notifier := n.notifier
	n.mu.Unlock()

	if notifier != nil {
		notifier.NotifyNav(st)
	}
	n.leave(ctx, left)
	n.enter(ctx, st.Current)
	return st
}

func (n *Navigator) enter(ctx context.Context, dest domain.Destination) {
	if screen, ok := n.screens[dest]; ok {
		screen.Enter(ctx)
	}
}

// leave notifies screens removed from the stack, topmost first.
func (n *Navigator) leave(ctx context.Context, dests []domain.Destination) {
	for i := len(dests) - 1; i >= 0; i-- {
		if l, ok := n.screens[dests[i]].(Leaver); ok {
			l.Leave(ctx)
		}
	}
}

func (n *Navigator) indexLocked(dest domain.Destination) int {
	for i, d := range n.stack {
		if d == dest {
			return i
		}
	}
	return -1
}

// popLocked truncates the stack to size and returns the removed entries.
func (n *Navigator) popLocked(size int) []domain.Destination {
	removed := append([]domain.Destination(nil), n.stack[size:]...)
	n.stack = n.stack[:size]
	return removed
}

func (n *Navigator) stateLocked() domain.NavState {
	stack := make([]domain.Destination, len(n.stack))
	copy(stack, n.stack)
	return domain.NavState{
		Current: stack[len(stack)-1],
		Stack:   stack,
	}
}

var _ ports.Navigator = (*Navigator)(nil)
