package navigation

import (
	"context"
	"testing"

	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type navRecorder struct {
	states []domain.NavState
}

func (r *navRecorder) NotifyFacts(domain.FactsState) {}
func (r *navRecorder) NotifyMap(domain.MapState)     {}
func (r *navRecorder) NotifyNav(s domain.NavState)   { r.states = append(r.states, s) }

func TestNavigator_StartsOnMap(t *testing.T) {
	entered := 0
	nav := NewNavigator(map[domain.Destination]Screen{
		domain.DestinationMap: ScreenFunc(func(context.Context) { entered++ }),
	})

	st := nav.State()
	assert.Equal(t, domain.DestinationMap, st.Current)
	assert.Equal(t, []domain.Destination{domain.DestinationMap}, st.Stack)

	nav.Start(context.Background())
	assert.Equal(t, 1, entered)
}

func TestNavigator_NavigateAndBack(t *testing.T) {
	var entered []domain.Destination
	screen := func(d domain.Destination) Screen {
		return ScreenFunc(func(context.Context) { entered = append(entered, d) })
	}
	rec := &navRecorder{}
	nav := NewNavigator(map[domain.Destination]Screen{
		domain.DestinationMap:   screen(domain.DestinationMap),
		domain.DestinationFacts: screen(domain.DestinationFacts),
	})
	nav.SetNotifier(rec)

	st, err := nav.Navigate(context.Background(), domain.DestinationFacts)
	require.NoError(t, err)
	assert.Equal(t, domain.DestinationFacts, st.Current)
	assert.Equal(t, []domain.Destination{domain.DestinationMap, domain.DestinationFacts}, st.Stack)

	st = nav.Back(context.Background())
	assert.Equal(t, domain.DestinationMap, st.Current)
	assert.Len(t, st.Stack, 1)

	// Back at the root is a no-op
	st = nav.Back(context.Background())
	assert.Equal(t, domain.DestinationMap, st.Current)

	assert.Equal(t, []domain.Destination{domain.DestinationFacts, domain.DestinationMap}, entered)
	assert.Len(t, rec.states, 2)
}

func TestNavigator_SameDestinationIsNoop(t *testing.T) {
	entered := 0
	nav := NewNavigator(map[domain.Destination]Screen{
		domain.DestinationMap: ScreenFunc(func(context.Context) { entered++ }),
	})

	st, err := nav.Navigate(context.Background(), domain.DestinationMap)
	require.NoError(t, err)
	assert.Len(t, st.Stack, 1)
	assert.Equal(t, 0, entered)
}

func TestNavigator_UnknownDestination(t *testing.T) {
	nav := NewNavigator(nil)

	st, err := nav.Navigate(context.Background(), domain.Destination("settings"))
	assert.ErrorIs(t, err, domain.ErrUnknownDestination)
	assert.Equal(t, domain.DestinationMap, st.Current)
}

func TestNavigator_StateIsACopy(t *testing.T) {
	nav := NewNavigator(nil)
	st := nav.State()
	st.Stack[0] = domain.DestinationFacts

	assert.Equal(t, domain.DestinationMap, nav.State().Current)
}

func TestNavigator_LeaveOnPop(t *testing.T) {
	var events []string
	hooks := func(d domain.Destination) Screen {
		return ScreenHooks{
			OnEnter: func(context.Context) { events = append(events, "enter:"+string(d)) },
			OnLeave: func(context.Context) { events = append(events, "leave:"+string(d)) },
		}
	}
	nav := NewNavigator(map[domain.Destination]Screen{
		domain.DestinationMap:   hooks(domain.DestinationMap),
		domain.DestinationFacts: hooks(domain.DestinationFacts),
	})

	_, err := nav.Navigate(context.Background(), domain.DestinationFacts)
	require.NoError(t, err)
	nav.Back(context.Background())

	assert.Equal(t, []string{"enter:facts", "leave:facts", "enter:map"}, events)
}

func TestNavigator_NavigateToStackedDestinationPopsBack(t *testing.T) {
	left := 0
	nav := NewNavigator(map[domain.Destination]Screen{
		domain.DestinationFacts: ScreenHooks{OnLeave: func(context.Context) { left++ }},
	})

	for i := 0; i < 5; i++ {
		_, err := nav.Navigate(context.Background(), domain.DestinationFacts)
		require.NoError(t, err)
		st, err := nav.Navigate(context.Background(), domain.DestinationMap)
		require.NoError(t, err)
		assert.Equal(t, []domain.Destination{domain.DestinationMap}, st.Stack)
	}

	assert.Equal(t, 5, left)
	assert.Len(t, nav.State().Stack, 1, "alternating destinations must not grow the stack")
}
