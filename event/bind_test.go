package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// titleBar is a stand-in component for binding tests.
type titleBar struct {
	minimized int
	anySeen   []string
	closed    int
}

func (t *titleBar) onMinimize(ctx context.Context, ev Event) (any, error) {
	t.minimized++
	return nil, nil
}

func (t *titleBar) onAny(ctx context.Context, ev Event) (any, error) {
	t.anySeen = append(t.anySeen, ev.Name.String())
	return nil, nil
}

func (t *titleBar) onClose(ctx context.Context, ev Event) (any, error) {
	t.closed++
	return nil, nil
}

func titleBarBindings() *Bindings[*titleBar] {
	return NewBindings[*titleBar]().
		On("titlebar.minimize", (*titleBar).onMinimize, WithPriority(PriorityHigh)).
		OnPattern("titlebar.*", (*titleBar).onAny).
		Once("titlebar.close", (*titleBar).onClose)
}

func TestBindings_PerInstance(t *testing.T) {
	bus := newTestBus(t)
	ctx := context.Background()
	decls := titleBarBindings()

	c1 := &titleBar{}
	c2 := &titleBar{}
	require.NoError(t, decls.Bind(bus, c1))
	require.NoError(t, decls.Bind(bus, c2))

	bus.Publish(ctx, "titlebar.minimize")

	assert.Equal(t, 1, c1.minimized)
	assert.Equal(t, 1, c2.minimized)
}

func TestBindings_RebindIsIdempotent(t *testing.T) {
	bus := newTestBus(t)
	ctx := context.Background()
	decls := titleBarBindings()

	c := &titleBar{}
	require.NoError(t, decls.Bind(bus, c))
	require.NoError(t, decls.Bind(bus, c))

	bus.Publish(ctx, "titlebar.minimize")
	assert.Equal(t, 1, c.minimized)
	assert.Equal(t, 1, bus.SubscriberCount("titlebar.minimize"))
}

func TestBindings_PatternAndOnce(t *testing.T) {
	bus := newTestBus(t)
	ctx := context.Background()

	c := &titleBar{}
	require.NoError(t, titleBarBindings().Bind(bus, c))

	bus.Publish(ctx, "titlebar.close")
	bus.Publish(ctx, "titlebar.close")
	bus.Publish(ctx, "titlebar.drag")

	assert.Equal(t, 1, c.closed)
	assert.Equal(t, []string{"titlebar.close", "titlebar.close", "titlebar.drag"}, c.anySeen)
}

func TestBindings_NamespaceAppliedAtBindTime(t *testing.T) {
	bus := newTestBus(t, WithNamespace("app"))
	ctx := context.Background()

	c := &titleBar{}
	require.NoError(t, titleBarBindings().Bind(bus, c))

	bus.Publish(ctx, "titlebar.minimize")
	assert.Zero(t, c.minimized)

	bus.Publish(ctx, "app.titlebar.minimize")
	assert.Equal(t, 1, c.minimized)

	// Patterns stay raw. The pattern anchors at the start of the name,
	// so the qualified app.titlebar.minimize did not match titlebar.*.
	assert.Equal(t, []string{"titlebar.minimize"}, c.anySeen)
}

func TestBindings_NilFuncRejected(t *testing.T) {
	bus := newTestBus(t)

	decls := NewBindings[*titleBar]().On("x", nil)
	assert.ErrorIs(t, decls.Bind(bus, &titleBar{}), ErrNilHandler)
}

func TestBindings_Len(t *testing.T) {
	assert.Equal(t, 3, titleBarBindings().Len())
}
