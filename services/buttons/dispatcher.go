package buttons

import (
	"context"
	"log/slog"

	"badgecode-go/bus"
	"badgecode-go/services/signal"
	"badgecode-go/services/state"
	"badgecode-go/types"
	"badgecode-go/x/logx"
)

var topicBlink = bus.T("indicator", "blink")

// Dispatcher consumes presses and acts on them.
type Dispatcher struct {
	presses *signal.Keyed[types.Button]
	screen  *signal.Signal[types.Screen]
	store   *state.Store
	onSync  func()
	conn    *bus.Connection
	log     *slog.Logger
}

// NewDispatcher wires the press consumer. sync may be nil when the radio is
// unavailable; conn may be nil.
func NewDispatcher(presses *signal.Keyed[types.Button], screen *signal.Signal[types.Screen], store *state.Store, sync func(), conn *bus.Connection, log *slog.Logger) *Dispatcher {
	return &Dispatcher{presses: presses, screen: screen, store: store, onSync: sync, conn: conn, log: logx.Or(log)}
}

// Handle applies the action mapped to b and returns it.
func (d *Dispatcher) Handle(b types.Button) types.Action {
	a := types.ActionFor(b)
	switch a {
	case types.ActionSync:
		if d.onSync == nil {
			d.log.Info("buttons: sync requested without a radio")
			return types.ActionNone
		}
		d.onSync()
	case types.ActionFull:
		d.blink(1)
		d.screen.Post(types.ScreenFull)
	case types.ActionNextImage:
		d.blink(1)
		d.store.Images.Next()
		d.screen.Post(types.ScreenImage)
	case types.ActionPrevImage:
		d.blink(1)
		d.store.Images.Prev()
		d.screen.Post(types.ScreenImage)
	case types.ActionToggleMode:
		d.blink(1)
		m := d.store.Mode.Toggle()
		d.log.Info("buttons: mode", "mode", m.String())
		// The body changes shape, so everything below the header is stale.
		d.screen.Post(types.ScreenFull)
	}
	return a
}

// Run handles presses until ctx ends.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		b, err := d.presses.Wait(ctx)
		if err != nil {
			return
		}
		d.Handle(b)
	}
}

func (d *Dispatcher) blink(n int) {
	if d.conn == nil {
		return
	}
	d.conn.Publish(d.conn.NewMessage(topicBlink, types.Blink{Count: n}, false))
}
