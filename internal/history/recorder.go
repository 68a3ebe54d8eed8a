package history

import (
	"log"

	"github.com/asaskevich/EventBus"

	"remote-sync/internal/events"
)

// Recorder appends finished transfers to a Store. Dry runs are not recorded.
type Recorder struct {
	store   *Store
	noPerms bool
}

// Attach subscribes a Recorder to completed and failed transfers on bus.
// The returned func unsubscribes it.
func Attach(bus EventBus.Bus, store *Store, noPerms bool) (func(), error) {
	r := &Recorder{store: store, noPerms: noPerms}
	if err := bus.Subscribe(events.EventTransferCompleted, r.onCompleted); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(events.EventTransferFailed, r.onFailed); err != nil {
		_ = bus.Unsubscribe(events.EventTransferCompleted, r.onCompleted)
		return nil, err
	}
	return func() {
		_ = bus.Unsubscribe(events.EventTransferCompleted, r.onCompleted)
		_ = bus.Unsubscribe(events.EventTransferFailed, r.onFailed)
	}, nil
}

func (r *Recorder) onCompleted(t events.Transfer) { r.record(t, false) }

func (r *Recorder) onFailed(t events.Transfer) { r.record(t, true) }

func (r *Recorder) record(t events.Transfer, failed bool) {
	if t.DryRun {
		return
	}
	if _, err := r.store.Add(HistoryEntry{
		LocalPath: t.LocalPath,
		Host:      t.Host,
		Pull:      t.Pull,
		NoPerms:   r.noPerms,
		Failed:    failed,
	}); err != nil {
		log.Printf("history: record %s: %v", t.RunID, err)
	}
}
