package state

import (
	"courtside-app/internal/model"

	"github.com/charmbracelet/log"
)

// SnapshotWriter is the local persistence the store writes through.
type SnapshotWriter interface {
	SaveState(model.AppState) error
	ClearState() error
}

// PersistTo returns a listener that writes every committed state to w and
// clears it on reset. Write failures are logged and never undo a transition.
func PersistTo(w SnapshotWriter, logger *log.Logger) Listener {
	if logger == nil {
		logger = log.Default()
	}
	return func(ev Event) {
		if ev.Op == OpReset {
			if err := w.ClearState(); err != nil {
				logger.Error("clear local snapshot", "err", err)
			}
			return
		}
		if err := w.SaveState(ev.Next); err != nil {
			logger.Error("save local snapshot", "op", ev.Op, "err", err)
		}
	}
}
