package clipboard

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"
)

var (
	writeMu sync.Mutex
	initMu  sync.Mutex
	initErr error
	ready   bool
)

// ErrUnavailable is returned when the platform clipboard could not be initialized.
var ErrUnavailable = errors.New("clipboard unavailable")

// Init prepares the platform clipboard. Repeated calls after a success are no-ops.
func Init() error {
	initMu.Lock()
	defer initMu.Unlock()
	if ready {
		return nil
	}
	if initErr = clipboard.Init(); initErr != nil {
		return errors.Join(ErrUnavailable, initErr)
	}
	ready = true
	return nil
}

// Write performs a mutex-guarded clipboard write. It initializes the clipboard on first use.
func Write(text string) error {
	if err := Init(); err != nil {
		return err
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
