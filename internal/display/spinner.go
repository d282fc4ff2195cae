package display

import (
	"fmt"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows progress while a blocking call runs
type Spinner struct {
	d       *Display
	message string
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Spin starts a spinner with message. On a non-interactive writer it prints
// a single status line instead of animating.
func (d *Display) Spin(message string) *Spinner {
	s := &Spinner{
		d:       d,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if !d.interactive {
		d.Status(d.theme.Info(SymbolPending), message)
		close(s.done)
		return s
	}

	go s.run()
	return s
}

func (s *Spinner) run() {
	defer close(s.done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		fmt.Fprintf(s.d.out, "\r%s %s", s.d.theme.Info(spinnerFrames[i%len(spinnerFrames)]), s.message)
		select {
		case <-s.stop:
			fmt.Fprint(s.d.out, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}

// Stop ends the spinner and prints the outcome. Safe to call more than once.
func (s *Spinner) Stop(ok bool) {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
		if !s.d.interactive {
			return
		}
		if ok {
			s.d.Success(s.message + " done")
		} else {
			s.d.Error(s.message + " failed")
		}
	})
}
