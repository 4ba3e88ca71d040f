package prerequisite

import (
	"sync"

	"github.com/anandvarma/namegen"
)

var (
	attemptNames = namegen.New()
	attemptMutex sync.Mutex
)

// newAttemptID names a single evaluation so that its log lines can be correlated.
// Checks may run concurrently and the generator is shared.
func newAttemptID() string {
	attemptMutex.Lock()
	defer attemptMutex.Unlock()
	return attemptNames.Get()
}
