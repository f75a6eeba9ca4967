// Package process controls the lifetime of step subprocesses.
package process

import "time"

// WaitDelay bounds how long Wait keeps reading output pipes after the
// command was canceled. Orphaned grandchildren holding the pipes open would
// otherwise block the preprocessor forever.
var WaitDelay = 5 * time.Second
