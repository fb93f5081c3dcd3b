package types

import "time"

// Verb names a primitive storage operation reported to an Observer.
type Verb string

// Storage verbs.
const (
	VerbCreateDirectory Verb = "create directory"
	VerbReadDirectory   Verb = "read directory"
	VerbWriteFile       Verb = "write file"
	VerbReadFile        Verb = "read file"
	VerbDelete          Verb = "delete"
)

// Observer is notified around every primitive storage operation. Observers
// must not affect the outcome of the operation.
type Observer interface {
	// OnOperation is called before the operation runs. path is the
	// filesystem path it targets.
	OnOperation(verb Verb, path string)

	// OnOperationDone is called after the operation with its duration and
	// result.
	OnOperationDone(verb Verb, path string, elapsed time.Duration, err error)
}
