// Package toast delivers user-facing error and status notifications.
//
// The API client and session manager emit toasts on terminal failures; how
// a toast reaches the user depends on the installed Notifier. The CLI
// renders them to the terminal, tests install a Recorder, and services can
// fall back to structured logging via NewSlogNotifier.
package toast

// Variant represents the toast severity/visual treatment.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantSuccess     Variant = "success"
	VariantDestructive Variant = "destructive"
)

// Toast is one user-facing notification.
type Toast struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// Notifier is the sink toasts are pushed into. Implementations must be safe
// for concurrent use; Notify must not block on user interaction.
type Notifier interface {
	Notify(t Toast)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(t Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

// Discard is a Notifier that drops every toast.
var Discard Notifier = discardNotifier{}

type discardNotifier struct{}

func (discardNotifier) Notify(Toast) {}
