package usecase

import (
	"log"
	"strings"
)

// External collaborators the core consumes. The panel never renders
// anything itself; these are the contracts a front end (or the default
// log-backed stand-ins below) fulfill.

// LinkPresenter surfaces a task's links so the user can open each one
// explicitly. Implementations must never navigate the host view.
type LinkPresenter interface {
	PresentLinks(title string, links []string)
}

// Notifier shows a short-lived, fire-and-forget message.
type Notifier interface {
	Notify(msg string)
}

// Clipboard copies a text blob and reports whether it worked.
type Clipboard interface {
	Copy(text string) error
}

type logLinkPresenter struct{}

func (logLinkPresenter) PresentLinks(title string, links []string) {
	log.Printf("Link panel [%s]: %s", title, strings.Join(links, " "))
}

type logNotifier struct{}

func (logNotifier) Notify(msg string) {
	log.Printf("Notify: %s", msg)
}

type logClipboard struct{}

func (logClipboard) Copy(text string) error {
	log.Printf("Clipboard copy (%d bytes)", len(text))
	return nil
}

func NewLogLinkPresenter() LinkPresenter { return logLinkPresenter{} }
func NewLogNotifier() Notifier           { return logNotifier{} }
func NewLogClipboard() Clipboard         { return logClipboard{} }
