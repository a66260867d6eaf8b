// Package client holds the diary client state machine and its HTTP transport.
package client

import (
	"errors"
	"regexp"
)

// View is one screen of the diary client
type View string

const (
	ViewCamera      View = "camera"
	ViewRecognizing View = "recognizing"
	ViewReviewing   View = "reviewing"
	ViewManualEntry View = "manual-entry"
	ViewDiary       View = "diary"
	ViewStats       View = "stats"
)

var (
	ErrNameRequired      = errors.New("food name is required")
	ErrNoSelection       = errors.New("no suggestion selected")
	ErrInvalidTransition = errors.New("action not available in the current view")
	ErrNoImage           = errors.New("no image provided")
	ErrClosed            = errors.New("client is closed")
)

// AdvisoryCameraUnavailable is shown when photo capture is attempted off a handheld device
const AdvisoryCameraUnavailable = "Funzione fotocamera disponibile solo da mobile. " +
	"Per scattare una foto, accedi all'app dal tuo smartphone. " +
	"Puoi comunque caricare un'immagine usando il pulsante \"Carica\"."

var mobileAgent = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// IsMobileUserAgent reports whether the user agent belongs to a handheld device
func IsMobileUserAgent(ua string) bool {
	return mobileAgent.MatchString(ua)
}
