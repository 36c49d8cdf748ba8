// Package notify announces finished sessions with a desktop notification and a chime.
package notify

import (
	"sync"

	"github.com/rs/zerolog/log"

	"tomatick/internal/core/model"
	"tomatick/internal/core/session"
)

// Message returns the notification title and body for a finished session.
func Message(finished session.Type) (string, string) {
	switch finished {
	case session.TypeWork:
		return "Focus Complete!", "Time for a break."
	case session.TypeLongBreak:
		return "Long Break Over", "Let's get back to work!"
	default:
		return "Break Over", "Ready to focus again?"
	}
}

// Sender shows a desktop notification.
type Sender func(title, body string)

// Player sounds a completion chime.
type Player interface {
	Play(finished session.Type, volume int)
}

// Notifier fans a completion out to the configured outputs without blocking the caller.
type Notifier struct {
	sender Sender
	player Player

	mu                   sync.RWMutex
	notificationsEnabled bool
	soundEnabled         bool
	volume               int
}

// New creates a notifier. sender and player may be nil when unavailable.
func New(config model.Config, sender Sender, player Player) *Notifier {
	notifier := &Notifier{sender: sender, player: player}
	notifier.Configure(config)
	return notifier
}

// Configure applies the notification and sound settings.
func (notifier *Notifier) Configure(config model.Config) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.notificationsEnabled = config.System.NotificationsEnabled
	notifier.soundEnabled = config.Sounds.Enabled
	notifier.volume = config.Sounds.Volume
}

// SessionCompleted shows and sounds the completion of finished.
func (notifier *Notifier) SessionCompleted(finished session.Type) {
	notifier.mu.RLock()
	showNotification := notifier.notificationsEnabled && notifier.sender != nil
	playSound := notifier.soundEnabled && notifier.player != nil
	volume := notifier.volume
	notifier.mu.RUnlock()

	if showNotification {
		title, body := Message(finished)
		log.Debug().Str("title", title).Msg("Sending notification")
		go notifier.sender(title, body)
	}
	if playSound {
		go notifier.player.Play(finished, volume)
	}
}
