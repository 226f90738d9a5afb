package api

import (
	"sync"

	"github.com/linesmerrill/police-case-api/models"
)

// Directory maps actor ids to the email their last token carried. Accounts
// live with the identity provider, so this is the only place an email is known.
type Directory struct {
	mu     sync.RWMutex
	emails map[string]string
}

// NewDirectory returns an empty directory
func NewDirectory() *Directory {
	return &Directory{emails: map[string]string{}}
}

// Remember records the actor's email. Actors without one are skipped.
func (d *Directory) Remember(actor *models.Actor) {
	if d == nil || actor == nil || actor.Email == "" {
		return
	}
	d.mu.Lock()
	d.emails[actor.ID] = actor.Email
	d.mu.Unlock()
}

// Email returns the last known email of the actor id
func (d *Directory) Email(id string) (string, bool) {
	if d == nil {
		return "", false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	email, ok := d.emails[id]
	return email, ok
}
