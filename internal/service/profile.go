package service

import (
	"sync"

	"github.com/acuellar/atiende/internal/domain"
)

// ProfileStore holds the current BusinessProfile. The profile is read on every
// render and replaced wholesale by an administrator save, which takes effect
// on the next render.
type ProfileStore struct {
	mu      sync.RWMutex
	profile domain.BusinessProfile
}

// NewProfileStore creates a store seeded from configuration.
func NewProfileStore(profile domain.BusinessProfile) *ProfileStore {
	return &ProfileStore{profile: profile}
}

// Get returns a copy of the current profile.
func (s *ProfileStore) Get() domain.BusinessProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Save applies an admin profile update and marks the branding active.
func (s *ProfileStore) Save(req *domain.UpdateProfileRequest) domain.BusinessProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.Nombre = req.Nombre
	if req.Emoji != "" {
		s.profile.Emoji = req.Emoji
	}
	if req.Tagline != "" {
		s.profile.Tagline = req.Tagline
	}
	s.profile.Activo = true
	return s.profile
}
