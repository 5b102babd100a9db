package session

import (
	"context"
	"encoding/json"
	"fmt"
)

// Persisted keys, namespaced per session
const (
	tokenKey   = "authToken"
	profileKey = "userData"
)

// Profile is the cached user claims record. It is trust-on-cache: guard
// decisions read it locally and only ValidateToken re-checks the server.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	UserType    string `json:"userType,omitempty"`
	Role        string `json:"role,omitempty"`
}

// Session is an explicit session object constructed at startup or per
// request and passed to whatever needs it. There is no package-level
// singleton.
type Session struct {
	store Store
	ns    string

	Token   string
	Profile Profile
}

// New returns an empty, unauthenticated session bound to a store namespace
func New(store Store, namespace string) *Session {
	return &Session{store: store, ns: namespace}
}

// Load reads the persisted session for a namespace. An absent or malformed
// profile degrades to an empty record; only store failures surface as errors.
func Load(ctx context.Context, store Store, namespace string) (*Session, error) {
	s := New(store, namespace)

	token, _, err := store.Get(ctx, s.key(tokenKey))
	if err != nil {
		return nil, fmt.Errorf("failed to read session token: %w", err)
	}
	s.Token = token

	raw, ok, err := store.Get(ctx, s.key(profileKey))
	if err != nil {
		return nil, fmt.Errorf("failed to read session profile: %w", err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &s.Profile); err != nil {
			s.Profile = Profile{}
		}
	}

	return s, nil
}

// Save persists the token and profile under the session namespace
func (s *Session) Save(ctx context.Context) error {
	if err := s.store.Set(ctx, s.key(tokenKey), s.Token); err != nil {
		return fmt.Errorf("failed to persist session token: %w", err)
	}

	raw, err := json.Marshal(s.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode session profile: %w", err)
	}
	if err := s.store.Set(ctx, s.key(profileKey), string(raw)); err != nil {
		return fmt.Errorf("failed to persist session profile: %w", err)
	}

	return nil
}

// Clear removes the persisted session and resets the in-memory copy
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.key(tokenKey), s.key(profileKey)); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.Token = ""
	s.Profile = Profile{}
	return nil
}

// UpdateProfile merges non-empty fields over the cached profile and persists
func (s *Session) UpdateProfile(ctx context.Context, p Profile) error {
	if p.ID != "" {
		s.Profile.ID = p.ID
	}
	if p.Email != "" {
		s.Profile.Email = p.Email
	}
	if p.DisplayName != "" {
		s.Profile.DisplayName = p.DisplayName
	}
	if p.UserType != "" {
		s.Profile.UserType = p.UserType
	}
	if p.Role != "" {
		s.Profile.Role = p.Role
	}

	return s.Save(ctx)
}

func (s *Session) key(name string) string {
	return "session:" + s.ns + ":" + name
}
