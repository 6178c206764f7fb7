// Package profile keeps the user's confirmed profile apart from an
// in-progress edit.
package profile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/iAmNsengi/zyyp/internal/api"
)

var ErrNotEditing = errors.New("profile is not being edited")

type Updater interface {
	UpdateProfile(ctx context.Context, u api.ProfileUpdate) (*api.Profile, error)
}

type Loader interface {
	Profile(ctx context.Context) (*api.Profile, error)
	ReadingStats(ctx context.Context) (*api.ReadingStats, error)
}

// Draft is the editable subset of a profile.
type Draft struct {
	Username  string
	Bio       string
	Interests []string
}

type Editor struct {
	mu        sync.Mutex
	confirmed api.Profile
	draft     *Draft
}

func NewEditor(p api.Profile) *Editor {
	return &Editor{confirmed: p}
}

// Confirmed returns the last server-acknowledged profile.
func (e *Editor) Confirmed() api.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.confirmed
}

func (e *Editor) Editing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft != nil
}

// Draft returns a copy of the pending edit.
func (e *Editor) Draft() (Draft, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return Draft{}, false
	}
	d := *e.draft
	d.Interests = slices.Clone(d.Interests)
	return d, true
}

// Edit starts a draft seeded from the confirmed profile.
func (e *Editor) Edit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := Draft{
		Username:  e.confirmed.Username,
		Interests: slices.Clone(e.confirmed.Interests),
	}
	if e.confirmed.Bio != nil {
		d.Bio = *e.confirmed.Bio
	}
	e.draft = &d
}

func (e *Editor) Cancel() {
	e.mu.Lock()
	e.draft = nil
	e.mu.Unlock()
}

func (e *Editor) SetUsername(name string) error {
	return e.mutate(func(d *Draft) { d.Username = name })
}

func (e *Editor) SetBio(bio string) error {
	return e.mutate(func(d *Draft) { d.Bio = bio })
}

// ToggleInterest adds slug to the draft interests or removes it.
func (e *Editor) ToggleInterest(slug string) error {
	return e.mutate(func(d *Draft) {
		if i := slices.Index(d.Interests, slug); i >= 0 {
			d.Interests = slices.Delete(d.Interests, i, i+1)
			return
		}
		d.Interests = append(d.Interests, slug)
	})
}

func (e *Editor) mutate(fn func(*Draft)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return ErrNotEditing
	}
	fn(e.draft)
	return nil
}

// Update builds the PATCH body for the fields the draft changed.
func (e *Editor) Update() (api.ProfileUpdate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return api.ProfileUpdate{}, ErrNotEditing
	}
	return diff(e.confirmed, *e.draft), nil
}

func diff(p api.Profile, d Draft) api.ProfileUpdate {
	var u api.ProfileUpdate
	if name := strings.TrimSpace(d.Username); name != p.Username {
		u.Username = &name
	}
	old := ""
	if p.Bio != nil {
		old = *p.Bio
	}
	if bio := strings.TrimSpace(d.Bio); bio != old {
		if bio == "" {
			u.ClearBio = true
		} else {
			u.Bio = &bio
		}
	}
	if !slices.Equal(d.Interests, p.Interests) {
		u.Interests = slices.Clone(d.Interests)
		if u.Interests == nil {
			u.Interests = []string{}
		}
	}
	return u
}

// Save sends the draft. On success the server copy becomes the confirmed
// profile and editing ends; on failure nothing changes.
func (e *Editor) Save(ctx context.Context, up Updater) error {
	u, err := e.Update()
	if err != nil {
		return err
	}
	p, err := up.UpdateProfile(ctx, u)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	e.mu.Lock()
	e.confirmed = *p
	e.draft = nil
	e.mu.Unlock()
	return nil
}

// Overview is everything the profile screen shows.
type Overview struct {
	Profile *api.Profile
	Stats   *api.ReadingStats
}

// Load fetches the profile and reading stats concurrently.
func Load(ctx context.Context, l Loader) (*Overview, error) {
	var ov Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := l.Profile(ctx)
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		ov.Profile = p
		return nil
	})
	g.Go(func() error {
		s, err := l.ReadingStats(ctx)
		if err != nil {
			return fmt.Errorf("loading reading stats: %w", err)
		}
		ov.Stats = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ov, nil
}
