package service_test

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/mailer"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// memStore is an in-memory stand-in for the Postgres repos. It honours the
// same error contracts (ErrNotFound, ErrConflict) so service tests exercise
// real flows without a database.
type memStore struct {
	mu      sync.Mutex
	txMu    sync.Mutex
	clock   time.Time
	users   map[uuid.UUID]domain.User
	trips   map[uuid.UUID]domain.Trip
	places  map[uuid.UUID]domain.Place
	invites map[uuid.UUID]domain.Invite

	// failMarkAccepted, when set, is returned by Invites.MarkAccepted.
	failMarkAccepted error
}

func newMemStore() *memStore {
	return &memStore{
		clock:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		users:   map[uuid.UUID]domain.User{},
		trips:   map[uuid.UUID]domain.Trip{},
		places:  map[uuid.UUID]domain.Place{},
		invites: map[uuid.UUID]domain.Invite{},
	}
}

// tick returns a strictly increasing timestamp for created_at columns.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) repos() repo.Repos {
	return repo.Repos{
		Users:   memUsers{s},
		Trips:   memTrips{s},
		Places:  memPlaces{s},
		Invites: memInvites{s},
	}
}

// InTx serialises transactions and restores a snapshot when fn fails.
func (s *memStore) InTx(_ context.Context, fn func(r repo.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.cloneLocked()
	s.mu.Unlock()

	if err := fn(s.repos()); err != nil {
		s.mu.Lock()
		s.users, s.trips, s.places, s.invites = snapshot.users, snapshot.trips, snapshot.places, snapshot.invites
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) cloneLocked() *memStore {
	c := &memStore{
		users:   maps.Clone(s.users),
		trips:   map[uuid.UUID]domain.Trip{},
		places:  maps.Clone(s.places),
		invites: maps.Clone(s.invites),
	}
	for id, t := range s.trips {
		t.Collaborators = slices.Clone(t.Collaborators)
		c.trips[id] = t
	}
	return c
}

func (s *memStore) addUser(email string) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.User{ID: uuid.New(), Email: email, CreatedAt: s.tick()}
	s.users[u.ID] = u
	return u
}

func (s *memStore) trip(id uuid.UUID) domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.trips[id]
	t.Collaborators = slices.Clone(t.Collaborators)
	return t
}

func (s *memStore) inviteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invites)
}

// ---- users -----------------------------------------------------------------

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u domain.User) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.User{}, domain.ErrConflict
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = r.s.tick()
	r.s.users[u.ID] = u
	return u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

// ---- trips -----------------------------------------------------------------

type memTrips struct{ s *memStore }

func (r memTrips) Create(_ context.Context, t domain.Trip) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = uuid.New()
	t.Collaborators = []uuid.UUID{}
	t.CreatedAt = r.s.tick()
	t.UpdatedAt = t.CreatedAt
	r.s.trips[t.ID] = t
	return t, nil
}

func (r memTrips) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	t.Collaborators = slices.Clone(t.Collaborators)
	return t, nil
}

func (r memTrips) ListForMemberPaged(_ context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []domain.Trip
	for _, t := range r.s.trips {
		if t.OwnerID == userID || slices.Contains(t.Collaborators, userID) {
			all = append(all, t)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	start := min(p.Offset(), len(all))
	end := min(start+p.Limit, len(all))
	return all[start:end], total, nil
}

func (r memTrips) Update(_ context.Context, t domain.Trip) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.trips[t.ID]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	existing.Title = t.Title
	existing.Description = t.Description
	existing.StartDate = t.StartDate
	existing.EndDate = t.EndDate
	existing.UpdatedAt = r.s.tick()
	r.s.trips[t.ID] = existing
	return existing, nil
}

func (r memTrips) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.trips[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.trips, id)
	maps.DeleteFunc(r.s.places, func(_ uuid.UUID, p domain.Place) bool { return p.TripID == id })
	maps.DeleteFunc(r.s.invites, func(_ uuid.UUID, i domain.Invite) bool { return i.TripID == id })
	return nil
}

func (r memTrips) AddCollaborator(_ context.Context, tripID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.trips[tripID]
	if !ok {
		return domain.ErrNotFound
	}
	if !slices.Contains(t.Collaborators, userID) {
		t.Collaborators = append(slices.Clone(t.Collaborators), userID)
	}
	r.s.trips[tripID] = t
	return nil
}

func (r memTrips) RemoveCollaborator(_ context.Context, tripID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.trips[tripID]
	if !ok || !slices.Contains(t.Collaborators, userID) {
		return domain.ErrNotFound
	}
	t.Collaborators = slices.DeleteFunc(slices.Clone(t.Collaborators), func(id uuid.UUID) bool { return id == userID })
	r.s.trips[tripID] = t
	return nil
}

// ---- places ----------------------------------------------------------------

type memPlaces struct{ s *memStore }

func (r memPlaces) Create(_ context.Context, p domain.Place) (domain.Place, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.trips[p.TripID]; !ok {
		return domain.Place{}, domain.ErrNotFound
	}
	p.ID = uuid.New()
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	r.s.places[p.ID] = p
	return p, nil
}

func (r memPlaces) GetByID(_ context.Context, tripID, placeID uuid.UUID) (domain.Place, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.places[placeID]
	if !ok || p.TripID != tripID {
		return domain.Place{}, domain.ErrNotFound
	}
	return p, nil
}

func (r memPlaces) ListByTripID(_ context.Context, tripID uuid.UUID) ([]domain.Place, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Place{}
	for _, p := range r.s.places {
		if p.TripID == tripID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayNumber != out[j].DayNumber {
			return out[i].DayNumber < out[j].DayNumber
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r memPlaces) Update(_ context.Context, p domain.Place) (domain.Place, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.places[p.ID]
	if !ok || existing.TripID != p.TripID {
		return domain.Place{}, domain.ErrNotFound
	}
	existing.LocationName = p.LocationName
	existing.Notes = p.Notes
	existing.DayNumber = p.DayNumber
	existing.UpdatedAt = r.s.tick()
	r.s.places[p.ID] = existing
	return existing, nil
}

func (r memPlaces) Delete(_ context.Context, tripID, placeID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.places[placeID]
	if !ok || p.TripID != tripID {
		return domain.ErrNotFound
	}
	delete(r.s.places, placeID)
	return nil
}

// ---- invites ---------------------------------------------------------------

type memInvites struct{ s *memStore }

func (r memInvites) Create(_ context.Context, inv domain.Invite) (domain.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.invites {
		if existing.TokenHash == inv.TokenHash {
			return domain.Invite{}, domain.ErrConflict
		}
		if existing.TripID == inv.TripID && existing.Email == inv.Email && existing.Status == domain.InviteStatusPending {
			return domain.Invite{}, domain.ErrConflict
		}
	}
	inv.ID = uuid.New()
	inv.Token = ""
	inv.Status = domain.InviteStatusPending
	r.s.invites[inv.ID] = inv
	return inv, nil
}

func (r memInvites) HasPending(_ context.Context, tripID uuid.UUID, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invites {
		if inv.TripID == tripID && inv.Email == email && inv.Status == domain.InviteStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r memInvites) GetByTokenHash(_ context.Context, tokenHash string) (domain.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invites {
		if inv.TokenHash == tokenHash {
			return inv, nil
		}
	}
	return domain.Invite{}, domain.ErrNotFound
}

func (r memInvites) MarkAccepted(_ context.Context, id, acceptedBy uuid.UUID, at time.Time) (domain.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failMarkAccepted != nil {
		return domain.Invite{}, r.s.failMarkAccepted
	}
	inv, ok := r.s.invites[id]
	if !ok || inv.Status != domain.InviteStatusPending {
		return domain.Invite{}, domain.ErrConflict
	}
	inv.Status = domain.InviteStatusAccepted
	inv.AcceptedBy = &acceptedBy
	inv.AcceptedAt = &at
	r.s.invites[id] = inv
	return inv, nil
}

func (r memInvites) ListByTripID(_ context.Context, tripID uuid.UUID) ([]domain.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Invite{}
	for _, inv := range r.s.invites {
		if inv.TripID == tripID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memInvites) DeleteExpiredPending(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, inv := range r.s.invites {
		if inv.Status == domain.InviteStatusPending && !inv.ExpiresAt.After(cutoff) {
			delete(r.s.invites, id)
			n++
		}
	}
	return n, nil
}

// compile-time checks: the fakes must satisfy the repo interfaces.
var (
	_ repo.UserRepo   = memUsers{}
	_ repo.TripRepo   = memTrips{}
	_ repo.PlaceRepo  = memPlaces{}
	_ repo.InviteRepo = memInvites{}
	_ repo.TxRunner   = (*memStore)(nil)
)

// ---- mailer ----------------------------------------------------------------

// recordingSender captures invite emails instead of sending them.
type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.InviteEmail
	err  error
}

func (r *recordingSender) SendInvite(_ context.Context, e mailer.InviteEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, e)
	return r.err
}
