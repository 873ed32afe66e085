package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/court-booking/internal/model"
	"github.com/iliyamo/court-booking/internal/queue"
	"github.com/iliyamo/court-booking/internal/repository"
)

// testNow is a Tuesday morning; every fixture date is relative to it.
var testNow = time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

// memStore is an in-memory BookingStore.  Insert performs the overlap
// check under the same lock as the append, like the MySQL store does with
// its court/day lock row.
type memStore struct {
	mu   sync.Mutex
	rows []model.Booking

	// queryGate, when set, holds every Query until all callers counted in
	// the WaitGroup have arrived, forcing concurrent creates past the
	// availability pre-check together.
	queryGate *sync.WaitGroup

	failQuery  error
	failInsert error

	// reversed returns query results newest first, to catch callers that
	// rely on the store's ordering.
	reversed bool
}

func (m *memStore) Insert(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert != nil {
		return m.failInsert
	}
	want, err := bookingInterval(*b)
	if err != nil {
		return err
	}
	for _, r := range m.rows {
		if r.ID == b.ID {
			return repository.ErrConflict
		}
		if r.Status != model.StatusActive || r.CourtID != b.CourtID || r.Date != b.Date {
			continue
		}
		iv, _ := bookingInterval(r)
		if Overlaps(want, iv) {
			return repository.ErrConflict
		}
	}
	m.rows = append(m.rows, *b)
	return nil
}

func (m *memStore) Query(_ context.Context, f model.BookingFilter) ([]model.Booking, error) {
	if m.queryGate != nil {
		m.queryGate.Done()
		m.queryGate.Wait()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failQuery != nil {
		return nil, m.failQuery
	}
	out := make([]model.Booking, 0)
	for _, r := range m.rows {
		if matches(r, f) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	if m.reversed {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			if m.rows[i].Status != model.StatusActive {
				return nil, repository.ErrNotActive
			}
			m.rows[i].Status = status
			b := m.rows[i]
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

// seed stores a booking without any policy checks.
func (m *memStore) seed(id, court, user, date, start, end string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, model.Booking{
		ID: id, CourtID: court, UserID: user, Date: date,
		StartTime: start, EndTime: end,
		Type: model.TypePrivate, Status: model.StatusActive, Price: 25,
	})
}

func (m *memStore) activeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.Status == model.StatusActive {
			n++
		}
	}
	return n
}

func matches(b model.Booking, f model.BookingFilter) bool {
	if f.ID != "" && b.ID != f.ID {
		return false
	}
	if f.CourtID != "" && b.CourtID != f.CourtID {
		return false
	}
	if len(f.CourtIDs) > 0 {
		found := false
		for _, id := range f.CourtIDs {
			if id == b.CourtID {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if f.Date != "" && b.Date != f.Date {
		return false
	}
	if f.UserID != "" && b.UserID != f.UserID {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.DateFrom != "" && b.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && b.Date > f.DateTo {
		return false
	}
	return true
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Event)
	}
	return out
}

type stubCourts struct {
	courts map[string]model.Court
	err    error
}

func (s stubCourts) GetCourt(_ context.Context, id string) (*model.Court, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.courts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s stubCourts) CourtIDsByClub(_ context.Context, clubID string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	ids := make([]string, 0)
	for id, c := range s.courts {
		if c.ClubID == clubID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

var errStoreDown = errors.New("store unavailable")

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testSettings() Settings {
	s := DefaultSettings()
	s.Policy.Location = time.UTC
	return s
}

func newTestService(store *memStore, opts ...func(*Deps)) *BookingService {
	d := Deps{
		Store: store,
		Log:   discardLogger(),
		Now:   func() time.Time { return testNow },
	}
	for _, o := range opts {
		o(&d)
	}
	return NewBookingService(d, testSettings())
}
