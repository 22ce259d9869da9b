package service

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/civic-report-api/internal/models"
)

type emitted struct {
	Room  string
	Event string
	Data  interface{}
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (e *recordingEmitter) Emit(_ context.Context, room, event string, data interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{Room: room, Event: event, Data: data})
}

func (e *recordingEmitter) Broadcast(ctx context.Context, event string, data interface{}) {
	e.Emit(ctx, "", event, data)
}

func (e *recordingEmitter) rooms(event string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0)
	for _, ev := range e.events {
		if ev.Event == event {
			out = append(out, ev.Room)
		}
	}
	return out
}

func (e *recordingEmitter) count(event string) int {
	return len(e.rooms(event))
}

type recordingNotifier struct {
	mu        sync.Mutex
	published []models.Notification
}

func (n *recordingNotifier) Publish(_ context.Context, notification models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = append(n.published, notification)
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) { c.calls++ }

type stubDirectory struct {
	barangays []string
	err       error
}

func (d *stubDirectory) ListBarangays(context.Context, models.Location) ([]string, error) {
	return d.barangays, d.err
}

func (d *stubDirectory) BarangayExists(_ context.Context, loc models.Location) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	for _, b := range d.barangays {
		if strings.EqualFold(b, loc.Barangay) {
			return true, nil
		}
	}
	return false, nil
}

func textUpload(name, body string) Upload {
	return Upload{
		Filename: name,
		Size:     int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

// memReports is an in-memory incident report store honouring the conditional update contract.
type memReports struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]models.IncidentReport
	deleted []int64
}

func newMemReports(seed ...models.IncidentReport) *memReports {
	m := &memReports{rows: map[int64]models.IncidentReport{}}
	for _, r := range seed {
		m.rows[r.ID] = r
		if r.ID > m.nextID {
			m.nextID = r.ID
		}
	}
	return m
}

func (m *memReports) Create(_ context.Context, r *models.IncidentReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	m.rows[r.ID] = *r
	return nil
}

func (m *memReports) GetByID(_ context.Context, id int64) (*models.IncidentReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (m *memReports) List(_ context.Context, f models.ReportFilter) ([]models.IncidentReport, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.IncidentReport, 0)
	for _, r := range m.rows {
		if f.ReporterID != nil && (r.ReporterID == nil || *r.ReporterID != *f.ReporterID) {
			continue
		}
		if f.Barangay != "" && !strings.EqualFold(f.Barangay, r.Barangay) {
			continue
		}
		if f.City != "" && !strings.EqualFold(f.City, r.City) {
			continue
		}
		if f.Status != nil && *f.Status != r.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (m *memReports) Transition(_ context.Context, t models.ReportTransition) (*models.IncidentReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[t.ID]
	if !ok || r.Status != t.From {
		return nil, sql.ErrNoRows
	}
	r.Status = t.To
	r.StatusHistory = append(append(models.StatusHistory{}, r.StatusHistory...), t.Entry)
	if t.ProofURL != nil {
		r.ProofURL = t.ProofURL
	}
	m.rows[t.ID] = r
	return &r, nil
}

func (m *memReports) Transfer(_ context.Context, t models.ReportTransfer) (*models.IncidentReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[t.ID]
	if !ok || r.Status != t.From || !strings.EqualFold(r.Barangay, t.FromBarangay) {
		return nil, sql.ErrNoRows
	}
	r.Status = models.ReportTransferred
	r.Barangay = t.NewBarangay
	r.StatusHistory = append(append(models.StatusHistory{}, r.StatusHistory...), t.Entry)
	m.rows[t.ID] = r
	return &r, nil
}

func (m *memReports) Delete(_ context.Context, id int64, scope models.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || (scope.Barangay != "" && !strings.EqualFold(scope.Barangay, r.Barangay)) {
		return sql.ErrNoRows
	}
	delete(m.rows, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// memDocuments mirrors the document request repository including the sweeper statement.
type memDocuments struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.DocumentRequest
}

func newMemDocuments() *memDocuments {
	return &memDocuments{rows: map[int64]models.DocumentRequest{}}
}

func (m *memDocuments) Create(_ context.Context, d *models.DocumentRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	d.ID = m.nextID
	d.CreatedAt = time.Now().UTC()
	d.UpdatedAt = d.CreatedAt
	m.rows[d.ID] = *d
	return nil
}

func (m *memDocuments) GetByID(_ context.Context, id int64) (*models.DocumentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &d, nil
}

func (m *memDocuments) List(_ context.Context, f models.DocumentRequestFilter) ([]models.DocumentRequest, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DocumentRequest, 0)
	for _, d := range m.rows {
		if f.RequesterID != nil && (d.RequesterID == nil || *d.RequesterID != *f.RequesterID) {
			continue
		}
		if f.Barangay != "" && !strings.EqualFold(f.Barangay, d.Barangay) {
			continue
		}
		out = append(out, d)
	}
	return out, len(out), nil
}

func (m *memDocuments) Transition(_ context.Context, t models.DocumentTransition) (*models.DocumentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[t.ID]
	if !ok || d.Status != t.From {
		return nil, sql.ErrNoRows
	}
	d.Status = t.To
	d.StatusHistory = append(append(models.StatusHistory{}, d.StatusHistory...), t.Entry)
	if t.SetDeadline {
		d.PickupDeadline = t.PickupDeadline
	}
	if t.RejectionReason != nil {
		d.RejectionReason = t.RejectionReason
	}
	m.rows[t.ID] = d
	return &d, nil
}

func (m *memDocuments) ExpireOverduePickups(_ context.Context, now time.Time, entry models.StatusHistoryEntry) ([]models.DocumentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DocumentRequest, 0)
	for id, d := range m.rows {
		if d.Status != models.DocumentReadyForPickup || d.PickupDeadline == nil || !d.PickupDeadline.Before(now) {
			continue
		}
		d.Status = models.DocumentUnclaimed
		d.StatusHistory = append(append(models.StatusHistory{}, d.StatusHistory...), entry)
		m.rows[id] = d
		out = append(out, d)
	}
	return out, nil
}
