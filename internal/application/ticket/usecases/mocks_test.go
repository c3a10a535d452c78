package usecases

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/storage"
	"github.com/orris-inc/ticketdesk/internal/shared/biztime"
	"github.com/orris-inc/ticketdesk/internal/shared/errors"
)

type mockTicketRepository struct {
	CreateFunc  func(ctx context.Context, t *ticket.Ticket) error
	UpdateFunc  func(ctx context.Context, t *ticket.Ticket) error
	DeleteFunc  func(ctx context.Context, ticketID string) error
	GetByIDFunc func(ctx context.Context, ticketID string) (*ticket.Ticket, error)
	ListFunc    func(ctx context.Context, filter ticket.ListFilter) ([]*ticket.Ticket, error)

	FindByStorageNameFunc func(ctx context.Context, storageName string) (*ticket.Ticket, error)
}

func (m *mockTicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	return nil
}

func (m *mockTicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, t)
	}
	return nil
}

func (m *mockTicketRepository) Delete(ctx context.Context, ticketID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ticketID)
	}
	return nil
}

func (m *mockTicketRepository) GetByID(ctx context.Context, ticketID string) (*ticket.Ticket, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, ticketID)
	}
	return nil, errors.NewNotFoundError("ticket not found")
}

func (m *mockTicketRepository) List(ctx context.Context, filter ticket.ListFilter) ([]*ticket.Ticket, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockTicketRepository) FindByStorageName(ctx context.Context, storageName string) (*ticket.Ticket, error) {
	if m.FindByStorageNameFunc != nil {
		return m.FindByStorageNameFunc(ctx, storageName)
	}
	return nil, errors.NewNotFoundError("attachment not found")
}

// memRepo wires a mockTicketRepository to an in-memory table with the same
// version check as the database repository. Each load returns a fresh copy.
type memRepo struct {
	*mockTicketRepository
	mu   sync.Mutex
	rows map[string]*ticket.Ticket
	// order of creation, oldest first
	order []string
}

func newMemRepo() *memRepo {
	r := &memRepo{
		mockTicketRepository: &mockTicketRepository{},
		rows:                 map[string]*ticket.Ticket{},
	}
	r.CreateFunc = r.create
	r.UpdateFunc = r.update
	r.DeleteFunc = r.delete
	r.GetByIDFunc = r.get
	r.ListFunc = r.list
	r.FindByStorageNameFunc = r.findByStorageName
	return r
}

func (r *memRepo) create(_ context.Context, t *ticket.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[t.ID()]; ok {
		return errors.NewConflictError("ticket already exists")
	}
	t.MarkPersisted()
	r.rows[t.ID()] = clone(t)
	r.order = append(r.order, t.ID())
	return nil
}

func (r *memRepo) update(_ context.Context, t *ticket.Ticket) error {
	if t.Version() == t.BaseVersion() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[t.ID()]
	if !ok {
		return errors.NewNotFoundError("ticket not found", "ticket_id="+t.ID())
	}
	if cur.Version() != t.BaseVersion() {
		return errors.NewConflictError("ticket was modified by another request", "ticket_id="+t.ID())
	}
	t.MarkPersisted()
	r.rows[t.ID()] = clone(t)
	return nil
}

func (r *memRepo) delete(_ context.Context, ticketID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[ticketID]; !ok {
		return errors.NewNotFoundError("ticket not found", "ticket_id="+ticketID)
	}
	delete(r.rows, ticketID)
	for i, id := range r.order {
		if id == ticketID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memRepo) get(_ context.Context, ticketID string) (*ticket.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[ticketID]
	if !ok {
		return nil, errors.NewNotFoundError("ticket not found", "ticket_id="+ticketID)
	}
	return clone(t), nil
}

func (r *memRepo) list(_ context.Context, _ ticket.ListFilter) ([]*ticket.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*ticket.Ticket, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, clone(r.rows[r.order[i]]))
	}
	return out, nil
}

// stored returns the committed copy for assertions.
func (r *memRepo) stored(ticketID string) *ticket.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.rows[ticketID]; ok {
		return clone(t)
	}
	return nil
}

func clone(t *ticket.Ticket) *ticket.Ticket {
	entries := make([]*ticket.Entry, 0, len(t.Entries()))
	for _, e := range t.Entries() {
		atts := make([]*ticket.Attachment, 0, len(e.Attachments()))
		for _, a := range e.Attachments() {
			c, err := ticket.ReconstructAttachment(a.ID(), a.OriginalName(), a.StorageName(), a.ContentType(), a.Checksum(), a.SizeBytes(), a.UploadedAt())
			if err != nil {
				panic(err)
			}
			atts = append(atts, c)
		}
		c, err := ticket.ReconstructEntry(e.ID(), e.Step(), e.Solution(), atts, e.AddedAt())
		if err != nil {
			panic(err)
		}
		entries = append(entries, c)
	}
	c, err := ticket.ReconstructTicket(t.ID(), t.Title(), entries, t.Version(), t.CreatedAt(), t.UpdatedAt())
	if err != nil {
		panic(err)
	}
	return c
}

// mockFileStore keeps objects in memory. The *Err fields inject failures.
type mockFileStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	modTimes  map[string]time.Time
	seq       int
	SaveErr   func(originalName string) error
	DeleteErr func(storageName string) error
	Deleted   []string
}

func newMockFileStore() *mockFileStore {
	return &mockFileStore{
		objects:  map[string][]byte{},
		modTimes: map[string]time.Time{},
	}
}

func (s *mockFileStore) Save(_ context.Context, originalName string, r io.Reader, _ string) (storage.StoredFile, error) {
	if s.SaveErr != nil {
		if err := s.SaveErr(originalName); err != nil {
			return storage.StoredFile{}, err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.StoredFile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	name := fmt.Sprintf("obj-%03d%s", s.seq, extOf(originalName))
	s.objects[name] = data
	s.modTimes[name] = biztime.NowUTC()
	return storage.StoredFile{StorageName: name, SizeBytes: int64(len(data)), Checksum: fmt.Sprintf("sum-%d", len(data))}, nil
}

func (s *mockFileStore) Delete(_ context.Context, storageName string) error {
	if s.DeleteErr != nil {
		if err := s.DeleteErr(storageName); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[storageName]; !ok {
		return storage.ErrNotExist
	}
	delete(s.objects, storageName)
	delete(s.modTimes, storageName)
	s.Deleted = append(s.Deleted, storageName)
	return nil
}

func (s *mockFileStore) Open(_ context.Context, storageName string) (io.ReadCloser, storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[storageName]
	if !ok {
		return nil, storage.Object{}, storage.ErrNotExist
	}
	obj := storage.Object{Name: storageName, SizeBytes: int64(len(data)), ModTime: s.modTimes[storageName]}
	return io.NopCloser(bytes.NewReader(data)), obj, nil
}

func (s *mockFileStore) List(_ context.Context) ([]storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.Object, 0, len(s.objects))
	for name, data := range s.objects {
		out = append(out, storage.Object{Name: name, SizeBytes: int64(len(data)), ModTime: s.modTimes[name]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// put adds an object directly, bypassing Save.
func (s *mockFileStore) put(name string, data []byte, modTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = data
	s.modTimes[name] = modTime
}

func (s *mockFileStore) has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[name]
	return ok
}

func (s *mockFileStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func extOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i:]
		}
	}
	return ""
}

func upload(name, body string) UploadFile {
	return UploadFile{OriginalName: name, ContentType: "text/plain", Content: bytes.NewBufferString(body)}
}

func strPtr(s string) *string { return &s }

func (r *memRepo) findByStorageName(_ context.Context, storageName string) (*ticket.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if t := r.rows[id]; t.AttachmentByStorageName(storageName) != nil {
			return clone(t), nil
		}
	}
	return nil, errors.NewNotFoundError("attachment not found", "storage_name="+storageName)
}
