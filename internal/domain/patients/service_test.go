package patients

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	items map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.items {
		if search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			result = append(result, p)
		}
	}
	return result, len(result), nil
}

func TestCreatePatient(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Patient{Name: "Amina Begum"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected generated id")
	}
}

func TestCreatePatient_MissingName(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Create(context.Background(), &Patient{}); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestListPatients_Search(t *testing.T) {
	svc := NewService(newMockRepo())
	svc.Create(context.Background(), &Patient{Name: "Amina Begum"})
	svc.Create(context.Background(), &Patient{Name: "Rahim Uddin"})

	items, total, err := svc.List(context.Background(), "amina", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("got %d matches, want 1", total)
	}
}

func TestDeletePatient(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Patient{Name: "Amina Begum"}
	svc.Create(context.Background(), p)
	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), p.ID); err == nil {
		t.Error("expected not found after delete")
	}
}
