package children

import (
	"context"
	"errors"
	"testing"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
)

type fakeStore struct {
	children map[string]*Child
	groups   map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		children: make(map[string]*Child),
		groups:   map[string]bool{"group1": true, "group2": true},
	}
}

func (s *fakeStore) List(ctx context.Context) ([]*Child, error) {
	out := make([]*Child, 0, len(s.children))
	for _, c := range s.children {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeStore) Get(ctx context.Context, id string) (*Child, error) {
	return s.children[id], nil
}

func (s *fakeStore) Create(ctx context.Context, c *Child) error {
	s.children[c.ID] = c
	return nil
}

func (s *fakeStore) Update(ctx context.Context, id, fullName string, groupID *string) (bool, error) {
	c, ok := s.children[id]
	if !ok {
		return false, nil
	}
	c.FullName = fullName
	c.GroupID = groupID
	return true, nil
}

func (s *fakeStore) DeleteWithEvents(ctx context.Context, id string) (bool, error) {
	if _, ok := s.children[id]; !ok {
		return false, nil
	}
	delete(s.children, id)
	return true, nil
}

func (s *fakeStore) GroupExists(ctx context.Context, groupID string) (bool, error) {
	return s.groups[groupID], nil
}

func addChild(s *fakeStore, id, name, groupID string) {
	c := &Child{ID: id, FullName: name}
	if groupID != "" {
		c.GroupID = &groupID
	}
	s.children[id] = c
}

var (
	rootPrincipal     = &admin.Principal{Username: "admin", Role: admin.RoleAdmin}
	educatorPrincipal = &admin.Principal{Username: "vospit1", Role: admin.RoleEducator, GroupID: "group1"}
)

func TestGetEducatorCannotSeeForeignChild(t *testing.T) {
	store := newFakeStore()
	addChild(store, "c1", "Аня", "group1")
	addChild(store, "c2", "Боря", "group2")
	svc := NewService(store)

	if _, err := svc.Get(context.Background(), educatorPrincipal, "c1"); err != nil {
		t.Fatalf("Get() своего ребёнка: %v", err)
	}

	// Чужой ребёнок неотличим от несуществующего
	_, err := svc.Get(context.Background(), educatorPrincipal, "c2")
	if !errors.Is(err, common.ErrChildNotFound) {
		t.Errorf("err = %v, want ErrChildNotFound", err)
	}

	if _, err := svc.Get(context.Background(), rootPrincipal, "c2"); err != nil {
		t.Errorf("Get() админом: %v", err)
	}
}

func TestCreateEducatorForcedToOwnGroup(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	// Присланный groupId воспитателя молча заменяется на его группу
	c, err := svc.Create(context.Background(), educatorPrincipal, "Вера", "group2")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.GroupID == nil || *c.GroupID != "group1" {
		t.Errorf("GroupID = %v, want group1", c.GroupID)
	}
}

func TestCreateDefaultsNameAndValidatesGroup(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	c, err := svc.Create(context.Background(), rootPrincipal, "  ", "group2")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.FullName != "Без имени" {
		t.Errorf("FullName = %q, want «Без имени»", c.FullName)
	}
	if c.Balance != 0 {
		t.Errorf("Balance = %d, want 0", c.Balance)
	}

	_, err = svc.Create(context.Background(), rootPrincipal, "Гоша", "no_such_group")
	if !errors.Is(err, common.ErrGroupNotFound) {
		t.Errorf("err = %v, want ErrGroupNotFound", err)
	}
}

func TestUpdateKeepsNameWhenBlank(t *testing.T) {
	store := newFakeStore()
	addChild(store, "c1", "Аня Иванова", "group1")
	svc := NewService(store)

	if err := svc.Update(context.Background(), rootPrincipal, "c1", "  ", "group2"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	c := store.children["c1"]
	if c.FullName != "Аня Иванова" {
		t.Errorf("FullName = %q, пустое имя не должно затирать", c.FullName)
	}
	if c.GroupID == nil || *c.GroupID != "group2" {
		t.Errorf("GroupID = %v, want group2", c.GroupID)
	}
}

func TestDeleteEducatorOwnGroupOnly(t *testing.T) {
	store := newFakeStore()
	addChild(store, "c1", "Аня", "group1")
	addChild(store, "c2", "Боря", "group2")
	svc := NewService(store)

	err := svc.Delete(context.Background(), educatorPrincipal, "c2")
	if !errors.Is(err, common.ErrChildNotFound) {
		t.Errorf("err = %v, want ErrChildNotFound", err)
	}
	if _, ok := store.children["c2"]; !ok {
		t.Error("чужой ребёнок удалён воспитателем")
	}

	if err := svc.Delete(context.Background(), educatorPrincipal, "c1"); err != nil {
		t.Fatalf("Delete() своего ребёнка: %v", err)
	}
	if _, ok := store.children["c1"]; ok {
		t.Error("ребёнок не удалён")
	}
}
