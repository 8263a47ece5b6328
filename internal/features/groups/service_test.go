package groups

import (
	"context"
	"errors"
	"testing"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
)

type fakeStore struct {
	groups    map[string]*Group
	children  map[string]int // группа → число детей
	deleteErr error          // имитация нарушения внешнего ключа при DELETE
}

func newFakeStore(groups ...*Group) *fakeStore {
	s := &fakeStore{groups: make(map[string]*Group), children: make(map[string]int)}
	for _, g := range groups {
		s.groups[g.ID] = g
	}
	return s
}

func (s *fakeStore) List(ctx context.Context) ([]*Group, error) {
	out := make([]*Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	return out, nil
}

func (s *fakeStore) Get(ctx context.Context, id string) (*Group, error) {
	return s.groups[id], nil
}

func (s *fakeStore) Create(ctx context.Context, g *Group) error {
	s.groups[g.ID] = g
	return nil
}

func (s *fakeStore) UpdateName(ctx context.Context, id, name string) (bool, error) {
	g, ok := s.groups[id]
	if !ok {
		return false, nil
	}
	g.Name = name
	return true, nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) (bool, error) {
	if s.deleteErr != nil {
		return false, s.deleteErr
	}
	if _, ok := s.groups[id]; !ok {
		return false, nil
	}
	delete(s.groups, id)
	return true, nil
}

func (s *fakeStore) CountChildren(ctx context.Context, groupID string) (int, error) {
	return s.children[groupID], nil
}

var (
	rootPrincipal     = &admin.Principal{Username: "admin", Role: admin.RoleAdmin}
	educatorPrincipal = &admin.Principal{Username: "vospit1", Role: admin.RoleEducator, GroupID: "group1"}
)

func TestListEducatorSeesOnlyOwnGroup(t *testing.T) {
	store := newFakeStore(
		&Group{ID: "group1", Name: "Солнышко"},
		&Group{ID: "group2", Name: "Ромашка"},
	)
	svc := NewService(store)

	got, err := svc.List(context.Background(), educatorPrincipal)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "group1" {
		t.Errorf("воспитатель видит %+v, want только group1", got)
	}

	got, err = svc.List(context.Background(), rootPrincipal)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("админ видит %d групп, want 2", len(got))
	}
}

func TestCreateForbiddenForEducator(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Create(context.Background(), educatorPrincipal, "Новая")
	if !errors.Is(err, common.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestCreateDefaultsName(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	g, err := svc.Create(context.Background(), rootPrincipal, "   ")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if g.Name != "Новая группа" {
		t.Errorf("Name = %q, want «Новая группа»", g.Name)
	}
	if g.ID == "" {
		t.Error("ID пустой")
	}
}

func TestRenameEducatorOwnGroupOnly(t *testing.T) {
	store := newFakeStore(
		&Group{ID: "group1", Name: "Солнышко"},
		&Group{ID: "group2", Name: "Ромашка"},
	)
	svc := NewService(store)

	if err := svc.Rename(context.Background(), educatorPrincipal, "group1", "Лучики"); err != nil {
		t.Fatalf("Rename() своей группы: %v", err)
	}
	if store.groups["group1"].Name != "Лучики" {
		t.Errorf("Name = %q, want «Лучики»", store.groups["group1"].Name)
	}

	err := svc.Rename(context.Background(), educatorPrincipal, "group2", "Чужая")
	if !errors.Is(err, common.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestRenameRejectsEmptyName(t *testing.T) {
	store := newFakeStore(&Group{ID: "group1", Name: "Солнышко"})
	svc := NewService(store)

	err := svc.Rename(context.Background(), rootPrincipal, "group1", "  ")
	if !errors.Is(err, common.ErrEmptyName) {
		t.Errorf("err = %v, want ErrEmptyName", err)
	}
}

func TestDeleteRejectsNonEmptyGroup(t *testing.T) {
	store := newFakeStore(&Group{ID: "group1", Name: "Солнышко"})
	store.children["group1"] = 3
	svc := NewService(store)

	err := svc.Delete(context.Background(), rootPrincipal, "group1")
	if !errors.Is(err, common.ErrGroupNotEmpty) {
		t.Errorf("err = %v, want ErrGroupNotEmpty", err)
	}
	if _, ok := store.groups["group1"]; !ok {
		t.Error("группа удалена, хотя в ней есть дети")
	}
}

// Ребёнка добавили между проверкой пустоты и DELETE — срабатывает
// внешний ключ, и ошибка доходит до клиента как ErrGroupNotEmpty.
func TestDeleteRacePropagatesNotEmpty(t *testing.T) {
	store := newFakeStore(&Group{ID: "group1", Name: "Солнышко"})
	store.deleteErr = common.ErrGroupNotEmpty // FK children.group_id
	svc := NewService(store)

	err := svc.Delete(context.Background(), rootPrincipal, "group1")
	if !errors.Is(err, common.ErrGroupNotEmpty) {
		t.Errorf("err = %v, want ErrGroupNotEmpty", err)
	}
	if _, ok := store.groups["group1"]; !ok {
		t.Error("группа удалена, хотя хранилище отказало")
	}
}

// Группа привязана к учётной записи воспитателя — удаление отбивается
// понятным конфликтом, а не ошибкой хранилища.
func TestDeleteGroupBoundToEducatorAccount(t *testing.T) {
	store := newFakeStore(&Group{ID: "group1", Name: "Солнышко"})
	store.deleteErr = common.ErrGroupInUse // FK admins.group_id
	svc := NewService(store)

	err := svc.Delete(context.Background(), rootPrincipal, "group1")
	if !errors.Is(err, common.ErrGroupInUse) {
		t.Errorf("err = %v, want ErrGroupInUse", err)
	}
}

func TestDeleteForbiddenForEducator(t *testing.T) {
	store := newFakeStore(&Group{ID: "group1", Name: "Солнышко"})
	svc := NewService(store)

	err := svc.Delete(context.Background(), educatorPrincipal, "group1")
	if !errors.Is(err, common.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestDeleteEmptyGroup(t *testing.T) {
	store := newFakeStore(&Group{ID: "group1", Name: "Солнышко"})
	svc := NewService(store)

	if err := svc.Delete(context.Background(), rootPrincipal, "group1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := store.groups["group1"]; ok {
		t.Error("группа не удалена")
	}

	err := svc.Delete(context.Background(), rootPrincipal, "ghost")
	if !errors.Is(err, common.ErrGroupNotFound) {
		t.Errorf("err = %v, want ErrGroupNotFound", err)
	}
}
