// Package groups — service.go содержит бизнес-логику управления группами.
// Здесь же проверяются права: воспитатель не создаёт и не удаляет группы
// и переименовывает только свою.
package groups

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
)

// Store — операции хранилища, нужные сервису групп.
// Реализуется *Repository (PostgreSQL) и подменяется в тестах.
type Store interface {
	List(ctx context.Context) ([]*Group, error)
	Get(ctx context.Context, id string) (*Group, error)
	Create(ctx context.Context, g *Group) error
	UpdateName(ctx context.Context, id, name string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	CountChildren(ctx context.Context, groupID string) (int, error)
}

// Service управляет группами.
type Service struct {
	store Store
}

// NewService создаёт сервис групп.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List возвращает группы, видимые принципалу: воспитатель видит только свою.
// Для публичного списка (экран выбора группы) principal == nil.
func (s *Service) List(ctx context.Context, principal *admin.Principal) ([]*Group, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	gid := principal.EducatorGroup()
	if gid == "" {
		return all, nil
	}
	var out []*Group
	for _, g := range all {
		if g.ID == gid {
			out = append(out, g)
		}
	}
	return out, nil
}

// Create создаёт группу. Воспитателю запрещено.
// Пустое имя заменяется на «Новая группа».
func (s *Service) Create(ctx context.Context, principal *admin.Principal, name string) (*Group, error) {
	if principal.IsEducator() {
		return nil, common.ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Новая группа"
	}
	g := &Group{ID: uuid.NewString(), Name: name}
	if err := s.store.Create(ctx, g); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"group_id": g.ID, "name": g.Name}).Info("Группа создана")
	return g, nil
}

// Rename переименовывает группу. Воспитатель — только свою.
func (s *Service) Rename(ctx context.Context, principal *admin.Principal, id, name string) error {
	if gid := principal.EducatorGroup(); gid != "" && gid != id {
		return common.ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return common.ErrEmptyName
	}
	ok, err := s.store.UpdateName(ctx, id, name)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrGroupNotFound
	}
	return nil
}

// Delete удаляет группу. Запрещено воспитателю; группа с детьми не удаляется
// (проверяется, а не каскадируется). Удаление необратимо.
func (s *Service) Delete(ctx context.Context, principal *admin.Principal, id string) error {
	if principal.IsEducator() {
		return common.ErrForbidden
	}
	count, err := s.store.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return common.ErrGroupNotEmpty
	}
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrGroupNotFound
	}
	log.WithField("group_id", id).Info("Группа удалена")
	return nil
}
