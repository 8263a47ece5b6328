// Package children — service.go содержит бизнес-логику карточек детей.
// Проверки прав воспитателя (только своя группа) выполняются здесь,
// а не в HTTP-слое.
package children

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
)

// Store — операции хранилища, нужные сервису детей.
// Реализуется *Repository (PostgreSQL) и подменяется в тестах.
type Store interface {
	List(ctx context.Context) ([]*Child, error)
	Get(ctx context.Context, id string) (*Child, error)
	Create(ctx context.Context, c *Child) error
	Update(ctx context.Context, id, fullName string, groupID *string) (bool, error)
	DeleteWithEvents(ctx context.Context, id string) (bool, error)
	GroupExists(ctx context.Context, groupID string) (bool, error)
}

// Service управляет карточками детей.
type Service struct {
	store Store
}

// NewService создаёт сервис детей.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List возвращает всех детей (публичный игровой экран).
func (s *Service) List(ctx context.Context) ([]*Child, error) {
	return s.store.List(ctx)
}

// Get возвращает ребёнка, доступного принципалу.
// Для воспитателя ребёнок чужой группы неотличим от несуществующего.
func (s *Service) Get(ctx context.Context, principal *admin.Principal, id string) (*Child, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || !visibleTo(principal, c) {
		return nil, common.ErrChildNotFound
	}
	return c, nil
}

// Create создаёт ребёнка. Воспитатель может создавать только в своей группе —
// присланный groupId молча заменяется на группу воспитателя (поведение API).
func (s *Service) Create(ctx context.Context, principal *admin.Principal, fullName, groupID string) (*Child, error) {
	if gid := principal.EducatorGroup(); gid != "" {
		groupID = gid
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		fullName = "Без имени"
	}

	var groupRef *string
	if groupID != "" {
		exists, err := s.store.GroupExists(ctx, groupID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, common.ErrGroupNotFound
		}
		groupRef = &groupID
	}

	c := &Child{ID: uuid.NewString(), FullName: fullName, GroupID: groupRef}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"child_id": c.ID, "full_name": c.FullName}).Info("Ребёнок создан")
	return c, nil
}

// Update обновляет ФИО и группу. Воспитатель правит только детей своей
// группы и не может перевести ребёнка в другую группу.
func (s *Service) Update(ctx context.Context, principal *admin.Principal, id, fullName, groupID string) error {
	existing, err := s.Get(ctx, principal, id)
	if err != nil {
		return err
	}

	if gid := principal.EducatorGroup(); gid != "" {
		groupID = gid
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		// Пустое имя не затирает существующее
		fullName = existing.FullName
	}

	var groupRef *string
	if groupID != "" {
		exists, err := s.store.GroupExists(ctx, groupID)
		if err != nil {
			return err
		}
		if !exists {
			return common.ErrGroupNotFound
		}
		groupRef = &groupID
	}

	ok, err := s.store.Update(ctx, id, fullName, groupRef)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrChildNotFound
	}
	return nil
}

// Delete удаляет ребёнка и каскадно все его события. Необратимо.
// Воспитатель удаляет только детей своей группы.
func (s *Service) Delete(ctx context.Context, principal *admin.Principal, id string) error {
	if _, err := s.Get(ctx, principal, id); err != nil {
		return err
	}
	ok, err := s.store.DeleteWithEvents(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrChildNotFound
	}
	log.WithField("child_id", id).Info("Ребёнок удалён вместе с событиями")
	return nil
}

// visibleTo проверяет, виден ли ребёнок принципалу.
func visibleTo(principal *admin.Principal, c *Child) bool {
	gid := principal.EducatorGroup()
	if gid == "" {
		return true
	}
	return c.GroupID != nil && *c.GroupID == gid
}
