// Package admin — service.go содержит логику аутентификации
// и управления сессиями.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/config"
)

// Service управляет учётными записями персонала.
type Service struct {
	repo *Repository
	cfg  *config.Config
}

// NewService создаёт сервис учётных записей.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Login проверяет логин/пароль и выдаёт токен сессии.
// Включает защиту от brute-force: 3 неудачные попытки = блокировка на 1 час.
func (s *Service) Login(ctx context.Context, username, password string) (string, *Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, common.ErrWrongPassword
	}

	// Проверяем лимит попыток
	failures, err := s.repo.GetRecentFailures(ctx, username, 1*time.Hour)
	if err != nil {
		return "", nil, err
	}
	if failures >= 3 {
		return "", nil, common.ErrTooManyAttempts
	}

	account, err := s.repo.GetAccountByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}

	// Проверяем пароль. Для несуществующего пользователя ответ тот же,
	// что и для неверного пароля.
	match := account != nil && verifyArgon2id(password, account.PasswordHash)

	// Логируем попытку
	if err := s.repo.LogAttempt(ctx, username, match); err != nil {
		log.WithError(err).Error("Ошибка записи попытки входа")
	}

	if !match {
		return "", nil, common.ErrWrongPassword
	}

	// Создаём сессию
	token := generateSecureToken()
	session := &Session{
		AccountID:    account.ID,
		SessionToken: token,
		ExpiresAt:    time.Now().Add(s.cfg.SessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return "", nil, err
	}

	principal := &Principal{
		Username: account.Username,
		Role:     account.Role,
	}
	if account.GroupID != nil {
		principal.GroupID = *account.GroupID
	}

	log.WithFields(log.Fields{
		"username": account.Username,
		"role":     account.Role,
	}).Info("Вход выполнен")

	return token, principal, nil
}

// Authenticate возвращает принципала по токену сессии.
func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, common.ErrSessionExpired
	}
	principal, err := s.repo.GetPrincipalByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, common.ErrSessionExpired
	}
	// Обновляем активность (не критично при ошибке)
	if err := s.repo.TouchSession(ctx, token); err != nil {
		log.WithError(err).Debug("Не удалось обновить активность сессии")
	}
	return principal, nil
}

// Logout отзывает сессию.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.repo.DeactivateSession(ctx, token)
}

// CreateAccount создаёт (или обновляет) учётную запись.
// Роль educator требует указания группы, роль admin — запрещает её.
func (s *Service) CreateAccount(ctx context.Context, username, password, role, groupID string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return common.ErrEmptyName
	}
	if len(password) < 6 {
		return fmt.Errorf("пароль слишком короткий (минимум 6 символов)")
	}
	switch role {
	case RoleAdmin:
		if groupID != "" {
			return fmt.Errorf("роль admin не привязывается к группе")
		}
	case RoleEducator:
		if groupID == "" {
			return fmt.Errorf("роль educator требует указания группы")
		}
	default:
		return fmt.Errorf("неизвестная роль %q (допустимы admin, educator)", role)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	account := &Account{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if groupID != "" {
		account.GroupID = &groupID
	}
	return s.repo.CreateAccount(ctx, account)
}

// CleanupSessions удаляет просроченные сессии. Запускается по cron.
func (s *Service) CleanupSessions(ctx context.Context) error {
	n, err := s.repo.DeleteExpiredSessions(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.WithField("count", n).Info("Просроченные сессии удалены")
	}
	return nil
}

// --- Криптографические утилиты ---

// Параметры Argon2id
const (
	argonMemory      uint32 = 65536 // 64 MB
	argonIterations  uint32 = 3
	argonParallelism uint8  = 2
	argonKeyLength   uint32 = 32
)

// HashPassword вычисляет Argon2id-хеш пароля со случайной солью.
// Формат: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func HashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("ошибка генерации соли: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)

	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory, argonIterations, argonParallelism, encodedSalt, encodedHash), nil
}

// verifyArgon2id проверяет пароль по хешу Argon2id.
func verifyArgon2id(password, encodedHash string) bool {
	// Парсим хеш
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	// Извлекаем параметры
	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	// Декодируем соль
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}

	// Декодируем хеш
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	// Вычисляем хеш введённого пароля
	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравниваем в постоянном времени (защита от timing attack)
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// generateSecureToken генерирует криптографически безопасный токен сессии.
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}
