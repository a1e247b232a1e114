// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Maker определяет интерфейс для создания и проверки токенов, содержащих
// идентификатор, имя и почту пользователя. MakerImpl — реализация на HS256
// с общим секретом и фиксированным сроком жизни.
package jwt

import (
	"errors"
	"time"
)

var (
	// ErrInvalidToken токен повреждён, подписан другим ключом или не проходит проверку.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired срок действия токена истёк.
	ErrTokenExpired = errors.New("token expired")
)

// DefaultTTL время жизни токена, если в конфиге не задано иное.
const DefaultTTL = time.Hour

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	GenerateToken(userID, username, email string) (string, error)
	ParseToken(tokenStr string) (*Claims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
	now       func() time.Time
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// TTL возвращает время жизни выпускаемых токенов.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
