package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
)

// CeremonyStore 保存 passkey 注册/登录过程中的 challenge，短 TTL
type CeremonyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCeremonyStore(rdb *redis.Client, ttl time.Duration) *CeremonyStore {
	return &CeremonyStore{rdb: rdb, ttl: ttl}
}

// 注册按邀请 token 关联，登录按临时 sid 关联
func regKey(inviteToken string) string { return fmt.Sprintf("fleet:webauthn:reg:%s", inviteToken) }
func loginKey(sid string) string       { return fmt.Sprintf("fleet:webauthn:login:%s", sid) }

func (s *CeremonyStore) SaveRegistration(ctx context.Context, inviteToken string, sd *webauthn.SessionData) error {
	return putJSON(ctx, s.rdb, regKey(inviteToken), sd, s.ttl)
}

// TakeRegistration returns the pending registration challenge and consumes it.
func (s *CeremonyStore) TakeRegistration(ctx context.Context, inviteToken string) (*webauthn.SessionData, error) {
	return takeJSON[webauthn.SessionData](ctx, s.rdb, regKey(inviteToken))
}

func (s *CeremonyStore) SaveLogin(ctx context.Context, sid string, sd *webauthn.SessionData) error {
	return putJSON(ctx, s.rdb, loginKey(sid), sd, s.ttl)
}

func (s *CeremonyStore) TakeLogin(ctx context.Context, sid string) (*webauthn.SessionData, error) {
	return takeJSON[webauthn.SessionData](ctx, s.rdb, loginKey(sid))
}
