package session

import (
	"context"
	"encoding/json"
	"fmt"
)

type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashError   FlashLevel = "error"
)

// Flash 一次性提示，重定向后的下一个页面读出并清空
type Flash struct {
	Level FlashLevel `json:"level"`
	Text  string     `json:"text"`
}

func flashKey(sid string) string { return fmt.Sprintf("fleet:flash:%s", sid) }

// PushFlash 追加到会话的提示队列，过期时间跟会话一致
func (s *AppSessionStore) PushFlash(ctx context.Context, sid string, f Flash) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, flashKey(sid), b)
	pipe.Expire(ctx, flashKey(sid), s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// PopFlashes 取出全部提示并清空；无提示时返回空切片
func (s *AppSessionStore) PopFlashes(ctx context.Context, sid string) ([]Flash, error) {
	pipe := s.rdb.TxPipeline()
	lr := pipe.LRange(ctx, flashKey(sid), 0, -1)
	pipe.Del(ctx, flashKey(sid))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	raw := lr.Val()
	out := make([]Flash, 0, len(raw))
	for _, r := range raw {
		var f Flash
		if err := json.Unmarshal([]byte(r), &f); err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}
