package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/MinseoYoo/page-mind/internal/agent/model"
	errx "github.com/MinseoYoo/page-mind/internal/core/error"
	logx "github.com/MinseoYoo/page-mind/pkg/logger"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
)

// RedisConversationRepository persists the message history and the session
// state of each counseling conversation, both expiring together on the
// configured TTL.
type RedisConversationRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisConversationRepository(rdb redis.Cmdable, ttl time.Duration) *RedisConversationRepository {
	return &RedisConversationRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisConversationRepository) conversationKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:messages", conversationID)
}

func (r *RedisConversationRepository) sessionKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:session", conversationID)
}

func (r *RedisConversationRepository) AddMessage(ctx context.Context, conversationID string, message *schema.Message) error {
	b, err := json.Marshal(message)
	if err != nil {
		logx.Error().Err(err).Str("conversationID", conversationID).Msg("failed to marshal message")
		return fmt.Errorf("marshal message: %w", err)
	}
	key := r.conversationKey(conversationID)

	// append message
	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push message to redis")
		return errx.WrapRedis(err)
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on conversation key")
		}
	}
	return nil
}

func (r *RedisConversationRepository) LoadHistory(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	key := r.conversationKey(conversationID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return &model.ConversationHistory{ConversationID: conversationID, Messages: []*schema.Message{}}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation history from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]*schema.Message, 0, len(rows))
	for i, s := range rows {
		var m schema.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Str("conversationID", conversationID).Int("index", i).Msg("failed to unmarshal message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		msgs = append(msgs, &m)
	}
	return &model.ConversationHistory{ConversationID: conversationID, Messages: msgs}, nil
}

func (r *RedisConversationRepository) ClearHistory(ctx context.Context, conversationID string) error {
	key := r.conversationKey(conversationID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete conversation history from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisConversationRepository) GetMessageCount(ctx context.Context, conversationID string) (int, error) {
	key := r.conversationKey(conversationID)
	n, err := r.rdb.LLen(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to get message count from redis")
		return 0, errx.WrapRedis(err)
	}
	return int(n), nil
}

// ==================== Session state ====================

const (
	fieldAssistantTurns = "assistant_turns"
	fieldAnalysisDone   = "analysis_done"
	fieldGenre          = "preferred_genre"
	fieldSummary        = "summary"
)

func (r *RedisConversationRepository) LoadSession(ctx context.Context, conversationID string) (*model.SessionState, error) {
	key := r.sessionKey(conversationID)

	fields, err := r.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to load session from redis")
		return nil, errx.WrapRedis(err)
	}

	state := &model.SessionState{ConversationID: conversationID}
	if v, ok := fields[fieldAssistantTurns]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			state.AssistantTurns = n
		}
	}
	state.AnalysisDone = fields[fieldAnalysisDone] == "1"
	state.PreferredGenre = fields[fieldGenre]
	if raw, ok := fields[fieldSummary]; ok && raw != "" {
		var summary model.PsychologicalSummary
		if err := json.Unmarshal([]byte(raw), &summary); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal stored summary")
			return nil, fmt.Errorf("unmarshal session summary: %w", err)
		}
		state.Summary = &summary
	}
	return state, nil
}

func (r *RedisConversationRepository) SaveSummary(ctx context.Context, conversationID string, summary model.PsychologicalSummary) error {
	b, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	key := r.sessionKey(conversationID)
	if err := r.rdb.HSet(ctx, key, fieldSummary, b, fieldAnalysisDone, "1").Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save summary to redis")
		return errx.WrapRedis(err)
	}
	return r.touchSession(ctx, key)
}

func (r *RedisConversationRepository) SetPreferredGenre(ctx context.Context, conversationID, genre string) error {
	key := r.sessionKey(conversationID)
	if err := r.rdb.HSet(ctx, key, fieldGenre, genre).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save preferred genre to redis")
		return errx.WrapRedis(err)
	}
	return r.touchSession(ctx, key)
}

func (r *RedisConversationRepository) IncrementAssistantTurns(ctx context.Context, conversationID string) (int, error) {
	key := r.sessionKey(conversationID)
	n, err := r.rdb.HIncrBy(ctx, key, fieldAssistantTurns, 1).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to increment assistant turns")
		return 0, errx.WrapRedis(err)
	}
	if err := r.touchSession(ctx, key); err != nil {
		return int(n), err
	}
	return int(n), nil
}

func (r *RedisConversationRepository) ClearSession(ctx context.Context, conversationID string) error {
	key := r.sessionKey(conversationID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete session from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisConversationRepository) touchSession(ctx context.Context, key string) error {
	if r.ttl <= 0 {
		return nil
	}
	if err := r.rdb.Expire(ctx, key, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to set expire on session key")
		return errx.WrapRedis(err)
	}
	return nil
}

var (
	_ model.ConversationRepository = (*RedisConversationRepository)(nil)
	_ model.SessionRepository      = (*RedisConversationRepository)(nil)
)
