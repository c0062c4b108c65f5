// Package history caches conversations and messages locally. It is consumed
// by the facade layer, never by the session core; the gateway streams events
// and the presentation layer decides what to persist.
package history

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/nixdorfer/dialogue/internal/storage"
	"github.com/nixdorfer/dialogue/pkg/types"
)

// ErrConversationNotFound is returned for operations on unknown ids.
var ErrConversationNotFound = errors.New("conversation not found")

// meta is the store-wide bookkeeping record.
type meta struct {
	NextMessageID int64 `json:"next_message_id"`
}

// Store is the local persistence store for conversations and their
// append-only message logs. Message ids are monotonic across the store.
type Store struct {
	storage *storage.Store

	mu     sync.Mutex
	nextID int64
}

// NewStore opens a Store over the given storage backend, recovering the
// message id counter from the meta record.
func NewStore(s *storage.Store) (*Store, error) {
	st := &Store{storage: s, nextID: 1}

	var m meta
	switch err := s.Get([]string{"meta"}, &m); {
	case err == nil:
		st.nextID = m.NextMessageID
	case errors.Is(err, storage.ErrNotFound):
		// Fresh store.
	default:
		return nil, fmt.Errorf("failed to load history meta: %w", err)
	}

	return st, nil
}

// Create creates a conversation with the given id. firstMessage may be
// empty; it is backfilled by the first appended "user" message.
func (st *Store) Create(id, firstMessage string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := time.Now().UTC()
	return st.storage.Put([]string{"conversation", id}, &types.Conversation{
		ConversationID: id,
		FirstMessage:   firstMessage,
		LastUsedTime:   now,
		CreatedAt:      now,
	})
}

// Append appends a message, creating the conversation if absent.
// message_count and last_used_time update with the append; first_message
// is set exactly once, on the first message whose role is "user".
func (st *Store) Append(conversationID, role, content string) (*types.Message, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var conv types.Conversation
	err := st.storage.Get([]string{"conversation", conversationID}, &conv)
	if errors.Is(err, storage.ErrNotFound) {
		now := time.Now().UTC()
		conv = types.Conversation{
			ConversationID: conversationID,
			LastUsedTime:   now,
			CreatedAt:      now,
		}
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	var messages []*types.Message
	if err := st.storage.Get([]string{"message", conversationID}, &messages); err != nil &&
		!errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	msg := &types.Message{
		ID:             st.nextID,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Timestamp:      time.Now().UTC(),
	}
	messages = append(messages, msg)

	if err := st.storage.Put([]string{"message", conversationID}, messages); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	if conv.FirstMessage == "" && role == "user" {
		conv.FirstMessage = content
	}
	conv.MessageCount = len(messages)
	conv.LastUsedTime = msg.Timestamp

	if err := st.storage.Put([]string{"conversation", conversationID}, &conv); err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}

	st.nextID++
	if err := st.storage.Put([]string{"meta"}, meta{NextMessageID: st.nextID}); err != nil {
		return nil, fmt.Errorf("failed to persist message counter: %w", err)
	}

	return msg, nil
}

// Conversations returns all conversations, most recently used first.
func (st *Store) Conversations() ([]*types.Conversation, error) {
	ids, err := st.storage.List([]string{"conversation"})
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	conversations := make([]*types.Conversation, 0, len(ids))
	for _, id := range ids {
		var conv types.Conversation
		if err := st.storage.Get([]string{"conversation", id}, &conv); err != nil {
			continue
		}
		conversations = append(conversations, &conv)
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastUsedTime.After(conversations[j].LastUsedTime)
	})

	return conversations, nil
}

// Messages returns a conversation's log in append order (time ascending).
// An unknown or empty conversation yields an empty slice.
func (st *Store) Messages(conversationID string) ([]*types.Message, error) {
	var messages []*types.Message
	err := st.storage.Get([]string{"message", conversationID}, &messages)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	if messages == nil {
		messages = []*types.Message{}
	}
	return messages, nil
}

// Rename sets a conversation's display name.
func (st *Store) Rename(conversationID, name string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	var conv types.Conversation
	if err := st.storage.Get([]string{"conversation", conversationID}, &conv); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrConversationNotFound
		}
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	conv.Name = name
	return st.storage.Put([]string{"conversation", conversationID}, &conv)
}

// Delete removes a conversation and its message log.
func (st *Store) Delete(conversationID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.storage.Delete([]string{"message", conversationID}); err != nil {
		return err
	}
	return st.storage.Delete([]string{"conversation", conversationID})
}

// Exists reports whether a conversation is present.
func (st *Store) Exists(conversationID string) bool {
	return st.storage.Exists([]string{"conversation", conversationID})
}

// NewLocalID generates an id for a conversation created before the gateway
// has assigned one. The local_ prefix keeps the two id spaces apart.
func NewLocalID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return "local_" + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
