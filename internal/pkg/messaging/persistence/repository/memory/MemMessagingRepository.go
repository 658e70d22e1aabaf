package memory

import (
	"context"
	"sort"
	"sync"

	messaging "msg-relay/internal/pkg/messaging/domain"
	repository "msg-relay/internal/pkg/messaging/persistence/repository/port"
)

// MemMessagingRepository is an in-memory implementation of the messaging
// repository port, used by use-case and handler tests. WithinTx snapshots
// state before running fn and restores it on error, mirroring the rollback
// semantics of the Postgres adapter. A single mutex serializes transactions,
// which also stands in for the per-pair advisory lock.
type MemMessagingRepository struct {
	mu sync.Mutex

	nextUserID         int64
	nextConversationID int64
	nextMessageID      int64

	usersByAddress map[string]int64
	participants   map[int64][]int64 // conversationID -> user ids
	messages       map[int64][]messaging.Message

	// FailInsertMessage forces InsertMessage to return this error, for
	// exercising rollback paths.
	FailInsertMessage error
}

func NewMemMessagingRepository() *MemMessagingRepository {
	return &MemMessagingRepository{
		usersByAddress: make(map[string]int64),
		participants:   make(map[int64][]int64),
		messages:       make(map[int64][]messaging.Message),
	}
}

var _ repository.MessagingRepository = (*MemMessagingRepository)(nil)

func (r *MemMessagingRepository) WithinTx(ctx context.Context, fn func(r repository.MessagingRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.snapshot()
	if err := fn(&txView{r}); err != nil {
		r.restore(snapshot)
		return err
	}
	return nil
}

// txView exposes the repository inside a transaction without re-locking.
type txView struct {
	r *MemMessagingRepository
}

var _ repository.MessagingRepository = (*txView)(nil)

func (v *txView) WithinTx(ctx context.Context, fn func(r repository.MessagingRepository) error) error {
	// nested transactions are not supported, same as the pg adapter
	return fn(v)
}

func (v *txView) GetUserIDByAddress(ctx context.Context, addr string) (int64, error) {
	return v.r.getUserIDByAddress(addr)
}

func (v *txView) CreateUser(ctx context.Context, addr string, channel messaging.Channel) (int64, error) {
	return v.r.createUser(addr, channel)
}

func (v *txView) LockConversationPair(ctx context.Context, userA, userB int64) error {
	// the transaction mutex already serializes pair creation
	return nil
}

func (v *txView) FindConversationBetween(ctx context.Context, userA, userB int64) (int64, error) {
	return v.r.findConversationBetween(userA, userB)
}

func (v *txView) CreateConversation(ctx context.Context) (int64, error) {
	return v.r.createConversation()
}

func (v *txView) AddParticipants(ctx context.Context, conversationID, userA, userB int64) error {
	v.r.participants[conversationID] = []int64{userA, userB}
	return nil
}

func (v *txView) ListConversationIDs(ctx context.Context) ([]int64, error) {
	return v.r.listConversationIDs()
}

func (v *txView) InsertMessage(ctx context.Context, m messaging.Message) (int64, error) {
	return v.r.insertMessage(m)
}

func (v *txView) GetMessagesByConversation(ctx context.Context, conversationID int64) ([]messaging.Message, error) {
	return v.r.getMessagesByConversation(conversationID)
}

// Non-transactional reads used by the read path.

func (r *MemMessagingRepository) GetUserIDByAddress(ctx context.Context, addr string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getUserIDByAddress(addr)
}

func (r *MemMessagingRepository) CreateUser(ctx context.Context, addr string, channel messaging.Channel) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createUser(addr, channel)
}

func (r *MemMessagingRepository) LockConversationPair(ctx context.Context, userA, userB int64) error {
	return nil
}

func (r *MemMessagingRepository) FindConversationBetween(ctx context.Context, userA, userB int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findConversationBetween(userA, userB)
}

func (r *MemMessagingRepository) CreateConversation(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createConversation()
}

func (r *MemMessagingRepository) AddParticipants(ctx context.Context, conversationID, userA, userB int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants[conversationID] = []int64{userA, userB}
	return nil
}

func (r *MemMessagingRepository) ListConversationIDs(ctx context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listConversationIDs()
}

func (r *MemMessagingRepository) InsertMessage(ctx context.Context, m messaging.Message) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertMessage(m)
}

func (r *MemMessagingRepository) GetMessagesByConversation(ctx context.Context, conversationID int64) ([]messaging.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getMessagesByConversation(conversationID)
}

// CountUsers reports how many user rows exist. Test helper.
func (r *MemMessagingRepository) CountUsers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.usersByAddress)
}

// CountConversations reports how many conversations exist. Test helper.
func (r *MemMessagingRepository) CountConversations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

// Participants returns the member ids of a conversation. Test helper.
func (r *MemMessagingRepository) Participants(conversationID int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, len(r.participants[conversationID]))
	copy(out, r.participants[conversationID])
	return out
}

func (r *MemMessagingRepository) getUserIDByAddress(addr string) (int64, error) {
	if id, ok := r.usersByAddress[addr]; ok {
		return id, nil
	}
	return 0, repository.ErrNotFound
}

func (r *MemMessagingRepository) createUser(addr string, channel messaging.Channel) (int64, error) {
	if _, err := channel.AddressColumn(); err != nil {
		return 0, err
	}
	r.nextUserID++
	r.usersByAddress[addr] = r.nextUserID
	return r.nextUserID, nil
}

func (r *MemMessagingRepository) findConversationBetween(userA, userB int64) (int64, error) {
	for id, members := range r.participants {
		if len(members) != 2 {
			continue
		}
		if (members[0] == userA && members[1] == userB) || (members[0] == userB && members[1] == userA) {
			return id, nil
		}
	}
	return 0, repository.ErrNotFound
}

func (r *MemMessagingRepository) createConversation() (int64, error) {
	r.nextConversationID++
	r.participants[r.nextConversationID] = nil
	return r.nextConversationID, nil
}

func (r *MemMessagingRepository) listConversationIDs() ([]int64, error) {
	ids := make([]int64, 0, len(r.participants))
	for id := range r.participants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *MemMessagingRepository) insertMessage(m messaging.Message) (int64, error) {
	if r.FailInsertMessage != nil {
		return 0, r.FailInsertMessage
	}
	r.nextMessageID++
	m.ID = r.nextMessageID
	if m.Attachments == nil {
		m.Attachments = []string{}
	}
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)
	return m.ID, nil
}

func (r *MemMessagingRepository) getMessagesByConversation(conversationID int64) ([]messaging.Message, error) {
	stored := r.messages[conversationID]
	out := make([]messaging.Message, len(stored))
	copy(out, stored)
	// created_at ascending, insertion order breaking ties
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type memSnapshot struct {
	nextUserID         int64
	nextConversationID int64
	nextMessageID      int64
	usersByAddress     map[string]int64
	participants       map[int64][]int64
	messages           map[int64][]messaging.Message
}

func (r *MemMessagingRepository) snapshot() memSnapshot {
	s := memSnapshot{
		nextUserID:         r.nextUserID,
		nextConversationID: r.nextConversationID,
		nextMessageID:      r.nextMessageID,
		usersByAddress:     make(map[string]int64, len(r.usersByAddress)),
		participants:       make(map[int64][]int64, len(r.participants)),
		messages:           make(map[int64][]messaging.Message, len(r.messages)),
	}
	for k, v := range r.usersByAddress {
		s.usersByAddress[k] = v
	}
	for k, v := range r.participants {
		members := make([]int64, len(v))
		copy(members, v)
		s.participants[k] = members
	}
	for k, v := range r.messages {
		msgs := make([]messaging.Message, len(v))
		copy(msgs, v)
		s.messages[k] = msgs
	}
	return s
}

func (r *MemMessagingRepository) restore(s memSnapshot) {
	r.nextUserID = s.nextUserID
	r.nextConversationID = s.nextConversationID
	r.nextMessageID = s.nextMessageID
	r.usersByAddress = s.usersByAddress
	r.participants = s.participants
	r.messages = s.messages
}
