package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	messaging "msg-relay/internal/pkg/messaging/domain"
	repository "msg-relay/internal/pkg/messaging/persistence/repository/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so one
// repository implementation serves both pooled reads and transactional writes.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgMessagingRepository is the Postgres adapter for the messaging repository port.
type PgMessagingRepository struct {
	db   querier
	pool *pgxpool.Pool
}

func NewPgMessagingRepository(pool *pgxpool.Pool) *PgMessagingRepository {
	return &PgMessagingRepository{db: pool, pool: pool}
}

// Ensure interface compliance at compile time
var _ repository.MessagingRepository = (*PgMessagingRepository)(nil)

// WithinTx runs fn against a repository bound to a single transaction.
// Rollback errors are discarded so fn's error is what the caller sees.
func (r *PgMessagingRepository) WithinTx(ctx context.Context, fn func(r repository.MessagingRepository) error) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessagingRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	bound := &PgMessagingRepository{db: tx, pool: r.pool}
	if err := fn(bound); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *PgMessagingRepository) GetUserIDByAddress(ctx context.Context, addr string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		"SELECT user_id FROM users WHERE phone_number = $1 OR email = $1 LIMIT 1",
		addr,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, repository.ErrNotFound
	}
	return id, err
}

func (r *PgMessagingRepository) CreateUser(ctx context.Context, addr string, channel messaging.Channel) (int64, error) {
	col, err := channel.AddressColumn()
	if err != nil {
		return 0, err
	}
	var id int64
	// col comes from a closed enum, never from input.
	query := fmt.Sprintf("INSERT INTO users (%s) VALUES ($1) RETURNING user_id", col)
	err = r.db.QueryRow(ctx, query, addr).Scan(&id)
	return id, err
}

func (r *PgMessagingRepository) LockConversationPair(ctx context.Context, userA, userB int64) error {
	lo, hi := orderPair(userA, userB)
	// The two-key lock takes int4 keys, so ids are folded to their low 32 bits.
	// Pairs colliding above bit 31 share a key and serialize against each other.
	_, err := r.db.Exec(ctx, "SELECT pg_advisory_xact_lock($1, $2)", int32(lo), int32(hi))
	return err
}

func (r *PgMessagingRepository) FindConversationBetween(ctx context.Context, userA, userB int64) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		SELECT conversation_id
		FROM conversation_participants
		WHERE user_id = ANY($1::bigint[])
		GROUP BY conversation_id
		HAVING COUNT(DISTINCT user_id) = 2
		LIMIT 1
	`, []int64{userA, userB}).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, repository.ErrNotFound
	}
	return id, err
}

func (r *PgMessagingRepository) CreateConversation(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		"INSERT INTO conversations DEFAULT VALUES RETURNING conversation_id",
	).Scan(&id)
	return id, err
}

func (r *PgMessagingRepository) AddParticipants(ctx context.Context, conversationID, userA, userB int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO conversation_participants (conversation_id, user_id)
		VALUES ($1, $2), ($1, $3)
	`, conversationID, userA, userB)
	return err
}

func (r *PgMessagingRepository) ListConversationIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, "SELECT conversation_id FROM conversations ORDER BY conversation_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgMessagingRepository) InsertMessage(ctx context.Context, m messaging.Message) (int64, error) {
	attachments, err := json.Marshal(m.Attachments)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO messages (
			conversation_id, sender_id, recipient_id, body, provider_id, message_type, attachments, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING message_id
	`, m.ConversationID, m.SenderID, m.RecipientID, m.Body, m.ProviderID, string(m.MessageType), attachments, m.Status, m.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgMessagingRepository) GetMessagesByConversation(ctx context.Context, conversationID int64) ([]messaging.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT message_id, conversation_id, sender_id, recipient_id, body, provider_id, message_type, attachments, status, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, message_id ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]messaging.Message, 0)
	for rows.Next() {
		var (
			msg         messaging.Message
			msgType     string
			attachments []byte
		)
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.RecipientID, &msg.Body,
			&msg.ProviderID, &msgType, &attachments, &msg.Status, &msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		msg.MessageType = messaging.MessageType(msgType)
		if len(attachments) > 0 {
			if err := json.Unmarshal(attachments, &msg.Attachments); err != nil {
				return nil, err
			}
		}
		if msg.Attachments == nil {
			msg.Attachments = []string{}
		}
		msg.CreatedAt = msg.CreatedAt.UTC()
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func orderPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
