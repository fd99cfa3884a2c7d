package tutortime

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Messages interface {
	repository.Repository[*Message]

	Send(ctx context.Context, record *Message) (*Message, error)
	SendTx(ctx context.Context, tx bun.IDB, record *Message) (*Message, error)

	Inbox(ctx context.Context, email string) ([]*Message, error)
	Sent(ctx context.Context, email string) ([]*Message, error)

	DeleteOwned(ctx context.Context, id uuid.UUID, email string) error
	DeleteByEmailTx(ctx context.Context, tx bun.IDB, email string) error
}

type messages struct {
	repository.Repository[*Message]
	db *bun.DB
}

var (
	_ Messages                        = (*messages)(nil)
	_ repository.Repository[*Message] = (*messages)(nil)
)

func NewMessagesRepository(db *bun.DB) Messages {
	repo := repository.NewRepository[*Message](db, repository.ModelHandlers[*Message]{
		NewRecord: func() *Message { return &Message{} },
		GetID: func(m *Message) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Message, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
	})

	return &messages{
		Repository: repo,
		db:         db,
	}
}

func (a *messages) Send(ctx context.Context, record *Message) (*Message, error) {
	return a.SendTx(ctx, a.db, record)
}

func (a *messages) SendTx(ctx context.Context, tx bun.IDB, record *Message) (*Message, error) {
	if record != nil {
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		record.From = NormalizeEmail(record.From)
		record.To = NormalizeEmail(record.To)
	}
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *messages) Inbox(ctx context.Context, email string) ([]*Message, error) {
	records := []*Message{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.to_email = ?", NormalizeEmail(email)).
		Order("msg.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *messages) Sent(ctx context.Context, email string) ([]*Message, error) {
	records := []*Message{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.from_email = ?", NormalizeEmail(email)).
		Order("msg.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteOwned removes a message only when the given address is its sender or
// recipient. Anyone else gets a forbidden error, not a silent delete.
func (a *messages) DeleteOwned(ctx context.Context, id uuid.UUID, email string) error {
	record, err := a.Repository.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrMessageNotFound.WithMetadata(map[string]any{
				"id": id.String(),
			})
		}
		return err
	}

	if !record.Involves(email) {
		return ErrMessageForbidden.WithMetadata(map[string]any{
			"id": id.String(),
		})
	}

	_, err = a.db.NewDelete().
		Model((*Message)(nil)).
		Where("?TableAlias.id = ?", record.ID.String()).
		Exec(ctx)
	return err
}

func (a *messages) DeleteByEmailTx(ctx context.Context, tx bun.IDB, email string) error {
	normalized := NormalizeEmail(email)
	_, err := tx.NewDelete().
		Model((*Message)(nil)).
		WhereGroup(" AND ", func(q *bun.DeleteQuery) *bun.DeleteQuery {
			return q.
				Where("?TableAlias.from_email = ?", normalized).
				WhereOr("?TableAlias.to_email = ?", normalized)
		}).
		Exec(ctx)
	return err
}
