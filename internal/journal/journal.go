package journal

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/towops/towops/internal/dispatch"
)

const subscriberName = "journal"

// Journal is an append-only log of dispatch events. It is never read back into live state.
type Journal struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB) *Journal {
	return &Journal{
		db:     db,
		logger: slog.With("logger", "journal"),
	}
}

func (j *Journal) Migrate() error {
	if j == nil || j.db == nil {
		return fmt.Errorf("no database")
	}

	return j.db.AutoMigrate(&Entry{})
}

func (j *Journal) Append(ev dispatch.Event) error {
	if j == nil || j.db == nil {
		return nil
	}

	e, err := EntryFromEvent(ev)
	if err != nil {
		return err
	}

	if err := j.db.Create(e).Error; err != nil {
		j.logger.Error("error saving entry", slog.Any("error", err))

		return err
	}

	return nil
}

// Attach subscribes the journal to the state's event stream.
func (j *Journal) Attach(st *dispatch.State) {
	st.Events().Subscribe(subscriberName, func(ev dispatch.Event) bool {
		_ = j.Append(ev)
		return true
	})
}

func (j *Journal) Detach(st *dispatch.State) {
	st.Events().Unsubscribe(subscriberName)
}

func (j *Journal) Query() *EntryQuery {
	return NewEntryQuery(j.db)
}
