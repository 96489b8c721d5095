package monitoring

import (
	"database/sql"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// transactionKeep is how many ledger entries each account keeps after a
// sweep. Comfortably above the 10 a balance report returns.
const transactionKeep = 100

// RetentionSweeper prunes old events and caps per-account transaction
// history on a cron schedule.
type RetentionSweeper struct {
	db        *sql.DB
	schedule  cron.Schedule
	eventDays int
	done      chan bool
}

// NewRetentionSweeper creates a sweeper from a standard cron expression.
// eventDays is how long events are kept.
func NewRetentionSweeper(db *sql.DB, cronExpr string, eventDays int) (*RetentionSweeper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &RetentionSweeper{
		db:        db,
		schedule:  schedule,
		eventDays: eventDays,
		done:      make(chan bool),
	}, nil
}

// Run waits for each scheduled run and sweeps.
func (rs *RetentionSweeper) Run() {
	log.Info().Msg("Starting retention sweeper...")
	for {
		next := rs.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-rs.done:
			timer.Stop()
			log.Info().Msg("Stopping retention sweeper.")
			return
		case <-timer.C:
			rs.Sweep()
		}
	}
}

// Stop halts the sweeper.
func (rs *RetentionSweeper) Stop() {
	rs.done <- true
}

// Sweep prunes events past the retention window and trims each account's
// transaction history to the newest entries.
func (rs *RetentionSweeper) Sweep() {
	cutoff := time.Now().UTC().AddDate(0, 0, -rs.eventDays)
	res, err := rs.db.Exec("DELETE FROM events WHERE created_at < ?", cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Retention: failed to prune events")
	} else if n, _ := res.RowsAffected(); n > 0 {
		log.Info().Int64("pruned", n).Msg("Retention: pruned old events")
	}

	res, err = rs.db.Exec(`
		DELETE FROM ledger_transactions
		WHERE seq NOT IN (
			SELECT seq FROM ledger_transactions t2
			WHERE t2.user_id = ledger_transactions.user_id
			ORDER BY t2.seq DESC LIMIT ?
		)`, transactionKeep)
	if err != nil {
		log.Error().Err(err).Msg("Retention: failed to trim transaction history")
	} else if n, _ := res.RowsAffected(); n > 0 {
		log.Info().Int64("trimmed", n).Msg("Retention: trimmed transaction history")
	}
}
