package db

import (
	"time"

	"github.com/2beens/gymlog/pkg"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	intervalDay   = 24 * time.Hour
	intervalMonth = 30 * intervalDay
)

// Interval converts an optional duration into a postgres INTERVAL param (NULL when nil).
func Interval(d *pkg.Duration) pgtype.Interval {
	if d == nil {
		return pgtype.Interval{}
	}
	return pgtype.Interval{
		Microseconds: d.Std().Microseconds(),
		Valid:        true,
	}
}

// DurationFromInterval converts a scanned INTERVAL back; months count as 30 days.
func DurationFromInterval(iv pgtype.Interval) *pkg.Duration {
	if !iv.Valid {
		return nil
	}
	d := time.Duration(iv.Microseconds)*time.Microsecond +
		time.Duration(iv.Days)*intervalDay +
		time.Duration(iv.Months)*intervalMonth
	return pkg.NewDuration(d)
}
