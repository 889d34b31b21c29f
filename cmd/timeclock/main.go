/*
main.go - Local punch-clock CLI

PURPOSE:
  A small command-line front end over the same SQLite ledger the server
  uses, for the single-user local workflow:

    timeclock in                 Clock in
    timeclock out                Clock out
    timeclock break start        Start a meal break
    timeclock break end          End a meal break
    timeclock status             Clock state and live accrual
    timeclock today              Today's punches
    timeclock reconcile [date]   Recompute one day's durations

FLAGS:
  --db    SQLite database path (default: clockwise.db)
  --user  Punch ledger user id (default: 1)
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/timeclock-engine/store/sqlite"
	"github.com/warp/timeclock-engine/timeclock"
)

var (
	dbPath string
	userID int64
)

var rootCmd = &cobra.Command{
	Use:   "timeclock",
	Short: "Punch clock over a local SQLite ledger",
	Long: `timeclock records clock in/out and meal break punches against a local
SQLite database and keeps every derived duration reconciled.`,
	SilenceUsage: true,
}

// withSession opens the store, seeds a session from today's ledger
// partition, and hands it to fn.
func withSession(fn func(ctx context.Context, s *timeclock.Session, now time.Time) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := sqlite.New(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ledger := timeclock.NewLedger(store)
		defer ledger.Close()

		now := time.Now()
		session, err := timeclock.NewSession(ctx, ledger, timeclock.UserID(userID), now)
		if err != nil {
			return err
		}
		return fn(ctx, session, now)
	}
}

func punchCmd(use, short string, action timeclock.Action) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: withSession(func(ctx context.Context, s *timeclock.Session, now time.Time) error {
			punch, err := s.SubmitPunch(ctx, action, now)
			if err != nil {
				var ve *timeclock.ValidationError
				if errors.As(err, &ve) {
					return errors.New(ve.Reason)
				}
				return err
			}
			fmt.Printf("%s at %s\n", punch.Action, punch.Time)
			if punch.Duration != timeclock.NoDuration {
				fmt.Printf("Duration: %s\n", punch.Duration)
			}
			return nil
		}),
	}
}

var breakCmd = &cobra.Command{
	Use:   "break",
	Short: "Start or end a meal break",
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show clock state and today's worked time",
	RunE: withSession(func(ctx context.Context, s *timeclock.Session, now time.Time) error {
		fmt.Printf("State: %s\n", s.CurrentState())
		fmt.Printf("Today: %s\n", timeclock.FormatMinutes(s.CurrentAccrualMinutes(now)))
		return nil
	}),
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "List today's punches",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sqlite.New(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		punches, err := store.PunchesByUserAndDate(cmd.Context(), timeclock.UserID(userID), timeclock.DateOf(time.Now()))
		if err != nil {
			return err
		}
		if len(punches) == 0 {
			fmt.Println("No punches today.")
			return nil
		}
		for _, p := range punches {
			fmt.Printf("%-12s %-18s %-10s %s\n", p.Date, p.Action, p.Time, p.Duration)
		}
		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [date]",
	Short: "Recompute derived durations for a day (default: today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := sqlite.New(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ledger := timeclock.NewLedger(store)
		defer ledger.Close()

		date := timeclock.DateOf(time.Now())
		if len(args) == 1 {
			date, err = timeclock.ParseDate(args[0])
			if err != nil {
				return fmt.Errorf("invalid date %q, want MM/DD/YYYY", args[0])
			}
		}

		updated, err := timeclock.NewReconciler(ledger).ReconcileDay(ctx, timeclock.UserID(userID), date)
		if err != nil {
			return err
		}
		fmt.Printf("Reconciled %s: %d duration(s) updated\n", date, updated)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "clockwise.db", "SQLite database path")
	rootCmd.PersistentFlags().Int64Var(&userID, "user", 1, "punch ledger user id")

	breakCmd.AddCommand(punchCmd("start", "Start a meal break", timeclock.ActionMealBreakStart))
	breakCmd.AddCommand(punchCmd("end", "End a meal break", timeclock.ActionMealBreakEnd))

	rootCmd.AddCommand(punchCmd("in", "Clock in", timeclock.ActionClockIn))
	rootCmd.AddCommand(punchCmd("out", "Clock out", timeclock.ActionClockOut))
	rootCmd.AddCommand(breakCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(reconcileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
