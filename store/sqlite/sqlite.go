/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements punch persistence (timeclock.Store / timeclock.EditStore)
  plus the identity tables (payroll.EmployeeStore, payroll periods,
  companies) using SQLite.

SCHEMA COMPATIBILITY:
  The time_entries table keeps the original desktop client's text
  columns (date MM/DD/YYYY, time hh:mm AM/PM, duration "<H>h <M>m" or
  "-") so existing databases read back unchanged; user_id extends it
  for per-user partitions, defaulting to -1 for legacy rows.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block,
  one writer at a time, better crash recovery. The engine's own serial
  write queue already guarantees a single writer.

USAGE:
  store, err := sqlite.New("./clockwise.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := timeclock.NewLedger(store)

SEE ALSO:
  - timeclock/ledger.go: Store contract and write serialization
  - timeclock/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/timeclock-engine/payroll"
	"github.com/warp/timeclock-engine/timeclock"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Punches (the ledger). Text columns match the original client.
	CREATE TABLE IF NOT EXISTS time_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL DEFAULT -1,
		date TEXT NOT NULL,
		action TEXT NOT NULL,
		time TEXT NOT NULL,
		duration TEXT NOT NULL DEFAULT '-'
	);

	-- Partition lookups are the hot path (whole-day reconciliation).
	CREATE INDEX IF NOT EXISTS idx_time_entries_user_date
		ON time_entries(user_id, date);

	-- Employees (identity + compensation tagged union)
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		manager_id INTEGER REFERENCES employees(id),
		comp_kind TEXT NOT NULL,
		hourly_rate TEXT NOT NULL DEFAULT '0',
		monthly_salary TEXT NOT NULL DEFAULT '0',
		username TEXT UNIQUE,
		password_hash TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_employees_manager
		ON employees(manager_id);

	-- Companies
	CREATE TABLE IF NOT EXISTS companies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	);

	-- Payroll periods (inclusive date windows)
	CREATE TABLE IF NOT EXISTS payroll_periods (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id INTEGER REFERENCES companies(id),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		closed INTEGER NOT NULL DEFAULT 0
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PUNCH STORE (timeclock.Store / timeclock.EditStore)
// =============================================================================

// Append persists a punch and returns the autoincrement id.
func (s *Store) Append(ctx context.Context, p timeclock.Punch) (timeclock.PunchID, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO time_entries (user_id, date, action, time, duration) VALUES (?, ?, ?, ?, ?)`,
		int64(p.UserID), p.Date.String(), string(p.Action), p.Time, p.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append punch: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read punch id: %w", err)
	}
	return timeclock.PunchID(id), nil
}

// PunchesByUserAndDate returns one partition in insertion (id) order.
func (s *Store) PunchesByUserAndDate(ctx context.Context, userID timeclock.UserID, date timeclock.Date) ([]timeclock.Punch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, date, action, time, duration
		 FROM time_entries WHERE user_id = ? AND date = ? ORDER BY id ASC`,
		int64(userID), date.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load partition: %w", err)
	}
	defer rows.Close()

	var punches []timeclock.Punch
	for rows.Next() {
		p, err := scanPunch(rows)
		if err != nil {
			return nil, err
		}
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

// UpdateDuration rewrites the derived duration of one punch.
func (s *Store) UpdateDuration(ctx context.Context, id timeclock.PunchID, duration string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE time_entries SET duration = ? WHERE id = ?`, duration, int64(id))
	if err != nil {
		return fmt.Errorf("failed to update duration: %w", err)
	}
	return requireRow(res)
}

// Punch returns a single record by id.
func (s *Store) Punch(ctx context.Context, id timeclock.PunchID) (timeclock.Punch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, date, action, time, duration FROM time_entries WHERE id = ?`,
		int64(id),
	)
	p, err := scanPunch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return timeclock.Punch{}, timeclock.ErrPunchNotFound
	}
	return p, err
}

// UpdatePunch rewrites a record's date, time and duration in place.
func (s *Store) UpdatePunch(ctx context.Context, p timeclock.Punch) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE time_entries SET date = ?, time = ?, duration = ? WHERE id = ?`,
		p.Date.String(), p.Time, p.Duration, int64(p.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update punch: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPunch(r rowScanner) (timeclock.Punch, error) {
	var (
		id       int64
		userID   int64
		dateStr  string
		action   string
		timeStr  string
		duration string
	)
	if err := r.Scan(&id, &userID, &dateStr, &action, &timeStr, &duration); err != nil {
		return timeclock.Punch{}, err
	}

	date, err := timeclock.ParseDate(dateStr)
	if err != nil {
		return timeclock.Punch{}, fmt.Errorf("punch %d has malformed date %q: %w", id, dateStr, err)
	}

	return timeclock.Punch{
		ID:       timeclock.PunchID(id),
		UserID:   timeclock.UserID(userID),
		Date:     date,
		Action:   timeclock.Action(action),
		Time:     timeStr,
		Duration: duration,
	}, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return timeclock.ErrPunchNotFound
	}
	return nil
}

// =============================================================================
// EMPLOYEE STORE (payroll.EmployeeStore)
// =============================================================================

// ErrNotFound is returned for missing employees, periods and companies.
var ErrNotFound = errors.New("record not found")

// SaveEmployee inserts or updates an employee. A zero ID inserts and
// assigns the next id.
func (s *Store) SaveEmployee(ctx context.Context, emp payroll.Employee, passwordHash string) (payroll.EmployeeID, error) {
	var managerID sql.NullInt64
	if emp.ManagerID != nil {
		managerID = sql.NullInt64{Int64: int64(*emp.ManagerID), Valid: true}
	}

	if emp.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO employees (name, role, manager_id, comp_kind, hourly_rate, monthly_salary, username, password_hash)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			emp.Name, string(emp.Role), managerID, string(emp.Compensation.Kind),
			emp.Compensation.HourlyRate.String(), emp.Compensation.MonthlySalary.String(),
			nullString(emp.Username), nullString(passwordHash),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert employee: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		return payroll.EmployeeID(id), nil
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE employees SET name = ?, role = ?, manager_id = ?, comp_kind = ?,
		 hourly_rate = ?, monthly_salary = ?, username = ? WHERE id = ?`,
		emp.Name, string(emp.Role), managerID, string(emp.Compensation.Kind),
		emp.Compensation.HourlyRate.String(), emp.Compensation.MonthlySalary.String(),
		nullString(emp.Username), int64(emp.ID),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update employee: %w", err)
	}
	return emp.ID, nil
}

// Employee returns one employee by id.
func (s *Store) Employee(ctx context.Context, id payroll.EmployeeID) (payroll.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, manager_id, comp_kind, hourly_rate, monthly_salary, username
		 FROM employees WHERE id = ?`, int64(id))
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Employee{}, ErrNotFound
	}
	return emp, err
}

// Employees returns all employees ordered by id.
func (s *Store) Employees(ctx context.Context) ([]payroll.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, manager_id, comp_kind, hourly_rate, monthly_salary, username
		 FROM employees ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()
	return collectEmployees(rows)
}

// ReportingTo returns a manager's direct reports ordered by id.
func (s *Store) ReportingTo(ctx context.Context, managerID payroll.EmployeeID) ([]payroll.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, manager_id, comp_kind, hourly_rate, monthly_salary, username
		 FROM employees WHERE manager_id = ? ORDER BY id ASC`, int64(managerID))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()
	return collectEmployees(rows)
}

// EmployeeByUsername returns an employee and stored password hash for
// login checks.
func (s *Store) EmployeeByUsername(ctx context.Context, username string) (payroll.Employee, string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, manager_id, comp_kind, hourly_rate, monthly_salary, username, password_hash
		 FROM employees WHERE username = ?`, username)

	var (
		id            int64
		name          string
		role          string
		managerID     sql.NullInt64
		compKind      string
		hourlyRate    string
		monthlySalary string
		uname         sql.NullString
		passwordHash  sql.NullString
	)
	err := row.Scan(&id, &name, &role, &managerID, &compKind, &hourlyRate, &monthlySalary, &uname, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Employee{}, "", ErrNotFound
	}
	if err != nil {
		return payroll.Employee{}, "", err
	}

	emp, err := buildEmployee(id, name, role, managerID, compKind, hourlyRate, monthlySalary, uname)
	if err != nil {
		return payroll.Employee{}, "", err
	}
	return emp, passwordHash.String, nil
}

func collectEmployees(rows *sql.Rows) ([]payroll.Employee, error) {
	var emps []payroll.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		emps = append(emps, emp)
	}
	return emps, rows.Err()
}

func scanEmployee(r rowScanner) (payroll.Employee, error) {
	var (
		id            int64
		name          string
		role          string
		managerID     sql.NullInt64
		compKind      string
		hourlyRate    string
		monthlySalary string
		uname         sql.NullString
	)
	if err := r.Scan(&id, &name, &role, &managerID, &compKind, &hourlyRate, &monthlySalary, &uname); err != nil {
		return payroll.Employee{}, err
	}
	return buildEmployee(id, name, role, managerID, compKind, hourlyRate, monthlySalary, uname)
}

func buildEmployee(id int64, name, role string, managerID sql.NullInt64, compKind, hourlyRate, monthlySalary string, uname sql.NullString) (payroll.Employee, error) {
	rate, err := decimal.NewFromString(hourlyRate)
	if err != nil {
		return payroll.Employee{}, fmt.Errorf("employee %d has malformed hourly rate %q: %w", id, hourlyRate, err)
	}
	salary, err := decimal.NewFromString(monthlySalary)
	if err != nil {
		return payroll.Employee{}, fmt.Errorf("employee %d has malformed salary %q: %w", id, monthlySalary, err)
	}

	emp := payroll.Employee{
		ID:   payroll.EmployeeID(id),
		Name: name,
		Role: payroll.Role(role),
		Compensation: payroll.Compensation{
			Kind:          payroll.CompensationKind(compKind),
			HourlyRate:    rate,
			MonthlySalary: salary,
		},
		Username: uname.String,
	}
	if managerID.Valid {
		mid := payroll.EmployeeID(managerID.Int64)
		emp.ManagerID = &mid
	}
	return emp, nil
}

// =============================================================================
// PAYROLL PERIODS / COMPANIES
// =============================================================================

// SavePayrollPeriod inserts or updates a period. A zero ID inserts.
func (s *Store) SavePayrollPeriod(ctx context.Context, p payroll.PayrollPeriod) (int64, error) {
	if p.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO payroll_periods (company_id, start_date, end_date, closed) VALUES (?, ?, ?, ?)`,
			p.CompanyID, p.Start.String(), p.End.String(), boolToInt(p.Closed))
		if err != nil {
			return 0, fmt.Errorf("failed to insert payroll period: %w", err)
		}
		return res.LastInsertId()
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE payroll_periods SET company_id = ?, start_date = ?, end_date = ?, closed = ? WHERE id = ?`,
		p.CompanyID, p.Start.String(), p.End.String(), boolToInt(p.Closed), p.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update payroll period: %w", err)
	}
	return p.ID, nil
}

// PayrollPeriods returns all periods ordered by id.
func (s *Store) PayrollPeriods(ctx context.Context) ([]payroll.PayrollPeriod, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, start_date, end_date, closed FROM payroll_periods ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.PayrollPeriod
	for rows.Next() {
		var (
			id        int64
			companyID sql.NullInt64
			startStr  string
			endStr    string
			closed    int
		)
		if err := rows.Scan(&id, &companyID, &startStr, &endStr, &closed); err != nil {
			return nil, err
		}
		start, err := timeclock.ParseDate(startStr)
		if err != nil {
			return nil, fmt.Errorf("period %d has malformed start %q: %w", id, startStr, err)
		}
		end, err := timeclock.ParseDate(endStr)
		if err != nil {
			return nil, fmt.Errorf("period %d has malformed end %q: %w", id, endStr, err)
		}
		periods = append(periods, payroll.PayrollPeriod{
			ID:        id,
			CompanyID: companyID.Int64,
			Start:     start,
			End:       end,
			Closed:    closed != 0,
		})
	}
	return periods, rows.Err()
}

// PayrollPeriod returns one period by id.
func (s *Store) PayrollPeriod(ctx context.Context, id int64) (payroll.PayrollPeriod, error) {
	periods, err := s.PayrollPeriods(ctx)
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}
	for _, p := range periods {
		if p.ID == id {
			return p, nil
		}
	}
	return payroll.PayrollPeriod{}, ErrNotFound
}

// SaveCompany inserts a company and returns its id.
func (s *Store) SaveCompany(ctx context.Context, c payroll.Company) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO companies (name) VALUES (?)`, c.Name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert company: %w", err)
	}
	return res.LastInsertId()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Compile-time interface checks.
var (
	_ timeclock.Store       = (*Store)(nil)
	_ timeclock.EditStore   = (*Store)(nil)
	_ payroll.EmployeeStore = (*Store)(nil)
)
