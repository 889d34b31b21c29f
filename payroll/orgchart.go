package payroll

import (
	"context"
	"fmt"
	"strings"
)

// EmployeeStore is the identity persistence contract the org helpers
// work against.
type EmployeeStore interface {
	Employee(ctx context.Context, id EmployeeID) (Employee, error)
	Employees(ctx context.Context) ([]Employee, error)
	ReportingTo(ctx context.Context, managerID EmployeeID) ([]Employee, error)
}

// Team returns a manager's direct reports.
func Team(ctx context.Context, store EmployeeStore, managerID EmployeeID) ([]Employee, error) {
	return store.ReportingTo(ctx, managerID)
}

// OrgChart renders the reporting tree under root as an indented text
// block, one employee per line:
//
//	Dana Ops (manager)
//	  Lee Field (employee)
//	  Pat Desk (employee)
func OrgChart(ctx context.Context, store EmployeeStore, root EmployeeID) (string, error) {
	var b strings.Builder
	if err := writeOrgChart(ctx, store, root, 0, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeOrgChart(ctx context.Context, store EmployeeStore, id EmployeeID, depth int, b *strings.Builder) error {
	emp, err := store.Employee(ctx, id)
	if err != nil {
		return fmt.Errorf("org chart at employee %d: %w", id, err)
	}

	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(fmt.Sprintf("%s (%s)\n", emp.Name, emp.Role))

	reports, err := store.ReportingTo(ctx, id)
	if err != nil {
		return err
	}
	for _, r := range reports {
		if err := writeOrgChart(ctx, store, r.ID, depth+1, b); err != nil {
			return err
		}
	}
	return nil
}
