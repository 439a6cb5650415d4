package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/locvowork/bi_dashboard/internal/repository/builder"
)

var employeeColumns = []string{
	"employee_id", "name", "alias", "gender", "age", "department", "location", "grade",
	"manager_id", "hire_date", "term_date", "status", "salary_aed", "performance_rating",
	"engagement_score", "overtime_hours_m", "last_promotion_date",
}

type hrRepository struct {
	db *sql.DB
}

// NewHRRepository creates a Postgres backed domain.HRRepository.
func NewHRRepository(db *sql.DB) domain.HRRepository {
	return &hrRepository{db: db}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(s scanner) (domain.Employee, error) {
	var e domain.Employee
	err := s.Scan(&e.EmployeeID, &e.Name, &e.Alias, &e.Gender, &e.Age, &e.Department, &e.Location, &e.Grade,
		&e.ManagerID, &e.HireDate, &e.TermDate, &e.Status, &e.SalaryAED, &e.PerformanceRating,
		&e.EngagementScore, &e.OvertimeHoursM, &e.LastPromotionDate)
	return e, err
}

func (r *hrRepository) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	query, args := builder.NewSQLBuilder().
		Select(employeeColumns...).
		From("hr_employees").
		OrderBy("employee_id ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hr_employees: %w", err)
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *hrRepository) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	query, args := builder.NewSQLBuilder().
		Select(employeeColumns...).
		From("hr_employees").
		Where("employee_id = ?", id).
		Build()

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *hrRepository) ListRequisitions(ctx context.Context) ([]domain.Requisition, error) {
	query, args := builder.NewSQLBuilder().
		Select("req_id", "department", "open_date", "status").
		From("hr_requisitions").
		OrderBy("req_id ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hr_requisitions: %w", err)
	}
	defer rows.Close()

	var reqs []domain.Requisition
	for rows.Next() {
		var q domain.Requisition
		if err := rows.Scan(&q.ReqID, &q.Department, &q.OpenDate, &q.Status); err != nil {
			return nil, err
		}
		reqs = append(reqs, q)
	}
	return reqs, rows.Err()
}

func (r *hrRepository) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	query, args := builder.NewSQLBuilder().
		Select("req_id", "candidate_id", "stage", "submitted_date").
		From("hr_candidates").
		OrderBy("candidate_id ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hr_candidates: %w", err)
	}
	defer rows.Close()

	var cands []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ReqID, &c.CandidateID, &c.Stage, &c.SubmittedDate); err != nil {
			return nil, err
		}
		cands = append(cands, c)
	}
	return cands, rows.Err()
}

// ListLeave loads the leave bookings of one calendar year, or all of them
// when year is zero.
func (r *hrRepository) ListLeave(ctx context.Context, year int) ([]domain.LeaveRecord, error) {
	b := builder.NewSQLBuilder().
		Select("employee_id", "leave_date", "leave_type", "days").
		From("hr_leave")
	if year > 0 {
		b.Where("leave_date >= ?", fmt.Sprintf("%04d-01-01", year)).
			Where("leave_date <= ?", fmt.Sprintf("%04d-12-31", year))
	}
	query, args := b.OrderBy("leave_date ASC").Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hr_leave: %w", err)
	}
	defer rows.Close()

	var leave []domain.LeaveRecord
	for rows.Next() {
		var l domain.LeaveRecord
		if err := rows.Scan(&l.EmployeeID, &l.Date, &l.Type, &l.Days); err != nil {
			return nil, err
		}
		leave = append(leave, l)
	}
	return leave, rows.Err()
}
