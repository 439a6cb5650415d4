package repository

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var employeeSelect = "SELECT " + strings.Join(employeeColumns, ", ") + " FROM hr_employees"

func employeeRow() *sqlmock.Rows {
	return sqlmock.NewRows(employeeColumns).
		AddRow("E001", "Amal", "amal", "Female", 31, "Finance", "Dubai", "G5", "",
			"2021-03-01", "", "Active", 21000.0, 4, 4.1, 6.0, "2023-01-01")
}

func TestHRRepository_ListEmployees(t *testing.T) {
	mock, _, repo := newMock(t)

	mock.ExpectQuery(employeeSelect + " ORDER BY employee_id ASC").
		WillReturnRows(employeeRow())

	employees, err := repo.ListEmployees(context.Background())
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "G5", employees[0].Grade)
	assert.Equal(t, 21000.0, employees[0].SalaryAED)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHRRepository_GetEmployee(t *testing.T) {
	mock, _, repo := newMock(t)

	mock.ExpectQuery(employeeSelect + " WHERE employee_id = $1").
		WithArgs("E001").
		WillReturnRows(employeeRow())

	e, err := repo.GetEmployee(context.Background(), "E001")
	require.NoError(t, err)
	assert.Equal(t, "Amal", e.Name)
	assert.Equal(t, 4, e.PerformanceRating)
	assert.True(t, e.IsActive())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHRRepository_GetEmployee_NotFound(t *testing.T) {
	mock, _, repo := newMock(t)

	mock.ExpectQuery(employeeSelect + " WHERE employee_id = $1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetEmployee(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHRRepository_ListLeave(t *testing.T) {
	t.Run("year bounds", func(t *testing.T) {
		mock, _, repo := newMock(t)
		mock.ExpectQuery("SELECT employee_id, leave_date, leave_type, days FROM hr_leave WHERE leave_date >= $1 AND leave_date <= $2 ORDER BY leave_date ASC").
			WithArgs("2024-01-01", "2024-12-31").
			WillReturnRows(sqlmock.NewRows([]string{"employee_id", "leave_date", "leave_type", "days"}).
				AddRow("E001", "2024-02-10", "Annual", 3.0))

		leave, err := repo.ListLeave(context.Background(), 2024)
		require.NoError(t, err)
		require.Len(t, leave, 1)
		assert.Equal(t, 3.0, leave[0].Days)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("all years", func(t *testing.T) {
		mock, _, repo := newMock(t)
		mock.ExpectQuery("SELECT employee_id, leave_date, leave_type, days FROM hr_leave ORDER BY leave_date ASC").
			WillReturnRows(sqlmock.NewRows([]string{"employee_id", "leave_date", "leave_type", "days"}))

		_, err := repo.ListLeave(context.Background(), 0)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHRRepository_Recruiting(t *testing.T) {
	mock, _, repo := newMock(t)

	mock.ExpectQuery("SELECT req_id, department, open_date, status FROM hr_requisitions ORDER BY req_id ASC").
		WillReturnRows(sqlmock.NewRows([]string{"req_id", "department", "open_date", "status"}).
			AddRow("R1", "Sales", "2024-04-01", "Open"))
	mock.ExpectQuery("SELECT req_id, candidate_id, stage, submitted_date FROM hr_candidates ORDER BY candidate_id ASC").
		WillReturnRows(sqlmock.NewRows([]string{"req_id", "candidate_id", "stage", "submitted_date"}).
			AddRow("R1", "C1", "Offer", "2024-05-01"))

	reqs, err := repo.ListRequisitions(context.Background())
	require.NoError(t, err)
	cands, err := repo.ListCandidates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Sales", reqs[0].Department)
	assert.Equal(t, "Offer", cands[0].Stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
