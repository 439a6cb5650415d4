package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLBuilder(t *testing.T) {
	t.Run("Select", func(t *testing.T) {
		query, args := NewSQLBuilder().Select("period", "revenue").From("finance_monthly").Where("period >= ?", "2024-01").Build()
		assert.Equal(t, "SELECT period, revenue FROM finance_monthly WHERE period >= $1", query)
		assert.Equal(t, []interface{}{"2024-01"}, args)
	})

	t.Run("Select distinct", func(t *testing.T) {
		query, args := NewSQLBuilder().Select("country").Distinct().From("finance_monthly").OrderBy("country").Build()
		assert.Equal(t, "SELECT DISTINCT country FROM finance_monthly ORDER BY country", query)
		assert.Empty(t, args)
	})

	t.Run("Insert", func(t *testing.T) {
		query, args := NewSQLBuilder().Insert("hr_requisitions", "req_id", "department").Values("R1", "Sales").Build()
		assert.Equal(t, "INSERT INTO hr_requisitions (req_id, department) VALUES ($1, $2)", query)
		assert.Equal(t, []interface{}{"R1", "Sales"}, args)
	})

	t.Run("Multi row insert with conflict", func(t *testing.T) {
		query, args := NewSQLBuilder().
			Insert("hr_requisitions", "req_id", "department").
			Values("R1", "Sales").
			Values("R2", "IT").
			OnConflict("(req_id) DO NOTHING").
			Build()
		assert.Equal(t, "INSERT INTO hr_requisitions (req_id, department) VALUES ($1, $2), ($3, $4) ON CONFLICT (req_id) DO NOTHING", query)
		assert.Equal(t, []interface{}{"R1", "Sales", "R2", "IT"}, args)
	})

	t.Run("Delete", func(t *testing.T) {
		query, args := NewSQLBuilder().Delete("finance_arap").Where("ledger = ?", "ar").Build()
		assert.Equal(t, "DELETE FROM finance_arap WHERE ledger = $1", query)
		assert.Equal(t, []interface{}{"ar"}, args)
	})
}

func TestSQLBuilder_WhereInOrEmpty(t *testing.T) {
	t.Run("selection keeps empty values and is ANDed", func(t *testing.T) {
		query, args := NewSQLBuilder().
			Select("*").
			From("finance_monthly").
			Where("period >= ?", "2024-01").
			WhereInOrEmpty("country", "UAE", "KSA").
			WhereInOrEmpty("channel", "Retail").
			Build()
		assert.Equal(t, "SELECT * FROM finance_monthly WHERE period >= $1 AND (country = '' OR country IN ($2, $3)) AND (channel = '' OR channel IN ($4))", query)
		assert.Equal(t, []interface{}{"2024-01", "UAE", "KSA", "Retail"}, args)
	})

	t.Run("empty selection adds nothing", func(t *testing.T) {
		query, args := NewSQLBuilder().Select("*").From("finance_monthly").WhereInOrEmpty("country").Build()
		assert.Equal(t, "SELECT * FROM finance_monthly", query)
		assert.Empty(t, args)
	})

	t.Run("Build is repeatable", func(t *testing.T) {
		b := NewSQLBuilder().Select("*").From("finance_monthly").WhereInOrEmpty("status", "Actual")
		q1, a1 := b.Build()
		q2, a2 := b.Build()
		assert.Equal(t, q1, q2)
		assert.Equal(t, a1, a2)
		assert.Len(t, a2, 1)
	})
}

func TestSQLBuilder_BuildSafe(t *testing.T) {
	_, args, err := NewSQLBuilder().Select("*").From("hr_leave").
		Where("employee_id = ?", "E1").
		Where("leave_date >= ?", "2024-01-01").
		BuildSafe()
	require.NoError(t, err)
	assert.Len(t, args, 2)

	_, _, err = NewSQLBuilder().Select("*").From("hr_leave").Where("employee_id = ? AND days > ?", "E1").BuildSafe()
	assert.Error(t, err)

	_, _, err = NewSQLBuilder().Insert("hr_leave", "employee_id", "days").Values("E1").BuildSafe()
	assert.Error(t, err)
}
