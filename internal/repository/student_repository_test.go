package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizuki-dev/student-management-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "furigana", "nickname", "email", "city", "age", "gender", "remark", "is_deleted"})
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := studentRows().
		AddRow("s1", "Hanako Sato", "さとうはなこ", "hana", "hanako@example.com", "Tokyo", 22, "female", "", false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, furigana, nickname, email, city, age, gender, remark, is_deleted FROM students WHERE is_deleted = false ORDER BY id")).
		WillReturnRows(rows)

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Hanako Sato", students[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, furigana, nickname, email, city, age, gender, remark, is_deleted FROM students WHERE id = $1 AND is_deleted = false")).
		WithArgs("s1").
		WillReturnRows(studentRows().AddRow("s1", "Hanako Sato", "さとうはなこ", "", "hanako@example.com", "Tokyo", 22, "female", "", false))

	student, err := repo.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT .+ FROM students WHERE id =").
		WithArgs("missing").
		WillReturnRows(studentRows())

	_, err := repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySearchConditions(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_deleted = false AND LOWER(name) LIKE $1 AND city = $2 AND gender = $3 ORDER BY id")).
		WithArgs("%hanako%", "Tokyo", "female").
		WillReturnRows(studentRows().AddRow("s1", "Hanako Sato", "さとうはなこ", "", "hanako@example.com", "Tokyo", 22, "female", "", false))

	students, err := repo.Search(context.Background(), models.StudentSearchCondition{Name: "Hanako", City: "Tokyo", Gender: "female"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySearchEmptyConditionListsAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE is_deleted = false ORDER BY id")).
		WillReturnRows(studentRows().
			AddRow("s1", "Hanako Sato", "さとうはなこ", "", "hanako@example.com", "Tokyo", 22, "female", "", false).
			AddRow("s2", "Taro Suzuki", "すずきたろう", "", "taro@example.com", "Osaka", 31, "male", "", false))

	students, err := repo.Search(context.Background(), models.StudentSearchCondition{})
	require.NoError(t, err)
	assert.Len(t, students, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").
		WithArgs("s1", "Hanako Sato", "さとうはなこ", "", "hanako@example.com", "Tokyo", 22, "female", "", false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	err = repo.CreateWithTx(context.Background(), tx, &models.Student{
		ID: "s1", Name: "Hanako Sato", Furigana: "さとうはなこ", Email: "hanako@example.com",
		City: "Tokyo", Age: 22, Gender: "female",
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateWithTxNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE students SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	err = repo.UpdateWithTx(context.Background(), tx, &models.Student{ID: "ghost", Name: "No One"})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySoftDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET is_deleted = true WHERE id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySoftDeleteUnknownIDIsNoError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET is_deleted = true").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SoftDelete(context.Background(), "missing"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
