// Package sqlstore keeps contacts in a MySQL table. The table has an auto-increment primary key
// "pk" which is the store key of a contact; the caller-supplied id is an ordinary indexed column.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contact-details/pkg/model"
)

// row is a contact as it is stored in the contacts table.
type row struct {
	Pk         int64          `db:"pk"`
	Id         sql.NullInt64  `db:"id"`
	FirstName  string         `db:"firstname"`
	LastName   string         `db:"lastname"`
	Email      string         `db:"email"`
	Phone      string         `db:"phone"`
	PictureUrl sql.NullString `db:"pictureurl"`
}

// Store is a contact store backed by a SQL database.
type Store struct {
	db *sqlx.DB

	// insert is a prepared statement for creating a contact.
	insert *sqlx.NamedStmt

	// selectAll is a prepared statement for selecting all contacts in insertion order.
	selectAll *sqlx.Stmt

	// selectWhereId is a prepared statement for selecting the first contact with a given id.
	selectWhereId *sqlx.Stmt

	// deleteWhereId is a prepared statement for deleting the first contact with a given id.
	deleteWhereId *sqlx.Stmt

	// updateWherePk is a prepared statement for overwriting a contact with a given primary key.
	updateWherePk *sqlx.NamedStmt
}

// DSN builds the data source name of a MySQL database. With clientFoundRows, an update reports
// the rows it matched even if no value changed.
func DSN(user, password, host, dbname string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&clientFoundRows=true", user, password, host, dbname)
}

// Open connects to the MySQL database described by dsn and prepares all statements.
func Open(dsn string) (*Store, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	return New(sqlDB)
}

// New wraps the specified sql database and prepares all statements. The database argument can be
// a real database for production use or a mock database within unit tests.
func New(sqlDB *sql.DB) (*Store, error) {
	var err error
	s := &Store{db: sqlx.NewDb(sqlDB, "mysql")}

	// Prepared statements offer a significant speed increase if executed many times.
	s.insert, err = s.db.PrepareNamed(`
		INSERT INTO contacts (id, firstname, lastname, email, phone, pictureurl)
		VALUES (:id, :firstname, :lastname, :email, :phone, :pictureurl)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	s.selectAll, err = s.db.Preparex(`
		SELECT * FROM contacts ORDER BY pk
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare select all: %w", err)
	}
	s.selectWhereId, err = s.db.Preparex(`
		SELECT * FROM contacts WHERE id = ? ORDER BY pk LIMIT 1
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare select: %w", err)
	}
	s.deleteWhereId, err = s.db.Preparex(`
		DELETE FROM contacts WHERE id = ? ORDER BY pk LIMIT 1
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare delete: %w", err)
	}
	s.updateWherePk, err = s.db.PrepareNamed(`
		UPDATE contacts
		SET id = :id, firstname = :firstname, lastname = :lastname, email = :email,
			phone = :phone, pictureurl = :pictureurl
		WHERE pk = :pk
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare update: %w", err)
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert adds a row for c and returns c with the new primary key as its store key.
func (s *Store) Insert(ctx context.Context, c model.Contact) (model.Contact, error) {
	result, err := s.insert.ExecContext(ctx, toRow(c))
	if err != nil {
		return model.Contact{}, err
	}
	pk, err := result.LastInsertId()
	if err != nil {
		return model.Contact{}, err
	}
	c.Key = strconv.FormatInt(pk, 10)
	return c, nil
}

// FindAll returns all contacts in insertion order.
func (s *Store) FindAll(ctx context.Context) ([]model.Contact, error) {
	var rows []row
	if err := s.selectAll.SelectContext(ctx, &rows); err != nil {
		return nil, err
	}
	contacts := make([]model.Contact, 0, len(rows))
	for _, r := range rows {
		contacts = append(contacts, r.toContact())
	}
	return contacts, nil
}

// FindOne returns the oldest contact with the given id.
func (s *Store) FindOne(ctx context.Context, id int64) (model.Contact, bool, error) {
	var rows []row
	if err := s.selectWhereId.SelectContext(ctx, &rows, id); err != nil {
		return model.Contact{}, false, err
	}
	if len(rows) == 0 {
		return model.Contact{}, false, nil
	}
	return rows[0].toContact(), true, nil
}

// DeleteOne removes the oldest contact with the given id.
func (s *Store) DeleteOne(ctx context.Context, id int64) (int64, error) {
	result, err := s.deleteWhereId.ExecContext(ctx, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Replace overwrites all columns of the row whose primary key is the store key of c.
func (s *Store) Replace(ctx context.Context, c model.Contact) (bool, error) {
	r := toRow(c)
	pk, err := strconv.ParseInt(c.Key, 10, 64)
	if err != nil {
		return false, fmt.Errorf("invalid store key %q: %w", c.Key, err)
	}
	r.Pk = pk
	result, err := s.updateWherePk.ExecContext(ctx, r)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func toRow(c model.Contact) row {
	r := row{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		PictureUrl: sql.NullString{String: c.PictureUrl, Valid: c.PictureUrl != ""},
	}
	if c.Id != nil {
		r.Id = sql.NullInt64{Int64: *c.Id, Valid: true}
	}
	return r
}

func (r row) toContact() model.Contact {
	c := model.Contact{
		Key:        strconv.FormatInt(r.Pk, 10),
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		PictureUrl: r.PictureUrl.String,
	}
	if r.Id.Valid {
		c.Id = model.Int64(r.Id.Int64)
	}
	return c
}
