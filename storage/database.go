// Model database for the corpus builder.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tetutaro/fasttext-binary-jawiki/countmin"
)

// Bump on incompatible schema changes.
const schemaVersion = "1"

// Settings are the parameters a model database was built with.
type Settings struct {
	// Path or URL of the dump the model was built from.
	Dumpname string

	// Dump version (YYYYMMDD).
	Version string

	// Morphological dictionary used by the segmenter.
	Dictionary string

	// Whether the corpus contains base forms instead of surface forms.
	BaseForm bool
}

const create = (`
	pragma journal_mode = off;
	pragma synchronous = off;

	drop table if exists parameters;
	drop table if exists titles;
	drop table if exists redirects;
	drop table if exists tokenfreq;

	create table parameters (
		key   text primary key not NULL,
		value text default NULL
	);

	create table titles (
		id         integer primary key,
		title      text unique not NULL,
		normalized text not NULL
	);

	create table redirects (
		title  text primary key not NULL,
		target text not NULL
	);

	create table tokenfreq (
		row   integer not NULL,
		col   integer not NULL,
		count integer not NULL
	);
`)

// MakeDB creates a model database at path and stores the settings in it.
// If overwrite is false and path exists, an error is returned.
func MakeDB(path string, overwrite bool, s *Settings) (db *sql.DB, err error) {
	if overwrite {
		os.Remove(path)
	} else if _, serr := os.Stat(path); serr == nil {
		return nil, fmt.Errorf("storage: %s exists (use overwrite)", path)
	}

	db, err = sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			db.Close()
			db = nil
		}
	}()

	if _, err = db.Exec(create); err != nil {
		return
	}

	ins, err := db.Prepare(`insert into parameters values (?, ?)`)
	if err != nil {
		return
	}
	for _, kv := range [][2]string{
		{"schema_version", schemaVersion},
		{"dumpname", s.Dumpname},
		{"version", s.Version},
		{"dictionary", s.Dictionary},
		{"baseform", strconv.FormatBool(s.BaseForm)},
	} {
		if _, err = ins.Exec(kv[0], kv[1]); err != nil {
			return
		}
	}
	return db, nil
}

// LoadModel opens the model database at path and reads back the settings
// it was built with.
func LoadModel(path string) (db *sql.DB, s *Settings, err error) {
	if _, err = os.Stat(path); err != nil {
		return
	}
	db, err = sql.Open("sqlite3", path)
	if err != nil {
		return
	}
	s, err = loadModel(db)
	if err != nil {
		db.Close()
		db = nil
	}
	return
}

func loadModel(db *sql.DB) (*Settings, error) {
	get := db.QueryRow
	var s Settings
	var baseform string

	var schema string
	err := get(`select value from parameters where key = 'schema_version'`).
		Scan(&schema)
	if err != nil || schema != schemaVersion {
		return nil, fmt.Errorf("storage: model schema %q, want %q (rebuild the model)",
			schema, schemaVersion)
	}

	for _, p := range []struct {
		key string
		dst *string
	}{
		{"dumpname", &s.Dumpname},
		{"version", &s.Version},
		{"dictionary", &s.Dictionary},
		{"baseform", &baseform},
	} {
		err := get(`select value from parameters where key = ?`, p.key).Scan(p.dst)
		if err != nil {
			return nil, fmt.Errorf("storage: parameter %q: %v", p.key, err)
		}
	}
	s.BaseForm = baseform == "true"
	return &s, nil
}

// StoreTitles records the pages that passed the content filter: a mapping
// from raw page title to normalized title.
func StoreTitles(db *sql.DB, titles map[string]string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	ins, err := tx.Prepare(`insert or ignore into titles values (NULL, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	for title, normalized := range titles {
		if _, err = ins.Exec(title, normalized); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LoadDictionary returns the mapping stored by StoreTitles.
func LoadDictionary(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`select title, normalized from titles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	titles := make(map[string]string)
	for rows.Next() {
		var title, normalized string
		if err := rows.Scan(&title, &normalized); err != nil {
			return nil, err
		}
		titles[title] = normalized
	}
	return titles, rows.Err()
}

// StoreRedirects records the dump's redirects.
func StoreRedirects(db *sql.DB, redirs map[string]string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	ins, err := tx.Prepare(`insert or replace into redirects values (?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	for title, target := range redirs {
		if _, err = ins.Exec(title, target); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LoadRedirects returns the mapping stored by StoreRedirects.
func LoadRedirects(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`select title, target from redirects`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	redirs := make(map[string]string)
	for rows.Next() {
		var title, target string
		if err := rows.Scan(&title, &target); err != nil {
			return nil, err
		}
		redirs[title] = target
	}
	return redirs, rows.Err()
}

// StoreCM stores the token frequency sketch, replacing any previous one.
func StoreCM(db *sql.DB, sketch *countmin.Sketch) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.Exec(`delete from tokenfreq`); err != nil {
		return
	}
	// Zero cells are not stored, so the dimensions have to be.
	if _, err = tx.Exec(`insert or replace into parameters values
		('sketch_rows', ?), ('sketch_cols', ?)`,
		sketch.NRows(), sketch.NCols()); err != nil {
		return
	}
	ins, err := tx.Prepare(`insert into tokenfreq values (?, ?, ?)`)
	if err != nil {
		return
	}
	for i, row := range sketch.Counts() {
		for j, count := range row {
			if count == 0 {
				continue
			}
			if _, err = ins.Exec(i, j, count); err != nil {
				return
			}
		}
	}
	return nil
}

// LoadCM loads the token frequency sketch stored by StoreCM.
func LoadCM(db *sql.DB) (*countmin.Sketch, error) {
	var nrows, ncols int
	err := db.QueryRow(`select
		(select value from parameters where key = 'sketch_rows'),
		(select value from parameters where key = 'sketch_cols')`).
		Scan(&nrows, &ncols)
	if err != nil {
		return nil, errors.New("storage: no token frequency sketch in model")
	}

	counts := make([][]uint32, nrows)
	for i := range counts {
		counts[i] = make([]uint32, ncols)
	}
	rows, err := db.Query(`select row, col, count from tokenfreq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var i, j int
		var count uint32
		if err := rows.Scan(&i, &j, &count); err != nil {
			return nil, err
		}
		counts[i][j] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return countmin.NewFromCounts(counts)
}

// Finalize records that the model is complete and compacts the database.
func Finalize(db *sql.DB) error {
	if _, err := db.Exec(
		`insert or replace into parameters values ('finalized', 'true')`); err != nil {
		return err
	}
	_, err := db.Exec(`vacuum; analyze`)
	return err
}
