package score

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"git.lost.host/meutraa/stepway/internal/game"
)

// Run is one completed (or abandoned) play of a chart.
type Run struct {
	Sum      string // identity hash of the chart played
	Score    int
	MaxCombo int
	Life     float64
	Counts   []int
	Inputs   []game.Input
	PlayedAt time.Time
}

// Store persists runs keyed by chart identity hash.
type Store struct {
	db *sql.DB
}

// InputsCompact groups input times by lane for storage.
type InputsCompact struct {
	Lane  int
	Times []float64
}

func compactInputs(inputs []game.Input) []InputsCompact {
	laneCount := 0
	for _, i := range inputs {
		if i.Lane >= laneCount {
			laneCount = i.Lane + 1
		}
	}
	ins := make([]InputsCompact, laneCount)
	for i := range ins {
		ins[i].Lane = i
	}
	for _, i := range inputs {
		ins[i.Lane].Times = append(ins[i.Lane].Times, i.Time)
	}
	return ins
}

func uncompactInputs(inputs []InputsCompact) []game.Input {
	ins := []game.Input{}
	for _, i := range inputs {
		for _, t := range i.Times {
			ins = append(ins, game.Input{Lane: i.Lane, Time: t})
		}
	}
	return ins
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if nil != err {
		return nil, err
	}

	initStatement := `
	create table if not exists runs
	  (
		  id integer not null primary key,
		  sum text,
		  score integer,
		  max_combo integer,
		  life real,
		  counts text,
		  inputs bytearray,
		  played_at integer
	  );
	`
	if _, err := db.Exec(initStatement); nil != err {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if nil != s.db {
		s.db.Close()
	}
}

func (s *Store) SaveRun(run Run) {
	inputs, err := json.Marshal(compactInputs(run.Inputs))
	if nil != err {
		log.Println("unable to marshal inputs", err)
		return
	}
	counts, err := json.Marshal(run.Counts)
	if nil != err {
		log.Println("unable to marshal counts", err)
		return
	}
	at := run.PlayedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err = s.db.Exec(
		"insert into runs(sum, score, max_combo, life, counts, inputs, played_at) values(?, ?, ?, ?, ?, ?, ?)",
		run.Sum, run.Score, run.MaxCombo, run.Life, counts, inputs, at.Unix())
	if nil != err {
		log.Println("unable to save run", err)
		return
	}
}

func (s *Store) Runs(sum string) []Run {
	runs := []Run{}
	rows, err := s.db.Query(
		"select score, max_combo, life, counts, inputs, played_at from runs where sum = ? order by played_at",
		sum)
	if nil != err {
		if err != sql.ErrNoRows {
			log.Println("unable to load runs", err)
		}
		return runs
	}
	defer rows.Close()
	for rows.Next() {
		var run Run
		var counts, inputs []byte
		var at int64
		if err := rows.Scan(&run.Score, &run.MaxCombo, &run.Life, &counts, &inputs, &at); nil != err {
			log.Println("unable to scan run", err)
			continue
		}
		if err := json.Unmarshal(counts, &run.Counts); nil != err {
			log.Println("unable to unmarshal counts")
			continue
		}
		var ns []InputsCompact
		if err := json.Unmarshal(inputs, &ns); nil != err {
			log.Println("unable to unmarshal input history")
			continue
		}
		run.Sum = sum
		run.Inputs = uncompactInputs(ns)
		run.PlayedAt = time.Unix(at, 0)
		runs = append(runs, run)
	}
	return runs
}
