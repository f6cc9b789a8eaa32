// Package persistence saves and loads the match collection as a flat,
// line-delimited text file:
//
//	<name>,<team1_name>,<team1_score>,<team2_name>,<team2_score>,<locked|unlocked>
//
// Fields containing a comma or a double quote are quoted CSV-style; all
// other fields are written verbatim.
package persistence

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/okian/scoreboard/internal/adapters/repository"
	"github.com/okian/scoreboard/internal/domain/match"
	"github.com/okian/scoreboard/pkg/logger"
	"github.com/okian/scoreboard/pkg/metrics"
)

const (
	fieldsPerRecord           = 6
	maxLineBytes              = 1 << 20
	defaultFileMode           = 0o644
	nanosecondsPerMillisecond = 1e6
)

// Lister is the read side of a store needed by Save.
type Lister interface {
	List(ctx context.Context) []match.View
}

// LoadReport summarises a load.
type LoadReport struct {
	Loaded  int
	Skipped int
}

// Codec reads and writes one data file. It keeps no match state between calls.
type Codec struct {
	path   string
	mode   os.FileMode
	logger logger.Logger
}

// NewCodec creates a codec for the file at path.
func NewCodec(path string, opts ...Option) *Codec {
	c := &Codec{path: path, mode: defaultFileMode}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the data file location.
func (c *Codec) Path() string { return c.path }

// Save writes every match of src, in list order, replacing the data file.
// The content goes to a temporary file in the same directory which is then
// renamed over the destination, so readers never see a partial file.
func (c *Codec) Save(ctx context.Context, src Lister) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordSaveLatency(float64(time.Since(start).Nanoseconds()) / nanosecondsPerMillisecond)
		if err != nil {
			metrics.RecordSaveError()
			c.log().Error(ctx, "save failed", logger.String("path", c.path), logger.Error(err))
			return
		}
		metrics.RecordSave()
	}()

	if src == nil {
		return fmt.Errorf("%w: %w", ErrSave, repository.ErrNilStore)
	}
	views := src.List(ctx)

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := Encode(bw, views); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := tmp.Chmod(c.mode); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}

	c.log().Debug(ctx, "matches saved", logger.String("path", c.path), logger.Int("matches", len(views)))
	return nil
}

// Load reads the data file into a fresh store. A missing file yields an
// empty store and no error.
func (c *Codec) Load(ctx context.Context, opts ...repository.Option) (*repository.MemoryStore, error) {
	store := repository.NewMemoryStore(opts...)
	if _, err := c.LoadInto(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// LoadInto restores every well-formed line of the data file into dst.
// Malformed lines are skipped and counted; only I/O failures are returned.
func (c *Codec) LoadInto(ctx context.Context, dst repository.Restorer) (LoadReport, error) {
	var report LoadReport
	if dst == nil {
		return report, fmt.Errorf("%w: %w", ErrLoad, repository.ErrNilStore)
	}

	f, err := os.Open(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		c.log().Info(ctx, "no saved matches", logger.String("path", c.path))
		metrics.RecordLoad(0)
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer func() { _ = f.Close() }()

	skip := func(lineNo int, err error) {
		report.Skipped++
		metrics.RecordLoadSkippedLine()
		c.log().Debug(ctx, "skipping malformed line",
			logger.String("path", c.path),
			logger.Int("line", lineNo),
			logger.Error(err),
		)
	}

	br := bufio.NewReader(f)
	lineNo := 0
	for {
		raw, tooLong, err := readLine(br, maxLineBytes)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("%w: line %d: %w", ErrLoad, lineNo+1, err)
		}
		lineNo++
		if tooLong {
			skip(lineNo, fmt.Errorf("%w: line longer than %d bytes", match.ErrParse, maxLineBytes))
			continue
		}
		line := strings.TrimSpace(string(raw))
		if line == "" {
			continue
		}
		v, err := DecodeLine(line)
		if err == nil {
			err = dst.Restore(ctx, v)
		}
		if err != nil {
			skip(lineNo, err)
			continue
		}
		report.Loaded++
	}

	metrics.RecordLoad(report.Loaded)
	c.log().Info(ctx, "matches loaded",
		logger.String("path", c.path),
		logger.Int("loaded", report.Loaded),
		logger.Int("skipped", report.Skipped),
	)
	return report, nil
}

// readLine returns the next line without its terminator. A line longer than
// limit is read to its end and reported as tooLong with no content. io.EOF is
// returned only when no line is left.
func readLine(br *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	started := false
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && started {
				return line, tooLong, nil
			}
			return nil, false, err
		}
		started = true
		if !tooLong {
			if len(line)+len(chunk) > limit {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !isPrefix {
			return line, tooLong, nil
		}
	}
}

// Encode writes one line per view.
func Encode(w io.Writer, views []match.View) error {
	cw := csv.NewWriter(w)
	record := make([]string, fieldsPerRecord)
	for _, v := range views {
		record[0] = v.Name
		record[1] = v.Team1Name
		record[2] = strconv.Itoa(v.Team1Score)
		record[3] = v.Team2Name
		record[4] = strconv.Itoa(v.Team2Score)
		record[5] = v.Lock.String()
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeLine parses a single data line. Quoted fields follow CSV rules;
// a line that does not parse as CSV into six fields is split on plain
// commas instead. Every failure wraps match.ErrParse.
func DecodeLine(line string) (match.View, error) {
	fields, err := splitFields(line)
	if err != nil {
		return match.View{}, err
	}

	s1, err := parseScore(fields[2])
	if err != nil {
		return match.View{}, err
	}
	s2, err := parseScore(fields[4])
	if err != nil {
		return match.View{}, err
	}
	lock, err := match.ParseLockState(fields[5])
	if err != nil {
		return match.View{}, err
	}

	return match.View{
		Name:       fields[0],
		Team1Name:  fields[1],
		Team1Score: s1,
		Team2Name:  fields[3],
		Team2Score: s2,
		Lock:       lock,
	}, nil
}

func splitFields(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	fields, err := r.Read()
	if err == nil && len(fields) == fieldsPerRecord {
		return fields, nil
	}
	if plain := strings.Split(line, ","); len(plain) == fieldsPerRecord {
		return plain, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", match.ErrParse, err)
	}
	return nil, fmt.Errorf("%w: want %d fields, got %d", match.ErrParse, fieldsPerRecord, len(fields))
}

func parseScore(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: score %q: %w", match.ErrParse, s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative score %d", match.ErrParse, n)
	}
	return n, nil
}

func (c *Codec) log() logger.Logger {
	if c.logger != nil {
		return c.logger
	}
	return logger.Nop()
}
