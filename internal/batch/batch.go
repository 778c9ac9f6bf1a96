// Package batch decodes and demultiplexes several inputs concurrently.
package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/ptrmux/internal/detect"
	"github.com/dkoosis/ptrmux/internal/store"
	"github.com/dkoosis/ptrmux/pkg/demux"
	"github.com/dkoosis/ptrmux/pkg/eventjson"
	"github.com/dkoosis/ptrmux/pkg/mapper"
	"github.com/dkoosis/ptrmux/pkg/stdf"
)

// ErrUnknownFormat is returned for input that is neither STDF nor an NDJSON
// event stream.
var ErrUnknownFormat = errors.New("unrecognized input format (expected STDF or ptr/prr NDJSON)")

// Source names one input and opens it on demand.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileSource reads path from disk.
func FileSource(path string) Source {
	return Source{
		Name: path,
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// ReaderSource wraps an already open reader such as stdin.
func ReaderSource(name string, r io.Reader) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

// Options configures a batch run.
type Options struct {
	Workers int
	Demux   demux.Options
	Store   *store.Store // nil disables persistence
	Logger  *zap.Logger
}

// Run processes every source with at most opts.Workers in flight. Outcomes
// are returned in input order. Per-file failures are recorded in the
// outcome; the returned error is non-nil only when ctx is cancelled.
func Run(ctx context.Context, sources []Source, opts Options) ([]mapper.FileOutcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]mapper.FileOutcome, len(sources))
	var storeMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := mapper.FileOutcome{Source: src.Name}
			res, err := process(src, opts.Demux, logger)
			if err != nil {
				logger.Warn("input failed", zap.String("source", src.Name), zap.Error(err))
				out.Err = err
				outcomes[i] = out
				return nil
			}
			out.Result = &res

			if opts.Store != nil {
				storeMu.Lock()
				id, err := opts.Store.SaveRun(gctx, src.Name, opts.Demux.Policy, res)
				storeMu.Unlock()
				if err != nil {
					out.Result, out.Err = nil, fmt.Errorf("store: %w", err)
				} else {
					logger.Debug("run stored", zap.String("source", src.Name), zap.String("run", id))
				}
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func process(src Source, opts demux.Options, logger *zap.Logger) (demux.Result, error) {
	rc, err := src.Open()
	if err != nil {
		return demux.Result{}, err
	}
	defer rc.Close()

	ev, err := Ingest(rc, logger.With(zap.String("source", src.Name)))
	if err != nil {
		return demux.Result{}, err
	}
	opts.Logger = logger.With(zap.String("source", src.Name))
	res := demux.Run(ev, opts)
	if res.Stats.Halted {
		logger.Warn("completions exhausted before the last test",
			zap.String("source", src.Name),
			zap.Int("consumed", res.Cursor.Param),
			zap.Int("events", res.Events))
	}
	return res, nil
}

// Ingest reads r fully, sniffs its format and decodes it into events.
func Ingest(r io.Reader, logger *zap.Logger) (demux.Events, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return demux.Events{}, fmt.Errorf("reading input: %w", err)
	}

	switch f := detect.Sniff(data); f {
	case detect.STDF:
		return stdf.ReadEvents(bytes.NewReader(data))
	case detect.EventJSON:
		ev, malformed, err := eventjson.ParseBytes(data)
		if err != nil {
			return demux.Events{}, err
		}
		if malformed > 0 {
			logger.Warn("skipped malformed event lines", zap.Int("lines", malformed))
		}
		return ev, nil
	default:
		return demux.Events{}, ErrUnknownFormat
	}
}
