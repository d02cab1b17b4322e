package opts

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/config/model"
	"github.com/walteh/rewriterc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigPath string // Empty means discover a default file in the working directory
	Debug      bool
	NoColor    bool
	LogFile    string // Empty means the XDG state dir

	Stdout io.Writer
	Stderr io.Writer

	config  *model.Config
	closers []io.Closer
}

// New returns options writing to the process streams.
func New() *RootOpts {
	return &RootOpts{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Config loads the rule set once and caches it.
func (o *RootOpts) Config(ctx context.Context) (*model.Config, error) {
	if o.config != nil {
		return o.config, nil
	}

	path := o.ConfigPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Errorf("getting working directory: %w", err)
		}
		path, err = config.Discover(wd)
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	o.ConfigPath = path
	o.config = cfg
	return cfg, nil
}

// Logger returns a console logger writing to Stdout.
func (o *RootOpts) Logger(ctx context.Context) *log.Logger {
	return log.New(o.Stdout, *zerolog.Ctx(ctx))
}

// OnClose registers c to be closed by Close.
func (o *RootOpts) OnClose(c io.Closer) {
	o.closers = append(o.closers, c)
}

// Close releases everything registered with OnClose.
func (o *RootOpts) Close() error {
	var errs []error
	for _, c := range o.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	o.closers = nil
	return errors.Join(errs...)
}
