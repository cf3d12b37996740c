package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/ctl"
	"github.com/effective-security/x/fileutil"
	"github.com/effective-security/x/print"
	"github.com/effective-security/xlog"
	"github.com/effective-security/xrpm/config"
	"github.com/effective-security/xrpm/gpg"
	"github.com/effective-security/xrpm/pgpsig"
	"github.com/effective-security/xrpm/rpmcrypto"
	"golang.org/x/net/context"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xrpm", "cli")

// Cli provides CLI context to run commands
type Cli struct {
	Version  ctl.VersionFlag `name:"version" help:"Print version information and quit" hidden:""`
	Cfg      string          `help:"Location of config file" type:"path"`
	Debug    bool            `short:"D" help:"Enable debug mode"`
	LogLevel string          `short:"l" help:"Set the logging level (debug|info|warn|error)" default:"error"`

	// Stdin is the source to read from, typically set to os.Stdin
	stdin io.Reader
	// Output is the destination for all output from the command, typically set to os.Stdout
	output io.Writer
	// ErrOutput is the destinaton for errors.
	// If not set, errors will be written to os.StdError
	errOutput io.Writer

	ctx context.Context
	cfg *config.Config
}

// Context for requests
func (c *Cli) Context() context.Context {
	if c.ctx == nil {
		c.ctx = context.Background()
	}
	return c.ctx
}

// Reader is the source to read from, typically set to os.Stdin
func (c *Cli) Reader() io.Reader {
	if c.stdin != nil {
		return c.stdin
	}
	return os.Stdin
}

// WithReader allows to specify a custom reader
func (c *Cli) WithReader(reader io.Reader) *Cli {
	c.stdin = reader
	return c
}

// Writer returns a writer for control output
func (c *Cli) Writer() io.Writer {
	if c.output != nil {
		return c.output
	}
	return os.Stdout
}

// WithWriter allows to specify a custom writer
func (c *Cli) WithWriter(out io.Writer) *Cli {
	c.output = out
	return c
}

// ErrWriter returns a writer for control output
func (c *Cli) ErrWriter() io.Writer {
	if c.errOutput != nil {
		return c.errOutput
	}
	return os.Stderr
}

// WithErrWriter allows to specify a custom error writer
func (c *Cli) WithErrWriter(out io.Writer) *Cli {
	c.errOutput = out
	return c
}

// AfterApply hook sets the log level
func (c *Cli) AfterApply(app *kong.Kong, vars kong.Vars) error {
	if c.Debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		val := strings.TrimLeft(c.LogLevel, "=")
		l, err := xlog.ParseLevel(strings.ToUpper(val))
		if err != nil {
			return errors.WithStack(err)
		}
		xlog.SetGlobalLogLevel(l)
	}

	return nil
}

// WriteJSON prints response to out
func (c *Cli) WriteJSON(value interface{}) error {
	print.JSON(c.Writer(), value)
	return nil
}

// Config returns the configuration from --cfg, or the defaults
func (c *Cli) Config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	if c.Cfg == "" {
		c.cfg = &config.Config{}
		return c.cfg, nil
	}
	if err := fileutil.FileExists(c.Cfg); err != nil {
		return nil, errors.WithMessage(err, "invalid --cfg")
	}
	cfg, err := config.Load(c.Cfg)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return c.cfg, nil
}

// Token initializes the native library
func (c *Cli) Token() (rpmcrypto.InitToken, error) {
	cfg, err := c.Config()
	if err != nil {
		return rpmcrypto.InitToken{}, err
	}
	return rpmcrypto.InitWithConfig(cfg), nil
}

// ReadSignature reads a binary or armored signature, from stdin if the file is "-"
func (c *Cli) ReadSignature(filename string) ([]byte, error) {
	var data []byte
	var err error
	switch filename {
	case "":
		return nil, errors.New("empty file name")
	case "-":
		data, err = io.ReadAll(c.Reader())
	default:
		data, err = os.ReadFile(filename)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return gpg.Dearmor(data)
}

// Policy holds the flags shared by signature commands
type Policy struct {
	Time      string `help:"Reference time: now, none or RFC3339 (default from config, or now)"`
	AllowWeak *bool  `help:"Allow weak hash algorithms (default from config)"`
}

// resolve returns the reference time and the weak hash policy
func (p *Policy) resolve(cfg *config.Config, now time.Time) (uint32, pgpsig.AllowWeakHashes, error) {
	val := p.Time
	if val == "" {
		val = cfg.ReferenceTime
	}
	t, err := config.ParseReferenceTime(val, now)
	if err != nil {
		return 0, false, err
	}

	allow := cfg.AllowWeakHashes
	if p.AllowWeak != nil {
		allow = *p.AllowWeak
	}
	logger.KV(xlog.DEBUG, "time", t, "allow_weak", allow)
	return t, pgpsig.AllowWeakHashes(allow), nil
}
