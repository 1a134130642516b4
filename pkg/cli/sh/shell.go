// Package sh provides the interactive shell of the bridge CLI.
package sh

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abiosoft/ishell"

	fx "github.com/emberone/bridge.go/pkg/framework"
	"github.com/emberone/bridge.go/pkg/host"
	"github.com/emberone/bridge.go/pkg/transport"
)

// Config provides common options to reach a bridge.
type Config struct {
	// DeviceURL specifies the command channel endpoint.
	// e.g. serial:/dev/ttyACM0?baud=115200 or tcp://host:7770
	DeviceURL string
}

var defaultConfig = Config{
	DeviceURL: "serial:/dev/ttyACM0?baud=115200",
}

func init() {
	if val := os.Getenv("EMBER_DEVICE"); val != "" {
		defaultConfig.DeviceURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.DeviceURL, "device", defaultConfig.DeviceURL, "Bridge device URL.")
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Shell provides an ishell backed interactive shell.
type Shell struct {
	Interactive bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *Config
	Conn   *Conn
}

// Conn is a live connection to a bridge.
type Conn struct {
	Ctx    context.Context
	Cancel func()
	Client *host.Client
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly bool

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// AddCmds is used by other command providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps a command func which requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// DoCall runs one command against the connected bridge and prints the
// result. Empty response data prints OK, otherwise the bytes in hex.
func DoCall(c *ishell.Context, fn func(context.Context, *host.Client) ([]byte, error)) {
	s := ShellFrom(c)
	if s.Conn == nil {
		c.Err(fmt.Errorf("not connected"))
		return
	}
	ctx, cancel := context.WithTimeout(s.Conn.Ctx, time.Second)
	defer cancel()
	data, err := fn(ctx, s.Conn.Client)
	if err != nil {
		c.Err(err)
		return
	}
	if len(data) == 0 {
		c.Println("OK")
		return
	}
	c.Printf("% x\n", data)
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect opens the device URL and starts the response loop. The
// transport is closed when the loop exits or the connection is
// canceled, which also unblocks a read in progress.
func (s *Shell) Connect(deviceURL string) error {
	rwc, err := transport.Dial(deviceURL)
	if err != nil {
		return err
	}
	conn := &Conn{Client: host.NewClient(rwc)}
	conn.Ctx, conn.Cancel = context.WithCancel(context.Background())
	if s.Conn != nil {
		s.Disconnect()
	}
	s.Conn = conn
	go fx.RunWithContextCloser(conn.Ctx, rwc, func() error {
		return conn.Client.Run(conn.Ctx)
	})
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", deviceURL))
	return nil
}

// Disconnect disconnects the current bridge.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Cancel()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.DeviceURL != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.DeviceURL)
		}
		if err := s.Connect(s.Config.DeviceURL); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.DeviceURL, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// ConnectCmd connects a bridge.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[URL]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			deviceURL := s.Config.DeviceURL
			if len(c.Args) >= 1 {
				deviceURL = c.Args[0]
			}
			if err := s.Connect(deviceURL); err != nil {
				c.Err(err)
				return
			}
		},
	}

	// DisconnectCmd disconnects the current bridge.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
