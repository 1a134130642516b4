// Package mqtt tunnels a byte stream over a pair of MQTT topics so a
// bridge can be reached across a broker instead of a local device.
package mqtt

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// ErrClosed indicates the stream has been closed.
var ErrClosed = errors.New("mqtt stream closed")

// Options describe one end of a topic-pair stream. The host publishes
// on PREFIX/host and subscribes on PREFIX/device; the device end is
// the mirror image.
type Options struct {
	ClientOptions *paho.ClientOptions
	TopicPrefix   string
	Device        bool
}

// OptionsFromURL parses mqtt://[user:pass@]host[:port]/prefix with
// optional client-id and role=host|device query parameters.
func OptionsFromURL(rawurl string) (*Options, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	server := u.Scheme
	if server == "" || server == "mqtt" {
		server = "tcp"
	}
	server += "://" + u.Host

	prefix := strings.TrimPrefix(u.Path, "/")
	if prefix == "" {
		return nil, errors.New("mqtt url missing topic prefix")
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	clientID := u.Query().Get("client-id")
	if clientID == "" {
		clientID = defaultClientID()
	}
	opts.SetClientID(clientID)

	return &Options{
		ClientOptions: opts,
		TopicPrefix:   prefix,
		Device:        u.Query().Get("role") == "device",
	}, nil
}

func defaultClientID() string {
	id, err := machineid.ID()
	if err != nil || len(id) < 8 {
		return "ember"
	}
	return "ember-" + id[:8]
}

// Stream is an io.ReadWriteCloser over a pair of MQTT topics.
type Stream struct {
	client   paho.Client
	pubTopic string
	subTopic string

	readCh  chan []byte
	pending []byte
	closed  chan struct{}
	once    sync.Once
}

// Dial connects to the broker described by rawurl and subscribes the
// receiving topic.
func Dial(rawurl string) (*Stream, error) {
	opts, err := OptionsFromURL(rawurl)
	if err != nil {
		return nil, err
	}
	return DialOptions(opts)
}

// DialOptions connects with explicit Options.
func DialOptions(opts *Options) (*Stream, error) {
	s := &Stream{
		pubTopic: opts.TopicPrefix + "/host",
		subTopic: opts.TopicPrefix + "/device",
		readCh:   make(chan []byte, 16),
		closed:   make(chan struct{}),
	}
	if opts.Device {
		s.pubTopic, s.subTopic = s.subTopic, s.pubTopic
	}
	s.client = paho.NewClient(opts.ClientOptions)
	token := s.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	glog.V(2).Infof("SUB %q", s.subTopic)
	token = s.client.Subscribe(s.subTopic, 0, s.receive)
	token.Wait()
	if err := token.Error(); err != nil {
		s.client.Disconnect(250)
		return nil, err
	}
	return s, nil
}

func (s *Stream) receive(c paho.Client, msg paho.Message) {
	payload := msg.Payload()
	if len(payload) == 0 {
		return
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	select {
	case s.readCh <- buf:
	case <-s.closed:
	}
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	if len(s.pending) == 0 {
		select {
		case chunk := <-s.readCh:
			s.pending = chunk
		case <-s.closed:
			return 0, ErrClosed
		}
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	select {
	case <-s.closed:
		return 0, ErrClosed
	default:
	}
	token := s.client.Publish(s.pubTopic, 0, false, p)
	token.Wait()
	if err := token.Error(); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close implements io.Closer.
func (s *Stream) Close() error {
	s.once.Do(func() {
		close(s.closed)
		s.client.Disconnect(250)
	})
	return nil
}
