// Package mqtt implements the CLI's Broker port over an MQTT connection.
// Commands go to a thread's control topic; node state comes from retained
// messages on the thread's state topics.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/mikey-austin/nekotv/pkg/neko"
)

// Options configures the MQTT client.
type Options struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	TLSCA     string
	TLSCert   string
	TLSKey    string
	TopicBase string
	Timeout   time.Duration
}

// Client is an MQTT adapter implementing the Broker port.
type Client struct {
	client    paho.Client
	topicBase string
	timeout   time.Duration
}

// NewClient creates and connects an MQTT client.
func NewClient(opts Options) (*Client, error) {
	if opts.TopicBase == "" {
		opts.TopicBase = neko.BaseTopic
	}
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Second
	}

	clientOpts := paho.NewClientOptions().AddBroker(opts.BrokerURL)
	clientOpts.SetClientID(opts.ClientID)
	clientOpts.SetConnectTimeout(opts.Timeout)
	clientOpts.SetAutoReconnect(true)

	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
		clientOpts.SetPassword(opts.Password)
	}

	tlsConfig, err := buildTLSConfig(opts.TLSCA, opts.TLSCert, opts.TLSKey)
	if err != nil {
		return nil, err
	}
	if tlsConfig != nil {
		clientOpts.SetTLSConfig(tlsConfig)
	}

	c := &Client{topicBase: opts.TopicBase, timeout: opts.Timeout}
	c.client = paho.NewClient(clientOpts)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return c, nil
}

// PublishControl publishes a control command on the thread's control topic.
func (c *Client) PublishControl(ctx context.Context, thread string, ctl neko.Control) error {
	payload, err := json.Marshal(ctl)
	if err != nil {
		return fmt.Errorf("marshal control: %w", err)
	}
	topic := neko.TopicControl(c.topicBase, thread)
	token := c.client.Publish(topic, 1, false, payload)
	token.Wait()
	return token.Error()
}

// GetPlayerState returns one node's retained state.
func (c *Client) GetPlayerState(ctx context.Context, thread string, nodeID string) (neko.PlayerState, error) {
	stateCh := make(chan neko.PlayerState, 1)
	handler := func(_ paho.Client, msg paho.Message) {
		var state neko.PlayerState
		if err := json.Unmarshal(msg.Payload(), &state); err != nil {
			return
		}
		select {
		case stateCh <- state:
		default:
		}
	}

	topic := neko.TopicState(c.topicBase, thread, nodeID)
	if token := c.client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		return neko.PlayerState{}, token.Error()
	}
	defer func() {
		token := c.client.Unsubscribe(topic)
		token.Wait()
	}()

	select {
	case <-ctx.Done():
		return neko.PlayerState{}, ctx.Err()
	case state := <-stateCh:
		return state, nil
	case <-time.After(c.timeout):
		return neko.PlayerState{}, errors.New("timeout waiting for state")
	}
}

// ListPlayerStates collects the retained states of all watch nodes in a
// thread.
func (c *Client) ListPlayerStates(ctx context.Context, thread string) ([]neko.PlayerState, error) {
	collect := make(map[string]neko.PlayerState)
	var mu sync.Mutex

	handler := func(_ paho.Client, msg paho.Message) {
		var state neko.PlayerState
		if err := json.Unmarshal(msg.Payload(), &state); err != nil {
			return
		}
		mu.Lock()
		collect[state.NodeID] = state
		mu.Unlock()
	}

	topic := neko.TopicState(c.topicBase, thread, "+")
	if token := c.client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	defer func() {
		token := c.client.Unsubscribe(topic)
		token.Wait()
	}()

	wait := time.NewTimer(250 * time.Millisecond)
	select {
	case <-ctx.Done():
		wait.Stop()
	case <-wait.C:
	}

	mu.Lock()
	defer mu.Unlock()
	out := make([]neko.PlayerState, 0, len(collect))
	for _, state := range collect {
		out = append(out, state)
	}
	return out, nil
}

// WatchPlayerState streams retained state updates. An empty nodeID watches
// every node in the thread.
func (c *Client) WatchPlayerState(ctx context.Context, thread string, nodeID string) (<-chan neko.PlayerState, <-chan error) {
	stateCh := make(chan neko.PlayerState, 8)
	errCh := make(chan error, 1)

	handler := func(_ paho.Client, msg paho.Message) {
		var state neko.PlayerState
		if err := json.Unmarshal(msg.Payload(), &state); err != nil {
			return
		}
		select {
		case stateCh <- state:
		default:
		}
	}

	if nodeID == "" {
		nodeID = "+"
	}
	topic := neko.TopicState(c.topicBase, thread, nodeID)
	if token := c.client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		errCh <- token.Error()
		return stateCh, errCh
	}

	go func() {
		<-ctx.Done()
		c.client.Unsubscribe(topic)
		close(stateCh)
		close(errCh)
	}()

	return stateCh, errCh
}

func buildTLSConfig(caPath, certPath, keyPath string) (*tls.Config, error) {
	if caPath == "" && certPath == "" && keyPath == "" {
		return nil, nil
	}

	config := &tls.Config{}
	if caPath != "" {
		pem, err := os.ReadFile(caPath)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New("failed to parse CA bundle")
		}
		config.RootCAs = pool
	}

	if certPath != "" || keyPath != "" {
		if certPath == "" || keyPath == "" {
			return nil, errors.New("both tls cert and key are required")
		}
		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			return nil, err
		}
		config.Certificates = []tls.Certificate{cert}
	}

	return config, nil
}
