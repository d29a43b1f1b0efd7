// Package remote probes the sync server over SSH. The transfers themselves
// go through the transfer tool; this package only answers "can we reach
// the server" and prepares the base directory.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/sdejongh/aisync/pkg/logging"
)

const (
	defaultPort = 22
	dialTimeout = 10 * time.Second
)

// ErrNoKeys is returned when neither an agent nor a private key file is
// available
var ErrNoKeys = errors.New("no SSH agent or private keys found")

// Target identifies the remote account
type Target struct {
	User string
	Host string
	Port int
	// IdentityFile is tried before the default keys
	IdentityFile string
	// KnownHostsFile defaults to ~/.ssh/known_hosts; when it does not exist
	// host keys are not verified
	KnownHostsFile string
	// AgentSocket defaults to $SSH_AUTH_SOCK
	AgentSocket string
}

// Address returns host:port
func (t Target) Address() string {
	port := t.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(t.Host, strconv.Itoa(port))
}

// Client handles SSH connections (without SFTP)
type Client struct {
	conn      *ssh.Client
	agentConn io.Closer
	target    Target
}

// Dial connects and authenticates with the SSH agent, when one is
// running, and with the key files
func Dial(ctx context.Context, target Target, logger logging.Logger) (*Client, error) {
	if target.User == "" || target.Host == "" {
		return nil, fmt.Errorf("remote user and host are required")
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	var auth []ssh.AuthMethod
	agentClient, agentConn := dialAgent(agentSocket(target.AgentSocket))
	if agentClient != nil {
		auth = append(auth, ssh.PublicKeysCallback(agentClient.Signers))
	}
	if signers := loadSigners(keyPaths(target.IdentityFile)); len(signers) > 0 {
		auth = append(auth, ssh.PublicKeys(signers...))
	}
	if len(auth) == 0 {
		return nil, ErrNoKeys
	}

	client := &Client{agentConn: agentConn, target: target}

	hostKeyCallback, verified, err := hostKeyCallback(target.KnownHostsFile)
	if err != nil {
		client.Close()
		return nil, err
	}
	if !verified {
		logger.Warn(ctx, "No known_hosts file, the host key of "+target.Address()+" is not verified", nil)
	}

	config := &ssh.ClientConfig{
		User:            target.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         dialTimeout,
	}

	dialer := net.Dialer{Timeout: dialTimeout}
	netConn, err := dialer.DialContext(ctx, "tcp", target.Address())
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", target.Address(), err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, target.Address(), config)
	if err != nil {
		netConn.Close()
		client.Close()
		return nil, fmt.Errorf("SSH handshake with %s failed: %w", target.Address(), err)
	}

	client.conn = ssh.NewClient(sshConn, chans, reqs)
	return client, nil
}

// Close closes the SSH connection and the agent connection
func (c *Client) Close() error {
	if c.agentConn != nil {
		c.agentConn.Close()
		c.agentConn = nil
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Check runs a no-op command to prove a shell is available
func (c *Client) Check() error {
	if _, err := c.run("true"); err != nil {
		return fmt.Errorf("remote shell check failed: %w", err)
	}
	return nil
}

// DirExists reports whether dir exists on the server
func (c *Client) DirExists(dir string) (bool, error) {
	out, err := c.run(fmt.Sprintf("test -d %s && echo exists || echo notfound", remotePathExpr(dir)))
	if err != nil {
		return false, fmt.Errorf("failed to check directory: %w", err)
	}
	return strings.TrimSpace(out) == "exists", nil
}

// EnsureDir creates dir and its parents on the server
func (c *Client) EnsureDir(dir string) error {
	if _, err := c.run("mkdir -p " + remotePathExpr(dir)); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

func (c *Client) run(cmd string) (string, error) {
	session, err := c.conn.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	out, err := session.CombinedOutput(cmd)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return string(out), nil
}

// keyPaths lists the private keys to try, identity first
func keyPaths(identity string) []string {
	var paths []string
	if identity != "" {
		paths = append(paths, expandHome(identity))
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return paths
	}
	return append(paths,
		filepath.Join(home, ".ssh", "id_ed25519"),
		filepath.Join(home, ".ssh", "id_ecdsa"),
		filepath.Join(home, ".ssh", "id_rsa"),
	)
}

// loadSigners parses every readable, unencrypted key
func loadSigners(paths []string) []ssh.Signer {
	var signers []ssh.Signer
	for _, keyPath := range paths {
		key, err := os.ReadFile(keyPath)
		if err != nil {
			continue
		}

		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			continue
		}
		signers = append(signers, signer)
	}
	return signers
}

func agentSocket(sock string) string {
	if sock != "" {
		return sock
	}
	return os.Getenv("SSH_AUTH_SOCK")
}

// dialAgent connects to the agent listening on sock. Both results are nil
// when there is no reachable agent.
func dialAgent(sock string) (agent.ExtendedAgent, io.Closer) {
	if sock == "" {
		return nil, nil
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, nil
	}
	return agent.NewClient(conn), conn
}

// hostKeyCallback verifies against knownHostsFile. verified is false when
// the file does not exist and any host key is accepted.
func hostKeyCallback(knownHostsFile string) (callback ssh.HostKeyCallback, verified bool, err error) {
	if knownHostsFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ssh.InsecureIgnoreHostKey(), false, nil
		}
		knownHostsFile = filepath.Join(home, ".ssh", "known_hosts")
	}

	if _, err := os.Stat(knownHostsFile); errors.Is(err, os.ErrNotExist) {
		return ssh.InsecureIgnoreHostKey(), false, nil
	}

	callback, err = knownhosts.New(knownHostsFile)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load known hosts: %w", err)
	}
	return callback, true, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// remotePathExpr quotes p for the remote shell. A leading "~/" is kept
// outside the quotes so the remote shell still expands it.
func remotePathExpr(p string) string {
	switch {
	case p == "~":
		return `"$HOME"`
	case strings.HasPrefix(p, "~/"):
		return `"$HOME"/` + shellescape(strings.TrimPrefix(p, "~/"))
	default:
		return shellescape(p)
	}
}

// shellescape escapes a string for safe use in shell commands
func shellescape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
