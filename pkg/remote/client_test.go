package remote

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/sdejongh/aisync/pkg/logging"
)

func TestTargetAddress(t *testing.T) {
	assert.Equal(t, "sync.example.com:22", Target{Host: "sync.example.com"}.Address())
	assert.Equal(t, "sync.example.com:2222", Target{Host: "sync.example.com", Port: 2222}.Address())
	assert.Equal(t, "[::1]:22", Target{Host: "::1"}.Address())
}

func TestRemotePathExpr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/srv/sync", `'/srv/sync'`},
		{"~/sync-files/ai-agents-related", `"$HOME"/'sync-files/ai-agents-related'`},
		{"~", `"$HOME"`},
		{"/srv/it's here", `'/srv/it'\''s here'`},
		{"~alice/sync", `'~alice/sync'`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, remotePathExpr(tt.in), tt.in)
	}
}

func TestDialRequiresTarget(t *testing.T) {
	_, err := Dial(context.Background(), Target{Host: "sync.example.com"}, nil)
	assert.Error(t, err)
}

func TestLoadSigners(t *testing.T) {
	dir := t.TempDir()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)

	good := filepath.Join(dir, "id_ed25519")
	require.NoError(t, os.WriteFile(good, pem.EncodeToMemory(block), 0600))
	garbage := filepath.Join(dir, "id_rsa")
	require.NoError(t, os.WriteFile(garbage, []byte("not a key"), 0600))

	signers := loadSigners([]string{filepath.Join(dir, "missing"), garbage, good})
	require.Len(t, signers, 1)
	assert.Equal(t, ssh.KeyAlgoED25519, signers[0].PublicKey().Type())
}

func TestKeyPathsIdentityFirst(t *testing.T) {
	paths := keyPaths("/keys/sync_key")
	require.NotEmpty(t, paths)
	assert.Equal(t, "/keys/sync_key", paths[0])
}

func TestHostKeyCallback(t *testing.T) {
	dir := t.TempDir()

	// Missing file falls back to no verification
	cb, verified, err := hostKeyCallback(filepath.Join(dir, "known_hosts"))
	require.NoError(t, err)
	assert.NotNil(t, cb)
	assert.False(t, verified)

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)

	known := filepath.Join(dir, "known_hosts_present")
	line := "sync.example.com " + string(ssh.MarshalAuthorizedKey(sshPub))
	require.NoError(t, os.WriteFile(known, []byte(line), 0600))

	cb, verified, err = hostKeyCallback(known)
	require.NoError(t, err)
	assert.True(t, verified)

	otherPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	otherKey, err := ssh.NewPublicKey(otherPub)
	require.NoError(t, err)

	addr := fakeAddr("192.0.2.1:22")
	assert.NoError(t, cb("sync.example.com:22", addr, sshPub))
	assert.Error(t, cb("sync.example.com:22", addr, otherKey))
}

func TestDialAgent(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	keyring := agent.NewKeyring()
	require.NoError(t, keyring.Add(agent.AddedKey{PrivateKey: priv, Comment: "sync"}))

	sock := filepath.Join(t.TempDir(), "agent.sock")
	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		agent.ServeAgent(keyring, conn)
	}()

	client, conn := dialAgent(sock)
	require.NotNil(t, client)
	defer conn.Close()

	signers, err := client.Signers()
	require.NoError(t, err)
	require.Len(t, signers, 1)
	assert.Equal(t, ssh.KeyAlgoED25519, signers[0].PublicKey().Type())
}

func TestDialAgentUnavailable(t *testing.T) {
	client, conn := dialAgent("")
	assert.Nil(t, client)
	assert.Nil(t, conn)

	client, conn = dialAgent(filepath.Join(t.TempDir(), "missing.sock"))
	assert.Nil(t, client)
	assert.Nil(t, conn)
}

func TestDialWarnsWithoutKnownHosts(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "id_ed25519")
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(block), 0600))

	// Nothing listens on the port, so the dial fails after the host key check is set up
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	var log bytes.Buffer
	_, err = Dial(context.Background(), Target{
		User:           "alice",
		Host:           "127.0.0.1",
		Port:           port,
		IdentityFile:   keyFile,
		KnownHostsFile: filepath.Join(dir, "known_hosts"),
		AgentSocket:    filepath.Join(dir, "no-agent.sock"),
	}, logging.NewConsoleLogger(&log, logging.InfoLevel))
	require.Error(t, err)
	assert.Contains(t, log.String(), "host key of 127.0.0.1:"+strconv.Itoa(port)+" is not verified")
}

type fakeAddr string

func (a fakeAddr) Network() string { return "tcp" }
func (a fakeAddr) String() string  { return string(a) }
