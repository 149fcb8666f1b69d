package writerbackends

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"path"
	"time"

	"vidbatch/logger"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// decodeKeyMaterial accepts base64 or raw text.
func decodeKeyMaterial(s string) []byte {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b
	}
	return []byte(s)
}

func sftpAuth(settings map[string]string) ([]ssh.AuthMethod, error) {
	if key := settings["privateKey"]; key != "" {
		signer, err := ssh.ParsePrivateKey(decodeKeyMaterial(key))
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	if password := settings["password"]; password != "" {
		return []ssh.AuthMethod{ssh.Password(password)}, nil
	}
	return nil, fmt.Errorf("no auth method provided; set password or privateKey")
}

// sftpHostKey pins settings["hostKey"] (authorized_keys format) when given.
func sftpHostKey(settings map[string]string) (ssh.HostKeyCallback, error) {
	hostKey := settings["hostKey"]
	if hostKey == "" {
		logger.Warnf("sftp destination %s has no hostKey, host key is not verified", settings["host"])
		return ssh.InsecureIgnoreHostKey(), nil
	}
	pub, _, _, _, err := ssh.ParseAuthorizedKey(decodeKeyMaterial(hostKey))
	if err != nil {
		return nil, fmt.Errorf("parse host key: %w", err)
	}
	return ssh.FixedHostKey(pub), nil
}

// uploadToSFTP writes a video to settings["remoteDir"]/name over SFTP.
// Optional settings: port (default 22), hostKey.
func uploadToSFTP(ctx context.Context, settings map[string]string, name string, reader io.Reader) error {
	host, user, remoteDir := settings["host"], settings["user"], settings["remoteDir"]
	if host == "" || user == "" || remoteDir == "" {
		return fmt.Errorf("missing required settings: host, user, remoteDir")
	}
	port := settings["port"]
	if port == "" {
		port = "22"
	}

	auths, err := sftpAuth(settings)
	if err != nil {
		return err
	}
	hostKeyCallback, err := sftpHostKey(settings)
	if err != nil {
		return err
	}
	config := &ssh.ClientConfig{
		User:            user,
		Auth:            auths,
		HostKeyCallback: hostKeyCallback,
		Timeout:         10 * time.Second,
	}

	addr := net.JoinHostPort(host, port)
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial tcp %s: %w", addr, err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	sshClient := ssh.NewClient(clientConn, chans, reqs)
	defer sshClient.Close()

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("create sftp client: %w", err)
	}
	defer client.Close()

	if err := client.MkdirAll(remoteDir); err != nil {
		return fmt.Errorf("ensure remote dir %s: %w", remoteDir, err)
	}

	remotePath := path.Join(remoteDir, name)
	f, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", remotePath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("copy to remote file %s: %w", remotePath, err)
	}

	logger.Infof("Uploaded '%s' to %s", remotePath, addr)
	return nil
}
