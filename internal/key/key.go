package key

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

var (
	ed25519GenerateKey = ed25519.GenerateKey
	sshMarshalPrivate  = ssh.MarshalPrivateKey
	osOpenFile         = os.OpenFile
	pemEncode          = pem.Encode
	sshNewPublicKey    = ssh.NewPublicKey
	pubKeyWrite        = func(w io.Writer, data []byte) (int, error) { return w.Write(data) }
)

// GenerateSSHKeyIfNotExist writes a new ed25519 identity to keyPath and its
// authorized_keys line to keyPath.pub unless keyPath already exists.
func GenerateSSHKeyIfNotExist(keyPath string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(keyPath); err == nil {
		logger.Debug("SSH key already exists", zap.String("path", keyPath))
		return nil
	}

	logger.Info("SSH key not found, generating new key pair", zap.String("path", keyPath))

	publicKey, privateKey, err := ed25519GenerateKey(rand.Reader)
	if err != nil {
		return err
	}

	privateKeyPEM, err := sshMarshalPrivate(privateKey, "http_relay")
	if err != nil {
		return err
	}

	dir := filepath.Dir(keyPath)
	if err = os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	privateKeyFile, err := osOpenFile(keyPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer privateKeyFile.Close()

	if err = pemEncode(privateKeyFile, privateKeyPEM); err != nil {
		return err
	}

	sshPublicKey, err := sshNewPublicKey(publicKey)
	if err != nil {
		return err
	}

	pubKeyPath := keyPath + ".pub"
	pubKeyFile, err := osOpenFile(pubKeyPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer pubKeyFile.Close()

	authorized := ssh.MarshalAuthorizedKey(sshPublicKey)
	if _, err = pubKeyWrite(pubKeyFile, authorized); err != nil {
		return err
	}

	logger.Info("SSH key pair generated, authorize it on the ssh server",
		zap.String("private", keyPath),
		zap.String("public", pubKeyPath),
		zap.ByteString("authorized_key", authorized),
	)
	return nil
}

// LoadSigner reads an unencrypted private key in any format ssh understands.
func LoadSigner(keyPath string) (ssh.Signer, error) {
	privateBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(privateBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return signer, nil
}
