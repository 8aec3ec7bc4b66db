package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultEncryptionKey = "3vQ8nR2kLx7TfW1cYp6HsZ0mJd4GbE9a"
	defaultConfigFile    = "sysproxy-config.yaml"
	defaultUnixSocket    = "/tmp/sysproxy-service.sock"
	defaultNamedPipe     = `\\.\pipe\sysproxy-service`
	defaultSnapshot      = "sysproxy-settings.db"
)

// Store backends.
const (
	StoreRegistry = "registry"
	StoreFile     = "file"
	StoreReg      = "reg"
	StoreBolt     = "bolt"
)

type ConfigManager struct {
	sync.RWMutex
	cfg        *Config
	configFile string
	encryptKey []byte
}

type Config struct {
	Store      string          `yaml:"store" json:"store"`
	Source     string          `yaml:"source" json:"source"`
	UnixSocket string          `yaml:"unix-socket" json:"unix-socket"`
	NamedPipe  string          `yaml:"named-pipe" json:"named-pipe"`
	Http       string          `yaml:"http-listen" json:"http-listen"`
	Secret     EncryptedString `yaml:"secret" json:"-"`
}

// EncryptedString is kept in plain text in memory and sealed with
// AES-GCM when written to the config file.
type EncryptedString string

var (
	manager *ConfigManager
	mu      sync.RWMutex
)

// Initialize loads configFile, creating it with defaults when missing.
// Calling it again replaces the active configuration once the new file
// has loaded; on error the previous configuration stays active.
func Initialize(configFile string, encryptKey string) error {
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if encryptKey == "" {
		encryptKey = defaultEncryptionKey
	}
	switch len(encryptKey) {
	case 16, 24, 32:
	default:
		return errors.Errorf("encryption key must be 16, 24 or 32 bytes, got %d", len(encryptKey))
	}

	cm := &ConfigManager{
		configFile: configFile,
		encryptKey: []byte(encryptKey),
		cfg:        defaults(),
	}
	if err := cm.load(); err != nil {
		return err
	}

	mu.Lock()
	manager = cm
	mu.Unlock()
	return nil
}

func current() *ConfigManager {
	mu.RLock()
	defer mu.RUnlock()
	return manager
}

func defaults() *Config {
	cfg := &Config{
		Store:      StoreBolt,
		Source:     defaultSnapshot,
		UnixSocket: defaultUnixSocket,
	}
	if runtime.GOOS == "windows" {
		cfg.Store = StoreRegistry
		cfg.Source = ""
		cfg.UnixSocket = "sysproxy-service.sock"
		cfg.NamedPipe = defaultNamedPipe
	}
	return cfg
}

func (cm *ConfigManager) load() error {
	data, err := os.ReadFile(cm.configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cm.save()
		}
		return errors.Wrap(err, "read config file")
	}

	cm.Lock()
	defer cm.Unlock()
	if err := yaml.Unmarshal(data, cm.cfg); err != nil {
		return errors.Wrap(err, "parse config file")
	}
	secret, err := cm.open(string(cm.cfg.Secret))
	if err != nil {
		return err
	}
	cm.cfg.Secret = EncryptedString(secret)
	return nil
}

func (cm *ConfigManager) save() error {
	cm.Lock()
	defer cm.Unlock()

	doc := *cm.cfg
	sealed, err := cm.seal(string(doc.Secret))
	if err != nil {
		return err
	}
	doc.Secret = EncryptedString(sealed)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	if err := os.WriteFile(cm.configFile, out, 0o600); err != nil {
		return errors.Wrap(err, "write config file")
	}
	return nil
}

func (cm *ConfigManager) getString(value *string) string {
	cm.RLock()
	defer cm.RUnlock()
	return *value
}

func (cm *ConfigManager) setString(dest *string, value string) error {
	cm.Lock()
	if value != "" {
		*dest = value
	}
	cm.Unlock()
	return cm.save()
}

func GetConfig() Config {
	cm := current()
	cm.RLock()
	defer cm.RUnlock()
	return *cm.cfg
}

func GetStore() string      { cm := current(); return cm.getString(&cm.cfg.Store) }
func GetSource() string     { cm := current(); return cm.getString(&cm.cfg.Source) }
func GetUnixSocket() string { cm := current(); return cm.getString(&cm.cfg.UnixSocket) }
func GetNamedPipe() string  { cm := current(); return cm.getString(&cm.cfg.NamedPipe) }
func GetHttp() string       { cm := current(); return cm.getString(&cm.cfg.Http) }

func GetSecret() string {
	cm := current()
	cm.RLock()
	defer cm.RUnlock()
	return string(cm.cfg.Secret)
}

func SetStore(v string) error {
	switch v {
	case StoreRegistry, StoreFile, StoreReg, StoreBolt:
	default:
		return errors.Errorf("unknown store %q", v)
	}
	cm := current()
	return cm.setString(&cm.cfg.Store, v)
}

func SetSource(v string) error     { cm := current(); return cm.setString(&cm.cfg.Source, v) }
func SetUnixSocket(v string) error { cm := current(); return cm.setString(&cm.cfg.UnixSocket, v) }
func SetNamedPipe(v string) error  { cm := current(); return cm.setString(&cm.cfg.NamedPipe, v) }
func SetHttp(v string) error       { cm := current(); return cm.setString(&cm.cfg.Http, v) }

func SetSecret(v string) error {
	cm := current()
	cm.Lock()
	if v != "" {
		cm.cfg.Secret = EncryptedString(v)
	}
	cm.Unlock()
	return cm.save()
}

// seal encrypts a secret for the config file as base64(nonce|ciphertext).
func (cm *ConfigManager) seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	gcm, err := newGCM(cm.encryptKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(err, "generate nonce")
	}

	ct := gcm.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(ct), nil
}

func (cm *ConfigManager) open(cipherB64 string) (string, error) {
	if cipherB64 == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(cipherB64)
	if err != nil {
		return "", errors.Wrap(err, "decode base64 secret")
	}

	gcm, err := newGCM(cm.encryptKey)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("secret ciphertext too short")
	}

	nonce, ct := data[:nonceSize], data[nonceSize:]
	pt, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", errors.Wrap(err, "decrypt secret")
	}
	return string(pt), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "create cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "create gcm")
	}
	return gcm, nil
}
