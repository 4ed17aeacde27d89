package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"compliancehub/pkg/apperrors"
	"compliancehub/pkg/config"
)

// Envelope 字段级信封加密器，持有一个AES-256-GCM密钥。
// 加密对象是任意JSON映射，产出URL安全的单个不透明token（nonce||密文）。
type Envelope struct {
	key []byte
}

// New 用给定密钥创建信封加密器，密钥必须是32字节
func New(key []byte) (*Envelope, error) {
	if len(key) != 32 {
		return nil, apperrors.Wrap(apperrors.ErrKeyMissing, fmt.Errorf("key must be 32 bytes, got %d", len(key)))
	}
	return &Envelope{key: key}, nil
}

// Encrypt 序列化payload并加密为token。每次调用使用随机nonce，
// 相同输入两次加密产生不同token。
func (e *Envelope) Encrypt(payload map[string]interface{}) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.Validation("metadata is not serializable")
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrKeyMissing, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrKeyMissing, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", apperrors.Wrap(apperrors.ErrKeyMissing, err)
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt 解密token还原映射。认证标签校验失败返回Tamper错误。
func (e *Envelope) Decrypt(token string) (map[string]interface{}, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTamper, err)
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrKeyMissing, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrKeyMissing, err)
	}

	nonceSize := gcm.NonceSize()
	if len(raw) < nonceSize {
		return nil, apperrors.Wrap(apperrors.ErrTamper, fmt.Errorf("token too short"))
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTamper, err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTamper, err)
	}
	return payload, nil
}

// 进程级单例：密钥启动后不可变
var (
	defaultEnvelope *Envelope
	defaultErr      error
	once            sync.Once
)

// Default 获取进程级信封加密器。密钥取APP_ENCRYPTION_KEY，
// 回退FIELD_ENCRYPTION_KEY，base64解码后必须是32字节。
func Default() (*Envelope, error) {
	once.Do(func() {
		cfg := config.GetConfig()
		encoded := cfg.Encryption.AppKey
		if encoded == "" {
			encoded = cfg.Encryption.FieldKey
		}
		if encoded == "" {
			defaultErr = apperrors.ErrKeyMissing
			return
		}

		key, err := decodeKey(encoded)
		if err != nil {
			defaultErr = apperrors.Wrap(apperrors.ErrKeyMissing, err)
			return
		}
		defaultEnvelope, defaultErr = New(key)
	})
	return defaultEnvelope, defaultErr
}

// decodeKey 兼容标准和URL安全两种base64
func decodeKey(encoded string) ([]byte, error) {
	if key, err := base64.StdEncoding.DecodeString(encoded); err == nil {
		return key, nil
	}
	return base64.RawURLEncoding.DecodeString(encoded)
}

// GenerateKey 生成一个新的随机256位密钥（base64编码），用于租户开通
func GenerateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
