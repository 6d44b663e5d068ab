package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/cryptox"
	"github.com/dmitrijs2005/pagekeeper/internal/filex"
)

const s3Scheme = "s3://"

// Secrets is the document kept sealed at SecretsLocation.
type Secrets struct {
	SecretKey   string `json:"secret_key"`
	DatabaseDSN string `json:"database_dsn"`
	DatabaseKey string `json:"database_key"`
}

// objectStore is the part of *s3.Client used for the sealed blob.
type objectStore interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newObjectStore = func(cfg aws.Config, optFns ...func(*s3.Options)) objectStore {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Seal encrypts s with the base64 passphrase into the sealed text format.
func Seal(s *Secrets, passphrase string) (string, error) {
	key, err := cryptox.KeyFromString(passphrase)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(key)

	doc, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return cryptox.Seal(string(doc), key)
}

// Unseal decrypts a sealed secrets document. Any failure to decode the
// passphrase or parse the decrypted JSON is reported as
// common.ErrIncorrectConfigKey, since CFB alone cannot tell a wrong key apart
// from corrupted input.
func Unseal(sealed, passphrase string) (*Secrets, error) {
	key, err := cryptox.KeyFromString(passphrase)
	if err != nil {
		return nil, common.ErrIncorrectConfigKey
	}
	defer common.WipeByteArray(key)

	plain, err := cryptox.Open(sealed, key)
	if err != nil {
		if errors.Is(err, cryptox.ErrMalformedSealed) {
			return nil, err
		}
		return nil, common.ErrIncorrectConfigKey
	}

	s := &Secrets{}
	if err := json.Unmarshal([]byte(plain), s); err != nil {
		return nil, common.ErrIncorrectConfigKey
	}
	return s, nil
}

// ReadSealed fetches the sealed blob from a local file or, for s3:// URLs,
// from the configured S3-compatible backend.
func ReadSealed(ctx context.Context, c *Config) (string, error) {
	bucket, key, ok := splitS3Location(c.SecretsLocation)
	if !ok {
		data, err := os.ReadFile(c.SecretsLocation)
		if err != nil {
			return "", fmt.Errorf("read sealed secrets: %w", err)
		}
		return string(data), nil
	}

	store, err := c.objectStore(ctx)
	if err != nil {
		return "", err
	}
	out, err := store.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return "", fmt.Errorf("fetch sealed secrets: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("fetch sealed secrets: %w", err)
	}
	return string(data), nil
}

// WriteSealed stores the sealed blob at SecretsLocation.
func WriteSealed(ctx context.Context, c *Config, sealed string) error {
	bucket, key, ok := splitS3Location(c.SecretsLocation)
	if !ok {
		if err := filex.EnsureParentDir(c.SecretsLocation); err != nil {
			return err
		}
		return os.WriteFile(c.SecretsLocation, []byte(sealed), 0o600)
	}

	store, err := c.objectStore(ctx)
	if err != nil {
		return err
	}
	_, err = store.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader([]byte(sealed)),
	})
	if err != nil {
		return fmt.Errorf("store sealed secrets: %w", err)
	}
	return nil
}

// LoadSecrets reads and unseals the secrets document and applies it to c.
func LoadSecrets(ctx context.Context, c *Config, passphrase string) error {
	sealed, err := ReadSealed(ctx, c)
	if err != nil {
		return err
	}
	s, err := Unseal(sealed, passphrase)
	if err != nil {
		return err
	}
	c.ApplySecrets(s)
	return nil
}

func (c *Config) objectStore(ctx context.Context) (objectStore, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(c.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newObjectStore(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// splitS3Location parses s3://bucket/key.
func splitS3Location(loc string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(loc, s3Scheme)
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
