package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/magiclink"
)

// keyFile is the on-disk shape of a key file: the core library never
// persists keys itself, so any storage format is a host concern, not the
// library's.
type keyFile struct {
	Keys []keyRecord `yaml:"keys"`
}

type keyRecord struct {
	KID       string `yaml:"kid"`
	Secret    string `yaml:"secret"` // base64 standard encoding
	CreatedAt int64  `yaml:"created_at"`
	ExpiresAt *int64 `yaml:"expires_at,omitempty"`
}

func loadKeySet(path string) (*magiclink.KeySet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keys: read %s: %w", path, err)
	}
	var kf keyFile
	if err := yaml.Unmarshal(b, &kf); err != nil {
		return nil, fmt.Errorf("keys: parse %s: %w", path, err)
	}
	if len(kf.Keys) == 0 {
		return nil, fmt.Errorf("keys: %s has no keys", path)
	}

	keys := make([]magiclink.Key, 0, len(kf.Keys))
	for _, r := range kf.Keys {
		secret, err := base64.StdEncoding.DecodeString(r.Secret)
		if err != nil {
			return nil, fmt.Errorf("keys: kid %s: decode secret: %w", r.KID, err)
		}
		k, err := magiclink.NewKey(r.KID, secret, r.CreatedAt, r.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("keys: kid %s: %w", r.KID, err)
		}
		keys = append(keys, k)
	}
	return magiclink.NewKeySet(keys...), nil
}

func appendKey(path string, k magiclink.Key) error {
	var kf keyFile
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &kf); err != nil {
			return fmt.Errorf("keys: parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("keys: read %s: %w", path, err)
	}

	rec := keyRecord{
		KID:       k.KID(),
		Secret:    base64.StdEncoding.EncodeToString(k.Secret()),
		CreatedAt: k.CreatedAt(),
	}
	if exp, ok := k.ExpiresAt(); ok {
		rec.ExpiresAt = &exp
	}
	kf.Keys = append(kf.Keys, rec)

	out, err := yaml.Marshal(kf)
	if err != nil {
		return fmt.Errorf("keys: marshal: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("keys: write %s: %w", path, err)
	}
	return nil
}
