package web

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/deskroster/deskroster/internal/directory"
)

type vapidKeyFile struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// EnsurePushVAPIDKeys loads the VAPID keypair from disk, generating and
// persisting one on first use. Keys live next to the roster database so
// push subscriptions survive restarts.
func EnsurePushVAPIDKeys() (publicKey, privateKey string, err error) {
	dir, err := directory.GetDeskrosterDir()
	if err != nil {
		return "", "", fmt.Errorf("resolve data dir: %w", err)
	}
	path := filepath.Join(dir, "vapid_keys.json")

	if data, readErr := os.ReadFile(path); readErr == nil {
		var kf vapidKeyFile
		if jsonErr := json.Unmarshal(data, &kf); jsonErr == nil && kf.PublicKey != "" && kf.PrivateKey != "" {
			return kf.PublicKey, kf.PrivateKey, nil
		}
		// Corrupt file: regenerate below.
	}

	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	if err != nil {
		return "", "", fmt.Errorf("generate vapid keys: %w", err)
	}

	data, err := json.MarshalIndent(vapidKeyFile{PublicKey: publicKey, PrivateKey: privateKey}, "", "  ")
	if err != nil {
		return "", "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return "", "", fmt.Errorf("write vapid keys: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", "", fmt.Errorf("persist vapid keys: %w", err)
	}
	return publicKey, privateKey, nil
}
