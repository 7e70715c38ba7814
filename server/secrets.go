package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/go-github/v68/github"
	"golang.org/x/crypto/nacl/box"
)

// ProvisionSecret fetches the repository's actions public key, seals value
// against it and uploads the result as a named repository secret. The public
// key is fetched fresh for every repository.
func (g *GitHubHost) ProvisionSecret(ctx context.Context, repo *RemoteRepo, name, value string) error {
	key, _, err := g.client.Actions.GetRepoPublicKey(ctx, repo.Owner, repo.Name)
	if err != nil {
		return wrapErr(ErrKindSecret, "fetch repository public key", err)
	}

	sealed, err := sealSecret(key.GetKey(), value)
	if err != nil {
		return wrapErr(ErrKindSecret, "seal secret", err)
	}

	_, err = g.client.Actions.CreateOrUpdateRepoSecret(ctx, repo.Owner, repo.Name, &github.EncryptedSecret{
		Name:           name,
		KeyID:          key.GetKeyID(),
		EncryptedValue: sealed,
	})
	if err != nil {
		return wrapErr(ErrKindSecret, "upload repository secret", err)
	}

	g.logger.Infow("repository secret provisioned", "repo", repo.FullName(), "secret", name)

	return nil
}

// sealSecret encrypts value with NaCl anonymous sealed-box encryption against
// the base64 encoded public key the host handed out.
func sealSecret(publicKey, value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return "", fmt.Errorf("invalid public key encoding: %v", err)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("invalid public key length: %d", len(raw))
	}

	var key [32]byte
	copy(key[:], raw)

	sealed, err := box.SealAnonymous(nil, []byte(value), &key, rand.Reader)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(sealed), nil
}
