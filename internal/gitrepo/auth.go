package gitrepo

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/alnah/go-repo2pdf/internal/config"
)

// Auth types accepted in repository.auth.type.
const (
	AuthNone  = ""
	AuthToken = "token"
	AuthBasic = "basic"
	AuthSSH   = "ssh"
)

// authMethod builds the go-git transport credentials for a. Anonymous
// access returns a nil method.
func authMethod(a config.AuthConfig) (transport.AuthMethod, error) {
	switch a.Type {
	case AuthNone:
		return nil, nil
	case AuthToken:
		if a.Token == "" {
			return nil, fmt.Errorf("%w: token authentication requires a token", ErrInvalidAuth)
		}
		return &http.BasicAuth{Username: cmp.Or(a.Username, "token"), Password: a.Token}, nil
	case AuthBasic:
		if a.Username == "" || a.Password == "" {
			return nil, fmt.Errorf("%w: basic authentication requires username and password", ErrInvalidAuth)
		}
		return &http.BasicAuth{Username: a.Username, Password: a.Password}, nil
	case AuthSSH:
		keyPath := a.KeyPath
		if keyPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidAuth, err)
			}
			keyPath = filepath.Join(home, ".ssh", "id_rsa")
		}
		keys, err := ssh.NewPublicKeysFromFile("git", keyPath, a.KeyPassphrase)
		if err != nil {
			return nil, fmt.Errorf("%w: loading SSH key from %s: %v", ErrInvalidAuth, keyPath, err)
		}
		return keys, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidAuth, a.Type)
	}
}
