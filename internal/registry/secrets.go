package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/andywolf/stigmergy/internal/cloud/gcp"
)

// secretRefPrefix marks an Override field value as a Secret Manager
// reference rather than a literal, so plaintext API keys or auto-approve
// tokens never need to sit in the YAML override file.
const secretRefPrefix = "secret://"

// ResolveSecretRefs replaces any Override.Binary, AutoApproveFlags, or
// AuthToken entry prefixed with "secret://" by fetching its value from
// Secret Manager, mutating overrides in place. Entries without the prefix
// are left untouched. Call this once after loading overrides from config
// and before Registry.Apply.
func ResolveSecretRefs(ctx context.Context, overrides map[string]Override, fetcher gcp.SecretFetcher) error {
	for name, o := range overrides {
		resolved, err := resolveField(ctx, o.Binary, fetcher)
		if err != nil {
			return fmt.Errorf("resolve secret for %s.binary: %w", name, err)
		}
		o.Binary = resolved

		for i, flag := range o.AutoApproveFlags {
			resolved, err := resolveField(ctx, flag, fetcher)
			if err != nil {
				return fmt.Errorf("resolve secret for %s.auto_approve_flags[%d]: %w", name, i, err)
			}
			o.AutoApproveFlags[i] = resolved
		}

		resolved, err = resolveField(ctx, o.AuthToken, fetcher)
		if err != nil {
			return fmt.Errorf("resolve secret for %s.auth_token: %w", name, err)
		}
		o.AuthToken = resolved

		overrides[name] = o
	}
	return nil
}

func resolveField(ctx context.Context, value string, fetcher gcp.SecretFetcher) (string, error) {
	if !strings.HasPrefix(value, secretRefPrefix) {
		return value, nil
	}
	if fetcher == nil {
		return "", fmt.Errorf("secret reference %q given but no secret fetcher configured", value)
	}
	return fetcher.FetchSecret(ctx, strings.TrimPrefix(value, secretRefPrefix))
}
