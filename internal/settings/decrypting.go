package settings

import (
	"context"
	"fmt"
)

// Revealer turns a stored secret into plaintext; values without the
// encryption prefix pass through. *secretbox.Box satisfies it.
type Revealer interface {
	Reveal(v string) (string, error)
}

// Decrypting reveals encrypted grant secrets read from src.
type Decrypting struct {
	Source
	r Revealer
}

func NewDecrypting(src Source, r Revealer) *Decrypting {
	return &Decrypting{Source: src, r: r}
}

func (d *Decrypting) Grants(ctx context.Context) (map[string]Grant, error) {
	grants, err := d.Source.Grants(ctx)
	if err != nil {
		return nil, err
	}
	for name, g := range grants {
		plain, err := d.r.Reveal(g.Secret)
		if err != nil {
			return nil, fmt.Errorf("settings: reveal %s secret: %w", name, err)
		}
		g.Secret = plain
		grants[name] = g
	}
	return grants, nil
}
