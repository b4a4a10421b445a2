// Package builtin assembles the registry of every supported provider.
package builtin

import (
	"github.com/dropDatabas3/socialconnect/internal/providers"
	"github.com/dropDatabas3/socialconnect/internal/providers/discord"
	"github.com/dropDatabas3/socialconnect/internal/providers/facebook"
	"github.com/dropDatabas3/socialconnect/internal/providers/github"
	"github.com/dropDatabas3/socialconnect/internal/providers/google"
	"github.com/dropDatabas3/socialconnect/internal/providers/instagram"
	"github.com/dropDatabas3/socialconnect/internal/providers/microsoft"
	"github.com/dropDatabas3/socialconnect/internal/providers/twitch"
	"github.com/dropDatabas3/socialconnect/internal/providers/twitter"
	"github.com/dropDatabas3/socialconnect/internal/providers/vk"
)

type Options struct {
	// VerifyGoogleIDToken checks id_token signatures against Google's JWKS.
	VerifyGoogleIDToken bool
	// InstagramPlaceholderDomain is the domain of synthesized Instagram emails.
	InstagramPlaceholderDomain string
}

// Registry returns a registry holding all adapters sharing c.
func Registry(c *providers.Client, opts Options) *providers.Registry {
	return providers.NewRegistry(
		discord.New(c),
		facebook.New(c),
		github.New(c),
		google.New(c, opts.VerifyGoogleIDToken),
		instagram.New(c, opts.InstagramPlaceholderDomain),
		microsoft.New(c),
		twitch.New(c),
		twitter.New(c),
		vk.New(c),
	)
}
