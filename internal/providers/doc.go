// Package providers turns a provider callback artifact into a normalized
// {username, email} profile.
//
// Each identity provider is an Adapter living in its own subpackage
// (providers/github, providers/google, ...). Adapters share a Client that
// bounds every outbound call with a timeout, records latency and traces the
// call, and report failures as *ProviderError. Normalize is the single place
// where raw adapter output becomes a Profile.
package providers
