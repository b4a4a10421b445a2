// Package social turns an OAuth callback into a local account.
//
// Service.Connect runs the whole pipeline: the enabled-providers gate, the
// access artifact check, the provider adapter, profile normalization and
// finally the Reconciler, which decides between logging in an existing
// user, registering a new one or rejecting the attempt. Policy rejections
// are returned as data in Outcome; only configuration, provider and store
// failures come back as errors.
package social
