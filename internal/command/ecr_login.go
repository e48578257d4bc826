// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/aws"
	"github.com/staranto/awsctlgo/internal/cacheutil"
	"github.com/staranto/awsctlgo/internal/config"
	"github.com/staranto/awsctlgo/internal/meta"
)

// loginExpiryMargin is how long before ExpiresAt a cached token is dropped.
const loginExpiryMargin = 5 * time.Minute

var loginCache = cacheutil.NewStore("ecr", "login")

// now is swapped out by tests.
var now = time.Now

// Login is a decoded ECR authorization token.
type Login struct {
	Username      string
	Password      string
	ProxyEndpoint string
	Endpoint      string
	ExpiresAt     time.Time
	Command       string
}

// DecodeLogin turns base64 user:password authorization data into a Login.
func DecodeLogin(token, proxyEndpoint string, expiresAt time.Time) (*Login, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("failed to decode authorization token: %w", err)
	}
	user, pass, ok := strings.Cut(string(raw), ":")
	if !ok {
		return nil, errors.New("authorization token is not user:password")
	}

	endpoint := strings.TrimPrefix(strings.TrimPrefix(proxyEndpoint, "https://"), "http://")
	return &Login{
		Username:      user,
		Password:      pass,
		ProxyEndpoint: proxyEndpoint,
		Endpoint:      endpoint,
		ExpiresAt:     expiresAt,
		Command:       fmt.Sprintf("docker login -u %s -p %s %s", user, pass, proxyEndpoint),
	}, nil
}

// loginCacheKey names the cache entry of a login.  Tokens belong to the
// caller's credentials, so the access key is part of the key alongside the
// profile, region and endpoint.
func loginCacheKey(ctx context.Context, c *aws.Clients) (string, error) {
	akid, err := c.AccessKeyID(ctx)
	if err != nil {
		return "", err
	}
	return strings.Join([]string{c.Profile, c.Region, c.Endpoint, akid}, "|"), nil
}

// cachedLogin returns a cached login that is still good for at least
// loginExpiryMargin.
func cachedLogin(key string) (*Login, bool) {
	data, ok := loginCache.Get(key)
	if !ok {
		return nil, false
	}
	var l Login
	if err := json.Unmarshal(data, &l); err != nil {
		log.WithError(err).Debug("discarding unreadable login cache entry")
		return nil, false
	}
	if now().Add(loginExpiryMargin).After(l.ExpiresAt) {
		log.Debugf("login cache entry expired at %s", l.ExpiresAt)
		_ = loginCache.Delete(key)
		return nil, false
	}
	return &l, true
}

// fetchLogin returns the registry login, from the cache when possible.
func fetchLogin(ctx context.Context, c *aws.Clients, key string) (*Login, error) {
	cleanHours, _ := config.GetInt("cache.clean")
	if err := cacheutil.Purge(time.Duration(cleanHours) * time.Hour); err != nil {
		log.WithError(err).Warn("failed to purge cache")
	}

	if l, ok := cachedLogin(key); ok {
		log.Debug("using cached login")
		return l, nil
	}

	out, err := c.ECR.GetAuthorizationToken(ctx, &ecr.GetAuthorizationTokenInput{})
	if err != nil {
		return nil, err
	}
	if len(out.AuthorizationData) == 0 {
		return nil, errors.New("no authorization data returned")
	}

	ad := out.AuthorizationData[0]
	var expires time.Time
	if ad.ExpiresAt != nil {
		expires = *ad.ExpiresAt
	}
	l, err := DecodeLogin(deref(ad.AuthorizationToken), deref(ad.ProxyEndpoint), expires)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(l); err == nil {
		if err := loginCache.Put(key, b); err != nil {
			log.WithError(err).Warn("failed to cache login")
		}
	}
	return l, nil
}

// GetAuthorizationTokenCommandBuilder constructs "ecr get-authorization-token".
func GetAuthorizationTokenCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.GetAuthorizationTokenInput, ecr.GetAuthorizationTokenOutput]{
		Service: "ecr",
		Name:    "get-authorization-token",
		API:     "GetAuthorizationToken",
		Usage:   "get a base64 registry authorization token",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "registry-id",
				Usage: "deprecated, the token works for every registry the caller can reach",
			},
		},
		Select: "AuthorizationData",
		Attrs:  "ProxyEndpoint,ExpiresAt",
		Bind: func(cmd *cli.Command, in *ecr.GetAuthorizationTokenInput) error {
			if cmd.IsSet("registry-id") {
				warn(cmd, "--registry-id is deprecated, the returned token is valid for all registries")
				in.RegistryIds = cmd.StringSlice("registry-id")
			}
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.GetAuthorizationTokenInput) (*ecr.GetAuthorizationTokenOutput, error) {
			return c.ECR.GetAuthorizationToken(ctx, in)
		},
	}
	return op.Build(m)
}

func loginOperation(name, usage, sel string, examples [][2]string) *Operation[ecr.GetAuthorizationTokenInput, Login] {
	return &Operation[ecr.GetAuthorizationTokenInput, Login]{
		Service:  "ecr",
		Name:     name,
		API:      "GetAuthorizationToken",
		Usage:    usage,
		Examples: examples,
		Select:   sel,
		Call: func(ctx context.Context, c *aws.Clients, _ *ecr.GetAuthorizationTokenInput) (*Login, error) {
			key, err := loginCacheKey(ctx, c)
			if err != nil {
				return nil, err
			}
			return fetchLogin(ctx, c, key)
		},
	}
}

// GetLoginPasswordCommandBuilder constructs "ecr get-login-password".
func GetLoginPasswordCommandBuilder(m meta.Meta) *cli.Command {
	op := loginOperation("get-login-password", "print a password for docker login", "Password", [][2]string{
		{"awsctl ecr get-login-password | docker login -u AWS --password-stdin 123456789012.dkr.ecr.us-east-1.amazonaws.com", "log docker in"},
	})
	return op.Build(m)
}

// GetLoginCommandCommandBuilder constructs "ecr get-login-command".
func GetLoginCommandCommandBuilder(m meta.Meta) *cli.Command {
	op := loginOperation("get-login-command", "print a docker login command", "*", [][2]string{
		{"awsctl ecr get-login-command --select Command | sh", "run the login command"},
		{"awsctl ecr get-login-command -a Endpoint,ExpiresAt::h -t", "show when the login expires"},
	})
	op.Attrs = "Endpoint,Username,ExpiresAt"
	return op.Build(m)
}
