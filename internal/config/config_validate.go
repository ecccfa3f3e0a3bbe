// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// Validate checks that required configuration is present and well-formed.
// Struct-tag rules (required fields, bounds, enums) run first via
// go-playground/validator; cross-field rules that tags can't express run
// after.
func (c *Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return c.validateCrossField()
}

// validateCrossField checks invariants that span more than one field.
func (c *Config) validateCrossField() error {
	if c.Gateway.RetryBaseInterval > c.Gateway.RetryMaxInterval {
		return fmt.Errorf("gateway.retry_base_interval (%s) must not exceed gateway.retry_max_interval (%s)",
			c.Gateway.RetryBaseInterval, c.Gateway.RetryMaxInterval)
	}
	if c.Election.RenewInterval >= c.Election.TTL {
		return fmt.Errorf("election.renew_interval (%s) must be smaller than election.ttl (%s), or the lease will expire before it is renewed",
			c.Election.RenewInterval, c.Election.TTL)
	}
	return nil
}
